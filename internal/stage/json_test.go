package stage

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json untouched",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "json fence stripped",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "anonymous fence stripped",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  \n```json\n{\"a\":1}\n```\n  ",
			want: `{"a":1}`,
		},
		{
			name: "windows line endings",
			in:   "```json\r\n{\"a\":1}\r\n```",
			want: `{"a":1}`,
		},
		{
			name: "fence mid-text stays intact",
			in:   "see ```json\n{}\n``` above",
			want: "see ```json\n{}\n``` above",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type doc struct {
		Name string `json:"name"`
	}
	parse := DecodeJSON[doc]()

	if v, ok := parse(`{"name":"a"}`); !ok || v.Name != "a" {
		t.Errorf("parse valid object failed: %v %v", v, ok)
	}
	if v, ok := parse("```json\n{\"name\":\"b\"}\n```"); !ok || v.Name != "b" {
		t.Errorf("parse fenced object failed: %v %v", v, ok)
	}
	if _, ok := parse("The design should use sharding."); ok {
		t.Error("prose accepted as JSON")
	}
	if _, ok := parse(""); ok {
		t.Error("empty text accepted as JSON")
	}
	if _, ok := parse(`{"name": }`); ok {
		t.Error("malformed JSON accepted")
	}
}
