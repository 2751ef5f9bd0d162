package stage

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*\r?\n?(.*?)\r?\n?```\\s*$")

// ExtractJSON strips a markdown code fence (```json ... ``` or
// ``` ... ```) wrapped around a response, if present. Generators are
// told not to fence their output but do anyway.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// DecodeJSON builds a parse function for a JSON-shaped artifact of type
// T. It tolerates fenced output and reports failure instead of
// returning an error, matching the executor's parse contract.
func DecodeJSON[T any]() func(string) (*T, bool) {
	return func(text string) (*T, bool) {
		extracted := ExtractJSON(text)
		if extracted == "" || extracted[0] != '{' && extracted[0] != '[' {
			return nil, false
		}
		var v T
		if err := json.Unmarshal([]byte(extracted), &v); err != nil {
			return nil, false
		}
		return &v, true
	}
}
