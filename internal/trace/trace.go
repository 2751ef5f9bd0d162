// Package trace records stage lifecycle events as one JSON object per
// line and reconstructs run progress from them. Events never carry
// prompt or response text.
package trace

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Event kinds.
const (
	KindStageStart       = "stage_start"
	KindModelCall        = "model_call"
	KindJSONParseFailure = "json_parse_failure"
	KindRetryUsed        = "retry_used"
	KindStageEnd         = "stage_end"
)

// Event is one line of the append-only execution log.
type Event struct {
	Timestamp  string `json:"timestamp"`
	Kind       string `json:"kind"`
	StageName  string `json:"stageName,omitempty"`
	AgentName  string `json:"agentName,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

// Sink receives stage events. A nil Sink func is valid and drops them.
type Sink func(Event)

// Writer appends NDJSON events to a trace file.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens (appending) the trace file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f}, nil
}

// Append writes one event, stamping it with the current time if the
// caller left Timestamp empty.
func (w *Writer) Append(evt Event) {
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	line, err := json.Marshal(evt)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.file.Write(append(line, '\n'))
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadFile parses a trace log. Malformed lines are skipped, not fatal:
// a consumer must tolerate partial writes from a crashed run.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var evt Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			continue
		}
		if evt.Kind == "" {
			continue
		}
		events = append(events, evt)
	}
	return events, scanner.Err()
}
