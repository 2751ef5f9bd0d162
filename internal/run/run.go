// Package run owns the authoritative status of a pipeline run and the
// on-disk layout everything about a run is persisted under.
package run

import (
	"errors"
	"fmt"
	"time"
)

// Status of a run. Completed and Failed are terminal.
type Status string

const (
	StatusRunning                Status = "Running"
	StatusAwaitingClarifications Status = "AwaitingClarifications"
	StatusCompleted              Status = "Completed"
	StatusFailed                 Status = "Failed"
)

// Terminal reports whether no further transition is legal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to target is a legal
// state-machine transition. Failed is reachable from any non-terminal
// state. A run may re-enter AwaitingClarifications a second time during
// hybrid synthesis; that is a pause point, not an error.
func (s Status) CanTransition(target Status) bool {
	if s.Terminal() {
		return false
	}
	switch target {
	case StatusFailed:
		return true
	case StatusRunning:
		return s == StatusRunning || s == StatusAwaitingClarifications
	case StatusAwaitingClarifications, StatusCompleted:
		return s == StatusRunning
	}
	return false
}

// State is the persisted run record (state.json).
type State struct {
	RunID     string `json:"runId"`
	Status    Status `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NewState creates the record for a freshly submitted run.
func NewState(runID string) State {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return State{
		RunID:     runID,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ErrNotFound means the caller addressed a run by an unknown id.
var ErrNotFound = errors.New("run not found")

// StateError means the run was not in the status an operation requires
// (e.g. answering a run that is not awaiting clarifications).
type StateError struct {
	Status Status
	Want   Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("run is not %s (current status: %s)", e.Want, e.Status)
}
