package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Directory names under a run path.
const (
	FlowDir       = ".flow"
	artifactsName = "artifacts"
	publishedName = "published"
	stateFile     = "state.json"
	inputFile     = "input.json"
	traceFile     = "trace.jsonl"
)

// Store persists run state and artifacts under
// <base>/.flow/runs/<runId>/. All mutable state for a run is scoped to
// that run's own directory; no run touches another run's state.
type Store struct {
	base string
}

// NewStore creates a store rooted at base ("." when empty).
func NewStore(base string) *Store {
	if strings.TrimSpace(base) == "" {
		base = "."
	}
	return &Store{base: base}
}

// RunPath returns the directory for a run id.
func (s *Store) RunPath(runID string) string {
	return filepath.Join(s.base, FlowDir, "runs", runID)
}

// ArtifactsDir returns the artifacts directory for a run path.
func ArtifactsDir(runPath string) string {
	return filepath.Join(runPath, artifactsName)
}

// PublishedDir returns the published directory for a run path.
func PublishedDir(runPath string) string {
	return filepath.Join(runPath, publishedName)
}

// TracePath returns the NDJSON trace log path for a run path.
func TracePath(runPath string) string {
	return filepath.Join(ArtifactsDir(runPath), traceFile)
}

// EnsureRunDir creates the run directory skeleton.
func (s *Store) EnsureRunDir(runID string) (string, error) {
	runPath := s.RunPath(runID)
	if err := os.MkdirAll(ArtifactsDir(runPath), 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(PublishedDir(runPath), 0755); err != nil {
		return "", err
	}
	return runPath, nil
}

// Exists reports whether a run directory exists for the id.
func (s *Store) Exists(runID string) bool {
	info, err := os.Stat(s.RunPath(runID))
	return err == nil && info.IsDir()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// Temp-then-rename so no reader observes a partially written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SaveState persists state.json for a run path.
func (s *Store) SaveState(runPath string, state State) error {
	return writeJSON(filepath.Join(runPath, stateFile), state)
}

// LoadState reads state.json. A missing run maps to ErrNotFound.
func (s *Store) LoadState(runPath string) (State, error) {
	var state State
	err := readJSON(filepath.Join(runPath, stateFile), &state)
	if os.IsNotExist(err) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("load state from %s: %w", runPath, err)
	}
	return state, nil
}

// SetStatus transitions a run's persisted status, enforcing the state
// machine, and refreshes updatedAt.
func (s *Store) SetStatus(runPath string, target Status) error {
	state, err := s.LoadState(runPath)
	if err != nil {
		return err
	}
	if !state.Status.CanTransition(target) {
		return fmt.Errorf("illegal status transition %s -> %s", state.Status, target)
	}
	state.Status = target
	state.UpdatedAt = NewState("").UpdatedAt
	return s.SaveState(runPath, state)
}

// resolveRelative validates a caller-supplied relative path under dir.
// Absolute paths and traversal are rejected.
func resolveRelative(dir, relative string) (string, error) {
	if strings.TrimSpace(relative) == "" {
		return "", fmt.Errorf("relative path cannot be empty")
	}
	if filepath.IsAbs(relative) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", relative)
	}
	normalized := strings.ReplaceAll(relative, "\\", "/")
	if strings.Contains(normalized, "..") {
		return "", fmt.Errorf("path traversal is not allowed: %s", relative)
	}
	full := filepath.Join(dir, filepath.FromSlash(normalized))
	if !strings.HasPrefix(filepath.Clean(full), filepath.Clean(dir)) {
		return "", fmt.Errorf("path escapes %s: %s", dir, relative)
	}
	return full, nil
}

// SaveArtifactJSON writes a JSON artifact under artifacts/.
func (s *Store) SaveArtifactJSON(runPath, relative string, v any) error {
	full, err := resolveRelative(ArtifactsDir(runPath), relative)
	if err != nil {
		return err
	}
	return writeJSON(full, v)
}

// LoadArtifactJSON reads a JSON artifact under artifacts/.
func (s *Store) LoadArtifactJSON(runPath, relative string, v any) error {
	full, err := resolveRelative(ArtifactsDir(runPath), relative)
	if err != nil {
		return err
	}
	return readJSON(full, v)
}

// HasArtifact reports whether the named artifact exists.
func (s *Store) HasArtifact(runPath, relative string) bool {
	full, err := resolveRelative(ArtifactsDir(runPath), relative)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(full)
	return statErr == nil
}

// SaveArtifactText writes a raw text artifact under artifacts/,
// overwriting any previous content.
func (s *Store) SaveArtifactText(runPath, relative, content string) error {
	full, err := resolveRelative(ArtifactsDir(runPath), relative)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

// SavePublishedText writes a final text document under published/.
func (s *Store) SavePublishedText(runPath, relative, content string) error {
	full, err := resolveRelative(PublishedDir(runPath), relative)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0644)
}

// ListRunFiles enumerates files under runPath matching a glob like
// "artifacts/synth/*.json". Traversal in the pattern is rejected.
// Returned paths are relative to runPath, slash-separated.
func (s *Store) ListRunFiles(runPath, glob string) ([]string, error) {
	if strings.Contains(strings.ReplaceAll(glob, "\\", "/"), "..") {
		return nil, fmt.Errorf("path traversal is not allowed in glob: %s", glob)
	}
	matches, err := filepath.Glob(filepath.Join(runPath, filepath.FromSlash(glob)))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(runPath, m)
		if err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

// ListRunIDs returns every run id with a state.json under the store.
func (s *Store) ListRunIDs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.base, FlowDir, "runs", "*", stateFile))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, filepath.Base(filepath.Dir(m)))
	}
	return ids, nil
}

// SaveInput persists the caller's original request as input.json.
func (s *Store) SaveInput(runPath string, v any) error {
	return writeJSON(filepath.Join(runPath, inputFile), v)
}

// LoadInput reads input.json.
func (s *Store) LoadInput(runPath string, v any) error {
	return readJSON(filepath.Join(runPath, inputFile), v)
}
