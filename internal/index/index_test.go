package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/christophervuu/flow/internal/run"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, run.FlowDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	idx, err := Open(base)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestUpsertAndGet(t *testing.T) {
	idx := openIndex(t)
	now := time.Now().UTC()

	e := Entry{RunID: "run-1", Title: "Rate limiter", Status: "running", CreatedAt: now, UpdatedAt: now}
	if err := idx.Upsert(e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := idx.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Title != "Rate limiter" || got.Status != "running" {
		t.Fatalf("Get = %+v", got)
	}

	// Second upsert refreshes status, keeps the row unique.
	e.Status = "completed"
	e.UpdatedAt = now.Add(time.Minute)
	if err := idx.Upsert(e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err = idx.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("status after upsert = %s", got.Status)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	idx := openIndex(t)
	got, err := idx.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %+v, want nil", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	idx := openIndex(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		e := Entry{RunID: id, Status: "completed", CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base}
		if err := idx.Upsert(e); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	entries, err := idx.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].RunID != "new" || entries[1].RunID != "mid" {
		t.Fatalf("List = %+v", entries)
	}
}

func TestDelete(t *testing.T) {
	idx := openIndex(t)
	now := time.Now().UTC()
	if err := idx.Upsert(Entry{RunID: "run-1", Status: "failed", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Delete("run-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := idx.Get("run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("row survived Delete")
	}
	// Deleting again is fine.
	if err := idx.Delete("run-1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
	}
	for _, tt := range tests {
		if got := FormatTimeAgo(tt.t); got != tt.want {
			t.Errorf("FormatTimeAgo(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}

	old := now.Add(-72 * time.Hour)
	if got := FormatTimeAgo(old); got != old.Format("Jan 2") {
		t.Errorf("FormatTimeAgo(old) = %q", got)
	}
}
