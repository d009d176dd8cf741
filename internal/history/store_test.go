package history

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesDatabaseAndMigrates(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(root, ".pi", "plans", "history.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	// Opening the same directory again must not fail (IF NOT EXISTS).
	again, err := Open(root)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	again.Close()
}

func TestRecordStartAndEnd(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	id, err := s.RecordStart("a1b2c3d4", "Add healthcheck", "2026-08-24T10:00:00Z", 3)
	if err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if id == 0 {
		t.Fatal("RecordStart returned a zero row id")
	}

	entries, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent = %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Status != "executing" || e.EndedAt != "" {
		t.Errorf("in-flight entry = %+v", e)
	}
	if e.StepsTotal != 3 {
		t.Errorf("steps_total = %d, want 3", e.StepsTotal)
	}

	if err := s.RecordEnd(id, "completed", "2026-08-24T10:15:00Z", "done", 3); err != nil {
		t.Fatalf("RecordEnd: %v", err)
	}
	entries, err = s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	e = entries[0]
	if e.Status != "completed" || e.Summary != "done" || e.StepsCompleted != 3 {
		t.Errorf("finished entry = %+v", e)
	}
	if e.EndedAt != "2026-08-24T10:15:00Z" {
		t.Errorf("ended_at = %q", e.EndedAt)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.RecordStart("aaaa1111", "Older", "2026-08-24T09:00:00Z", 1); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if _, err := s.RecordStart("bbbb2222", "Newer", "2026-08-24T11:00:00Z", 1); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}

	entries, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 || entries[0].Title != "Newer" || entries[1].Title != "Older" {
		t.Errorf("Recent order = %+v", entries)
	}

	one, err := s.Recent(1)
	if err != nil {
		t.Fatalf("Recent(1): %v", err)
	}
	if len(one) != 1 || one[0].Title != "Newer" {
		t.Errorf("Recent(1) = %+v", one)
	}
}

func TestForPlan_FiltersByPlanID(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.RecordStart("aaaa1111", "First attempt", "2026-08-24T09:00:00Z", 2); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if _, err := s.RecordStart("aaaa1111", "Second attempt", "2026-08-24T10:00:00Z", 2); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}
	if _, err := s.RecordStart("bbbb2222", "Other plan", "2026-08-24T11:00:00Z", 1); err != nil {
		t.Fatalf("RecordStart: %v", err)
	}

	entries, err := s.ForPlan("aaaa1111")
	if err != nil {
		t.Fatalf("ForPlan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ForPlan = %d entries, want 2", len(entries))
	}
	if entries[0].Title != "Second attempt" {
		t.Errorf("newest first, got %+v", entries[0])
	}
}
