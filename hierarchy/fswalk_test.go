package hierarchy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFSSourceEntries(t *testing.T) {
	root := t.TempDir()
	dirs := []string{
		"Sala1/S1-5-manoscritto/raw",
		"Sala1/S1-5-manoscritto/rawp",
		"Sala2/S2-7-erbario/dcho",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// A plain file at stage depth must be ignored.
	if err := os.WriteFile(filepath.Join(root, "Sala1/S1-5-manoscritto/notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Directories outside the Sala* pattern must be ignored.
	if err := os.MkdirAll(filepath.Join(root, "Archive/S1-9-x/raw"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := NewFSSource(root).Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(entries), entries)
	}

	first := entries[0]
	if first.Sala != "Sala1" || first.Folder != "S1-5-manoscritto" || first.StageName != "raw" {
		t.Errorf("first entry = %+v", first)
	}
	if first.Path != "Sala1/S1-5-manoscritto/raw" {
		t.Errorf("first entry path = %q", first.Path)
	}
}

func TestFSSourceEmptyRoot(t *testing.T) {
	entries, err := NewFSSource(t.TempDir()).Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}
