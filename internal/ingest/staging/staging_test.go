package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

func mustDay(t *testing.T, s string) ingest.Day {
	t.Helper()
	d, err := ingest.ParseDay(s)
	if err != nil {
		t.Fatalf("bad test day %q: %v", s, err)
	}
	return d
}

func TestRawSnapshotRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	day := mustDay(t, "2025-05-01")
	payload := []byte(`{"count":1,"results":[{"document_number":"X"}]}`)

	if store.HasRaw(day) {
		t.Fatal("HasRaw reported a snapshot before any write")
	}
	if err := store.WriteRaw(day, payload); err != nil {
		t.Fatalf("WriteRaw failed: %v", err)
	}
	if !store.HasRaw(day) {
		t.Fatal("HasRaw did not see the written snapshot")
	}
	got, err := store.ReadRaw(day)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("ReadRaw returned %q, want %q", got, payload)
	}
}

func TestReadMissingSnapshot(t *testing.T) {
	store := New(t.TempDir())
	day := mustDay(t, "2025-05-01")

	if _, err := store.ReadRaw(day); !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		t.Errorf("ReadRaw: expected ErrSnapshotNotFound, got %v", err)
	}
	if _, err := store.ReadProcessed(day); !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		t.Errorf("ReadProcessed: expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestWriteRawOverwritesPreviousSnapshot(t *testing.T) {
	store := New(t.TempDir())
	day := mustDay(t, "2025-05-01")

	if err := store.WriteRaw(day, []byte(`{"count":0,"results":[]}`)); err != nil {
		t.Fatalf("first WriteRaw failed: %v", err)
	}
	updated := []byte(`{"count":1,"results":[{"document_number":"Y"}]}`)
	if err := store.WriteRaw(day, updated); err != nil {
		t.Fatalf("second WriteRaw failed: %v", err)
	}
	got, err := store.ReadRaw(day)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("expected overwritten payload, got %q", got)
	}
}

func TestProcessedSnapshotRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	day := mustDay(t, "2025-05-01")
	docs := []ingest.Document{
		{
			DocumentNumber:  "2025-09123",
			Title:           "Air Quality Designations",
			PublicationDate: day,
			DocumentType:    "Rule",
			Agencies:        []string{"Environmental Protection Agency"},
		},
	}

	if err := store.WriteProcessed(day, docs); err != nil {
		t.Fatalf("WriteProcessed failed: %v", err)
	}
	got, err := store.ReadProcessed(day)
	if err != nil {
		t.Fatalf("ReadProcessed failed: %v", err)
	}
	if len(got) != 1 || got[0].DocumentNumber != "2025-09123" {
		t.Fatalf("unexpected processed documents %+v", got)
	}
	if got[0].PublicationDate.String() != "2025-05-01" {
		t.Errorf("publication date lost in round trip: %s", got[0].PublicationDate)
	}
}

func TestWriteProcessedNilBecomesEmptyArray(t *testing.T) {
	store := New(t.TempDir())
	day := mustDay(t, "2025-05-01")

	if err := store.WriteProcessed(day, nil); err != nil {
		t.Fatalf("WriteProcessed failed: %v", err)
	}
	got, err := store.ReadProcessed(day)
	if err != nil {
		t.Fatalf("ReadProcessed failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %+v", got)
	}
}

func TestWritesLeaveNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	day := mustDay(t, "2025-05-01")

	if err := store.WriteRaw(day, []byte(`{}`)); err != nil {
		t.Fatalf("WriteRaw failed: %v", err)
	}
	if err := store.WriteProcessed(day, nil); err != nil {
		t.Fatalf("WriteProcessed failed: %v", err)
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.Contains(d.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking staging root: %v", err)
	}
}
