package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
)

// skipIfNoPostgres skips the test when PostgreSQL is unavailable and
// otherwise returns a store with a fresh schema.
func skipIfNoPostgres(t *testing.T) *Postgres {
	t.Helper()
	client, err := postgres.New(config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "fedregister_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "fedregister"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		t.Skipf("skipping postgres test: database unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	store := NewPostgres(client)
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if _, err := client.DB.ExecContext(ctx, "TRUNCATE documents"); err != nil {
		t.Fatalf("truncating documents: %v", err)
	}
	return store
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func seedDocs(t *testing.T, day string, n int) []ingest.Document {
	t.Helper()
	d := mustDay(t, day)
	docs := make([]ingest.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, ingest.Document{
			DocumentNumber:  fmt.Sprintf("%s-%03d", day, i),
			Title:           fmt.Sprintf("Notice %d", i),
			PublicationDate: d,
			DocumentType:    "Notice",
			Abstract:        "Routine agency business.",
			Agencies:        []string{"General Services Administration"},
		})
	}
	return docs
}

func TestPostgresUpsertIsIdempotent(t *testing.T) {
	store := skipIfNoPostgres(t)
	ctx := context.Background()
	docs := seedDocs(t, "2025-05-01", 3)

	report, err := store.Upsert(ctx, docs)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if report.Written != 3 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	if _, err := store.Upsert(ctx, docs); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 rows after re-upsert, got %d", count)
	}
}

func TestPostgresUpsertOverwritesByDocumentNumber(t *testing.T) {
	store := skipIfNoPostgres(t)
	ctx := context.Background()
	day := mustDay(t, "2025-05-01")

	original := ingest.Document{DocumentNumber: "2025-001", Title: "Original", PublicationDate: day}
	if _, err := store.Upsert(ctx, []ingest.Document{original}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	corrected := original
	corrected.Title = "Corrected"
	corrected.Agencies = []string{"Department of Commerce"}
	if _, err := store.Upsert(ctx, []ingest.Document{corrected}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "2025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Corrected" {
		t.Errorf("expected latest title to win, got %q", got.Title)
	}
	if len(got.Agencies) != 1 || got.Agencies[0] != "Department of Commerce" {
		t.Errorf("agencies not updated: %+v", got.Agencies)
	}
}

func TestPostgresSearchAndGet(t *testing.T) {
	store := skipIfNoPostgres(t)
	ctx := context.Background()

	d1, d2 := mustDay(t, "2025-05-01"), mustDay(t, "2025-05-02")
	if _, err := store.Upsert(ctx, []ingest.Document{
		{DocumentNumber: "2025-001", Title: "Clean Air Act Implementation", PublicationDate: d1},
		{DocumentNumber: "2025-002", Title: "Fisheries Management", Abstract: "Pacific air routes", PublicationDate: d2},
		{DocumentNumber: "2025-003", Title: "Drug Scheduling", PublicationDate: d2},
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Search(ctx, ingest.Query{Text: "air", Limit: 10})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].DocumentNumber != "2025-002" {
		t.Errorf("expected newest match first, got %s", got[0].DocumentNumber)
	}

	got, err = store.Search(ctx, ingest.Query{Text: "air", Day: &d1, Limit: 10})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 || got[0].DocumentNumber != "2025-001" {
		t.Errorf("date filter returned %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}
