package stats

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
)

func skipIfNoPostgres(t *testing.T) *Recorder {
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

	recorder := NewRecorder(client)
	ctx := context.Background()
	if err := recorder.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if _, err := client.DB.ExecContext(ctx, "TRUNCATE ingestion_stats"); err != nil {
		t.Fatalf("truncating ingestion_stats: %v", err)
	}
	return recorder
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

func TestRecordOverwritesSameDay(t *testing.T) {
	recorder := skipIfNoPostgres(t)
	ctx := context.Background()

	first := ingest.DayIngested{Date: "2025-05-01", Count: 10, IngestedAt: time.Now()}
	if err := recorder.Record(ctx, first); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	second := ingest.DayIngested{Date: "2025-05-01", Count: 12, FromCache: true, IngestedAt: time.Now()}
	if err := recorder.Record(ctx, second); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	var count int
	var fromCache bool
	row := recorder.db.DB.QueryRowContext(ctx,
		"SELECT document_count, from_cache FROM ingestion_stats WHERE publication_date = $1",
		"2025-05-01")
	if err := row.Scan(&count, &fromCache); err != nil {
		t.Fatalf("reading stats row: %v", err)
	}
	if count != 12 || !fromCache {
		t.Errorf("expected latest event to win, got count=%d from_cache=%v", count, fromCache)
	}
}

func TestRecordRejectsBadDate(t *testing.T) {
	recorder := NewRecorder(nil)
	err := recorder.Record(context.Background(), ingest.DayIngested{Date: "not-a-date"})
	if err == nil {
		t.Fatal("expected error for malformed event date")
	}
}

func TestHandlerDropsMalformedEvents(t *testing.T) {
	// A broken payload must not surface an error, or the consumer would
	// redeliver it forever.
	recorder := NewRecorder(nil)
	handler := recorder.Handler()
	if err := handler(context.Background(), []byte("2025-05-01"), []byte("{not json")); err != nil {
		t.Errorf("malformed event should be dropped, got %v", err)
	}
}
