// Package stats consumes day-ingested events and keeps a durable per-day
// record of ingestion activity, giving operators a queryable history of
// which dates were loaded, when, and with how many documents.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/kafka"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingestion_stats (
	publication_date DATE PRIMARY KEY,
	document_count   INTEGER NOT NULL,
	dropped_count    INTEGER NOT NULL DEFAULT 0,
	from_cache       BOOLEAN NOT NULL DEFAULT false,
	recorded_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertQuery = `
INSERT INTO ingestion_stats (publication_date, document_count, dropped_count, from_cache, recorded_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (publication_date) DO UPDATE SET
	document_count = EXCLUDED.document_count,
	dropped_count  = EXCLUDED.dropped_count,
	from_cache     = EXCLUDED.from_cache,
	recorded_at    = EXCLUDED.recorded_at`

// Recorder persists ingestion stats rows, one per calendar day, re-runs
// overwriting earlier entries for the same date.
type Recorder struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewRecorder(db *postgres.Client) *Recorder {
	return &Recorder{
		db:     db,
		logger: slog.Default().With("component", "stats-recorder"),
	}
}

// EnsureSchema creates the ingestion_stats table if it does not exist.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensuring ingestion_stats schema: %w", err)
	}
	return nil
}

// Record upserts the stats row for one day-ingested event.
func (r *Recorder) Record(ctx context.Context, event ingest.DayIngested) error {
	day, err := ingest.ParseDay(event.Date)
	if err != nil {
		return fmt.Errorf("event with bad date %q: %w", event.Date, err)
	}
	_, err = r.db.DB.ExecContext(ctx, upsertQuery,
		day.Time(),
		event.Count,
		event.Dropped,
		event.FromCache,
		event.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("recording stats for %s: %w", event.Date, err)
	}
	r.logger.Info("ingestion recorded",
		"day", event.Date,
		"documents", event.Count,
		"dropped", event.Dropped,
		"from_cache", event.FromCache,
	)
	return nil
}

// Handler adapts the Recorder to the Kafka consumer callback.
func (r *Recorder) Handler() kafka.MessageHandler {
	return func(ctx context.Context, key, value []byte) error {
		event, err := kafka.DecodeJSON[ingest.DayIngested](value)
		if err != nil {
			// A malformed event is dropped rather than retried forever.
			r.logger.Error("discarding malformed event", "key", string(key), "error", err)
			return nil
		}
		return r.Record(ctx, event)
	}
}
