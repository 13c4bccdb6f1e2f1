package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Akash-RK/federal-register-rag/pkg/metrics"
)

// Pipeline processes one calendar day end-to-end: staged-raw check, fetch,
// snapshot, normalize, upsert, event publish. Within a day the stages run
// strictly in that order; across days, many Pipelines run concurrently with
// no shared mutable state beyond the store's connection pool.
type Pipeline struct {
	Source  Source
	Staging Staging
	Store   DocumentStore
	Events  EventPublisher // optional
	Force   bool           // refetch even when a raw snapshot exists
	Metrics *metrics.Metrics

	logger *slog.Logger
}

// NewPipeline wires a per-day pipeline from its collaborators. Events and
// Metrics may be nil.
func NewPipeline(source Source, staging Staging, store DocumentStore) *Pipeline {
	return &Pipeline{
		Source:  source,
		Staging: staging,
		Store:   store,
		logger:  slog.Default().With("component", "pipeline"),
	}
}

// ProcessDay runs the pipeline for one day and returns the number of
// documents normalized for it. Failures are returned, not logged away: the
// scheduler records them per day.
func (p *Pipeline) ProcessDay(ctx context.Context, day Day) (int, error) {
	raw, fromCache, err := p.rawPayload(ctx, day)
	if err != nil {
		p.Metrics.ObserveDay("failed")
		return 0, err
	}
	p.Metrics.ObserveStaging(fromCache)

	docs, dropped, err := Normalize(raw)
	if err != nil {
		p.Metrics.ObserveDay("failed")
		return 0, fmt.Errorf("normalizing %s: %w", day, err)
	}
	if dropped > 0 {
		p.logger.Warn("dropped records without document_number", "day", day.String(), "dropped", dropped)
	}

	if err := p.Staging.WriteProcessed(day, docs); err != nil {
		p.Metrics.ObserveDay("failed")
		return 0, fmt.Errorf("staging processed %s: %w", day, err)
	}

	report, err := p.Store.Upsert(ctx, docs)
	if err != nil {
		p.Metrics.ObserveDay("failed")
		return 0, fmt.Errorf("upserting %s: %w", day, err)
	}
	p.Metrics.ObserveUpsert(report.Written, report.Failed, dropped)
	if report.Failed > 0 {
		p.logger.Warn("some documents failed to upsert",
			"day", day.String(),
			"written", report.Written,
			"failed", report.Failed,
		)
	}

	if p.Events != nil {
		event := DayIngested{
			Date:       day.String(),
			Count:      len(docs),
			Dropped:    dropped,
			FromCache:  fromCache,
			IngestedAt: time.Now().UTC(),
		}
		if err := p.Events.Publish(ctx, event); err != nil {
			// The day's data is already durable; a lost event is not a
			// pipeline failure.
			p.logger.Error("failed to publish day-ingested event", "day", day.String(), "error", err)
		}
	}

	p.Metrics.ObserveDay("success")
	p.logger.Info("day ingested",
		"day", day.String(),
		"documents", len(docs),
		"dropped", dropped,
		"from_cache", fromCache,
	)
	return len(docs), nil
}

// rawPayload returns the day's raw payload, preferring the staged snapshot
// unless Force is set. A fresh fetch is staged before use so a later re-run
// skips the network entirely.
func (p *Pipeline) rawPayload(ctx context.Context, day Day) (raw []byte, fromCache bool, err error) {
	if !p.Force && p.Staging.HasRaw(day) {
		raw, err := p.Staging.ReadRaw(day)
		if err != nil {
			return nil, false, fmt.Errorf("reading staged raw %s: %w", day, err)
		}
		return raw, true, nil
	}

	raw, err = p.Source.FetchDay(ctx, day)
	if err != nil {
		return nil, false, err
	}
	if err := p.Staging.WriteRaw(day, raw); err != nil {
		return nil, false, fmt.Errorf("staging raw %s: %w", day, err)
	}
	return raw, false, nil
}
