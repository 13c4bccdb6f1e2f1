package ingest

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds the day fan-out when no limit is configured.
// Full fan-out over a long range would fire one upstream request per day at
// once and invite synchronized rate-limit storms.
const defaultConcurrency = 8

// Scheduler drives one pipeline run per calendar day over a closed date
// interval. Days run concurrently up to the configured limit; a failed day
// is recorded in the report and never cancels its siblings.
type Scheduler struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

func NewScheduler(pipeline *Pipeline, concurrency int) *Scheduler {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Scheduler{
		pipeline:    pipeline,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "scheduler"),
	}
}

// Run processes every day in [start, end] and returns a report covering
// each requested date. It validates the range before any network or storage
// work and returns only once every day-task has finished.
func (s *Scheduler) Run(ctx context.Context, start, end Day) (RunReport, error) {
	days, err := DaysBetween(start, end)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{PerDay: make(map[string]DayResult, len(days))}
	var mu sync.Mutex

	s.logger.Info("ingestion run starting",
		"start", start.String(),
		"end", end.String(),
		"days", len(days),
		"concurrency", s.concurrency,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, day := range days {
		day := day
		g.Go(func() error {
			count, err := s.pipeline.ProcessDay(gctx, day)
			mu.Lock()
			report.PerDay[day.String()] = DayResult{Count: count, Err: err}
			mu.Unlock()
			if err != nil {
				s.logger.Error("day failed", "day", day.String(), "error", err)
			}
			// Day failures are isolated; returning nil keeps the group from
			// cancelling the remaining day-tasks.
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("ingestion run finished",
		"days", len(days),
		"failed", len(report.FailedDays()),
		"documents", report.Documents(),
	)
	return report, nil
}
