package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
	"github.com/Akash-RK/federal-register-rag/pkg/metrics"
)

// Fetcher performs a single classified fetch attempt.
type Fetcher interface {
	Fetch(ctx context.Context, day ingest.Day) Outcome
}

// Retrier wraps a Fetcher with bounded attempts and a fixed cooldown on
// rate-limit and transient failures, mirroring the upstream's rate-window
// behavior. Permanent failures short-circuit without consuming attempts.
// A Retrier holds no per-day state, so one instance serves any number of
// concurrent day-tasks.
type Retrier struct {
	fetcher     Fetcher
	maxAttempts int
	cooldown    time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewRetrier builds a Retrier from the ingest config. Metrics may be nil.
func NewRetrier(fetcher Fetcher, cfg config.IngestConfig, m *metrics.Metrics) *Retrier {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Retrier{
		fetcher:     fetcher,
		maxAttempts: maxAttempts,
		cooldown:    cfg.Cooldown,
		metrics:     m,
		logger:      slog.Default().With("component", "source-retrier"),
	}
}

// FetchDay attempts the day's fetch up to maxAttempts times. The first
// success wins outright; attempts are never merged. After exhausting
// attempts it returns an ExhaustedError carrying the day and last reason.
func (r *Retrier) FetchDay(ctx context.Context, day ingest.Day) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		outcome := r.fetcher.Fetch(ctx, day)
		r.metrics.ObserveFetch(outcome.Status.String())

		switch outcome.Status {
		case StatusSuccess:
			if attempt > 1 {
				r.logger.Info("fetch succeeded after retry", "day", day.String(), "attempt", attempt)
			}
			return outcome.Payload, nil
		case StatusPermanent:
			return nil, fmt.Errorf("%w: %v", apperrors.ErrPermanent, outcome.Reason)
		case StatusRateLimited:
			lastErr = fmt.Errorf("%w: %v", apperrors.ErrRateLimited, outcome.Reason)
		default:
			lastErr = fmt.Errorf("%w: %v", apperrors.ErrTransient, outcome.Reason)
		}

		if attempt == r.maxAttempts {
			break
		}
		r.logger.Warn("fetch failed, cooling down",
			"day", day.String(),
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"cooldown", r.cooldown,
			"error", lastErr,
		)
		select {
		case <-time.After(r.cooldown):
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch aborted during cooldown for %s: %w", day, ctx.Err())
		}
	}
	return nil, &apperrors.ExhaustedError{Day: day.String(), Attempts: r.maxAttempts, Last: lastErr}
}
