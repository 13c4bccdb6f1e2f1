// Package errors defines the error taxonomy shared by the ingestion pipeline
// and the query API. Fetch outcomes, retry exhaustion, and caller input
// errors are sentinel values so call sites can branch with errors.Is; the
// serving layer maps them onto HTTP status codes via AppError.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited marks an upstream 429; always retried after a cooldown.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrTransient marks a 5xx or transport failure; retried.
	ErrTransient = errors.New("transient upstream failure")
	// ErrPermanent marks a non-retriable upstream response (4xx other than 429).
	ErrPermanent = errors.New("permanent upstream failure")
	// ErrRetriesExhausted is the terminal per-day failure after all attempts.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInvalidRange rejects a day range whose start is after its end.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrSnapshotNotFound means no staged snapshot exists for a day.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrDocumentNotFound means no stored document matched the lookup.
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

// ExhaustedError reports that a day's fetch consumed every retry attempt.
// It wraps the last failure so errors.Is still matches the underlying
// classification.
type ExhaustedError struct {
	Day      string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted for %s after %d attempts: %v", e.Day, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Is reports ErrRetriesExhausted so callers can match the terminal condition
// without losing the wrapped last reason.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// AppError attaches an HTTP status code and message to a sentinel error.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrRetriesExhausted), errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
