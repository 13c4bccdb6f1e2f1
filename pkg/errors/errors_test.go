package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestExhaustedErrorMatchesSentinelAndCause(t *testing.T) {
	cause := fmt.Errorf("%w: upstream returned 429", ErrRateLimited)
	err := error(&ExhaustedError{Day: "2025-05-01", Attempts: 3, Last: cause})

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Error("ExhaustedError should match ErrRetriesExhausted")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("ExhaustedError should unwrap to its last cause")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatal("errors.As failed for ExhaustedError")
	}
	if exhausted.Day != "2025-05-01" || exhausted.Attempts != 3 {
		t.Errorf("unexpected detail %+v", exhausted)
	}
	if !strings.Contains(err.Error(), "2025-05-01") || !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("message missing detail: %q", err.Error())
	}
}

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", 999)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("AppError should match its sentinel")
	}
	if got := HTTPStatusCode(err); got != http.StatusBadRequest {
		t.Errorf("HTTPStatusCode = %d, want %d", got, http.StatusBadRequest)
	}
}

func TestHTTPStatusCodeMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrDocumentNotFound, http.StatusNotFound},
		{ErrSnapshotNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInvalidRange, http.StatusBadRequest},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrRetriesExhausted, http.StatusServiceUnavailable},
		{ErrTransient, http.StatusServiceUnavailable},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrInvalidRange), http.StatusBadRequest},
		{&ExhaustedError{Day: "2025-05-01", Attempts: 3, Last: ErrTransient}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if got := HTTPStatusCode(tt.err); got != tt.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
