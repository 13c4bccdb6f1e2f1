// Package ingest implements the daily Federal Register ingestion pipeline:
// rate-limited fetch of per-day document sets, durable raw/processed
// staging, normalization into canonical documents, and idempotent upsert
// into the document store. The scheduler fans one pipeline run out per
// calendar day with bounded concurrency and per-day failure isolation.
package ingest

import (
	"context"
	"time"
)

// Document is the canonical shape of one Federal Register entry, keyed by
// its stable document number. Re-ingesting the same number updates the
// mutable fields in place, never duplicates the row.
type Document struct {
	DocumentNumber  string   `json:"document_number"`
	Title           string   `json:"title"`
	PublicationDate Day      `json:"publication_date"`
	DocumentType    string   `json:"type,omitempty"`
	Abstract        string   `json:"abstract"`
	Agencies        []string `json:"agencies"`
}

// Query selects stored documents by keyword and optional exact
// publication date.
type Query struct {
	Text  string
	Day   *Day
	Limit int
}

// UpsertReport summarises one upsert batch. Failed documents are counted,
// not raised; a bad record never aborts the rest of its day.
type UpsertReport struct {
	Written int
	Failed  int
}

// DayResult is the terminal outcome of one day-task: a document count on
// success or the isolated failure reason.
type DayResult struct {
	Count int
	Err   error
}

// RunReport maps every requested day to its result. Every date in the
// range appears exactly once, whether it succeeded or failed.
type RunReport struct {
	PerDay map[string]DayResult
}

// FailedDays returns the dates whose day-tasks ended in an error.
func (r RunReport) FailedDays() []string {
	var failed []string
	for day, res := range r.PerDay {
		if res.Err != nil {
			failed = append(failed, day)
		}
	}
	return failed
}

// Documents returns the total documents counted across successful days.
func (r RunReport) Documents() int {
	total := 0
	for _, res := range r.PerDay {
		if res.Err == nil {
			total += res.Count
		}
	}
	return total
}

// Source yields the raw upstream payload for a day, retrying internally.
type Source interface {
	FetchDay(ctx context.Context, day Day) ([]byte, error)
}

// Staging persists per-day raw and processed snapshots. A staged raw
// payload doubles as a fetch cache: when present, the pipeline issues no
// network call for that day.
type Staging interface {
	HasRaw(day Day) bool
	ReadRaw(day Day) ([]byte, error)
	WriteRaw(day Day, payload []byte) error
	WriteProcessed(day Day, docs []Document) error
}

// DocumentStore writes normalized documents with at-most-one-row-per-
// document-number semantics.
type DocumentStore interface {
	Upsert(ctx context.Context, docs []Document) (UpsertReport, error)
}

// DayIngested is published after a day's documents are persisted, for
// downstream consumers (stats recording, cache invalidation).
type DayIngested struct {
	Date       string    `json:"date"`
	Count      int       `json:"count"`
	Dropped    int       `json:"dropped"`
	FromCache  bool      `json:"from_cache"`
	IngestedAt time.Time `json:"ingested_at"`
}

// EventPublisher emits DayIngested events. Implementations must be safe
// for concurrent use by many day-tasks.
type EventPublisher interface {
	Publish(ctx context.Context, event DayIngested) error
}
