package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

// Memory is an in-process document store with the same upsert and search
// semantics as Postgres. It backs tests and local runs without a database.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]ingest.Document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]ingest.Document)}
}

// Upsert inserts or overwrites each document under its number. The mutex
// serializes concurrent writes to the same key so the stored value is
// always one input in full, never a field-level mix.
func (m *Memory) Upsert(ctx context.Context, docs []ingest.Document) (ingest.UpsertReport, error) {
	var report ingest.UpsertReport
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		if doc.DocumentNumber == "" {
			report.Failed++
			continue
		}
		m.docs[doc.DocumentNumber] = doc
		report.Written++
	}
	return report, nil
}

// Search matches the query text against title or abstract,
// case-insensitively, with the same date filter and ordering as Postgres.
func (m *Memory) Search(ctx context.Context, q ingest.Query) ([]ingest.Document, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 5
	}
	needle := strings.ToLower(q.Text)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []ingest.Document
	for _, doc := range m.docs {
		if needle != "" &&
			!strings.Contains(strings.ToLower(doc.Title), needle) &&
			!strings.Contains(strings.ToLower(doc.Abstract), needle) {
			continue
		}
		if q.Day != nil && doc.PublicationDate.String() != q.Day.String() {
			continue
		}
		matched = append(matched, doc)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PublicationDate.Time().Equal(matched[j].PublicationDate.Time()) {
			return matched[i].PublicationDate.After(matched[j].PublicationDate)
		}
		return matched[i].DocumentNumber < matched[j].DocumentNumber
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Get returns a single document by its number.
func (m *Memory) Get(ctx context.Context, documentNumber string) (ingest.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[documentNumber]
	if !ok {
		return ingest.Document{}, fmt.Errorf("document %s: %w", documentNumber, apperrors.ErrDocumentNotFound)
	}
	return doc, nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
