// Package query answers natural-language questions over the persisted
// document store: keyword/date retrieval, answer caching, and LLM
// summarization of the retrieved documents.
package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
)

// noDocumentsAnswer is returned when retrieval finds nothing to summarize.
const noDocumentsAnswer = "No relevant documents found for your query."

// Store is the document read path consumed by the query layer.
type Store interface {
	Search(ctx context.Context, q ingest.Query) ([]ingest.Document, error)
}

// Summarizer renders an answer from the question and retrieved documents.
type Summarizer interface {
	Summarize(ctx context.Context, question string, docs []ingest.Document) (string, error)
}

// Answer is the rendered response for one question.
type Answer struct {
	Text      string            `json:"answer"`
	Documents []ingest.Document `json:"documents"`
}

// Service coordinates retrieval, caching, and summarization.
type Service struct {
	store      Store
	summarizer Summarizer
	cache      *Cache // optional
	cfg        config.QueryConfig
	logger     *slog.Logger
}

func NewService(store Store, summarizer Summarizer, cache *Cache, cfg config.QueryConfig) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	return &Service{
		store:      store,
		summarizer: summarizer,
		cache:      cache,
		cfg:        cfg,
		logger:     slog.Default().With("component", "query-service"),
	}
}

// Answer retrieves documents matching the question and summarizes them.
// Identical questions are served from the cache when one is configured.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	if s.cache == nil {
		return s.answer(ctx, question)
	}
	result, cached, err := s.cache.GetOrCompute(ctx, question, func() (Answer, error) {
		return s.answer(ctx, question)
	})
	if cached {
		s.logger.Debug("answer served from cache", "question", question)
	}
	return result, err
}

func (s *Service) answer(ctx context.Context, question string) (Answer, error) {
	docs, err := s.retrieve(ctx, question, s.cfg.DefaultLimit)
	if err != nil {
		return Answer{}, err
	}
	if len(docs) == 0 {
		return Answer{Text: noDocumentsAnswer, Documents: []ingest.Document{}}, nil
	}

	text, err := s.summarizer.Summarize(ctx, question, docs)
	if err != nil {
		return Answer{}, fmt.Errorf("summarizing answer: %w", err)
	}
	return Answer{Text: text, Documents: docs}, nil
}

// retrieve builds the store query from the question: the full text drives
// the keyword match, and a confident date hint narrows to that publication
// date while the date words are stripped from the keyword pattern.
func (s *Service) retrieve(ctx context.Context, question string, limit int) ([]ingest.Document, error) {
	q := ingest.Query{Text: question, Limit: limit}
	if day, confidence := ParseDateHint(question); confidence >= ConfidenceFilter {
		q.Day = &day
		q.Text = stripDateHint(question)
	}
	docs, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("retrieving documents: %w", err)
	}
	// A dated question with no dated matches falls back to keywords alone.
	if len(docs) == 0 && q.Day != nil {
		q.Day = nil
		if docs, err = s.store.Search(ctx, q); err != nil {
			return nil, fmt.Errorf("retrieving documents: %w", err)
		}
	}
	return docs, nil
}

// ListDocuments returns documents for a direct lookup (no summarization),
// clamping the limit to the configured maximum.
func (s *Service) ListDocuments(ctx context.Context, text string, day *ingest.Day, limit int) ([]ingest.Document, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	docs, err := s.store.Search(ctx, ingest.Query{Text: text, Day: day, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	if docs == nil {
		docs = []ingest.Document{}
	}
	return docs, nil
}
