package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/internal/ingest/store"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
)

type fakeSummarizer struct {
	calls    int
	lastDocs []ingest.Document
	answer   string
	err      error
}

func (f *fakeSummarizer) Summarize(_ context.Context, question string, docs []ingest.Document) (string, error) {
	f.calls++
	f.lastDocs = docs
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return "summary of " + question, nil
}

func mustDay(t *testing.T, s string) ingest.Day {
	t.Helper()
	d, err := ingest.ParseDay(s)
	if err != nil {
		t.Fatalf("bad test day %q: %v", s, err)
	}
	return d
}

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	_, err := mem.Upsert(context.Background(), []ingest.Document{
		{DocumentNumber: "2025-001", Title: "Clean Air Act Implementation", PublicationDate: mustDay(t, "2025-05-01")},
		{DocumentNumber: "2025-002", Title: "Air Traffic Procedures", PublicationDate: mustDay(t, "2025-05-15")},
		{DocumentNumber: "2025-003", Title: "Drug Scheduling", PublicationDate: mustDay(t, "2025-05-15")},
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return mem
}

func TestAnswerSummarizesRetrievedDocuments(t *testing.T) {
	summarizer := &fakeSummarizer{answer: "Two air-related actions were published."}
	svc := NewService(seededStore(t), summarizer, nil, config.QueryConfig{DefaultLimit: 5})

	answer, err := svc.Answer(context.Background(), "air")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Text != "Two air-related actions were published." {
		t.Errorf("unexpected answer text %q", answer.Text)
	}
	if len(answer.Documents) != 2 {
		t.Errorf("expected 2 documents, got %d", len(answer.Documents))
	}
	if summarizer.calls != 1 {
		t.Errorf("expected 1 summarizer call, got %d", summarizer.calls)
	}
}

func TestAnswerWithNoMatchesSkipsSummarizer(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewService(seededStore(t), summarizer, nil, config.QueryConfig{DefaultLimit: 5})

	answer, err := svc.Answer(context.Background(), "tungsten futures")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer.Text != noDocumentsAnswer {
		t.Errorf("expected the no-documents answer, got %q", answer.Text)
	}
	if answer.Documents == nil || len(answer.Documents) != 0 {
		t.Errorf("expected empty non-nil documents, got %+v", answer.Documents)
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer called %d times for empty retrieval", summarizer.calls)
	}
}

func TestAnswerAppliesConfidentDateFilter(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewService(seededStore(t), summarizer, nil, config.QueryConfig{DefaultLimit: 5})

	_, err := svc.Answer(context.Background(), "air 2025-05-15")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(summarizer.lastDocs) != 1 {
		t.Fatalf("expected date filter to narrow to 1 document, got %d", len(summarizer.lastDocs))
	}
	if summarizer.lastDocs[0].DocumentNumber != "2025-002" {
		t.Errorf("wrong document retrieved: %s", summarizer.lastDocs[0].DocumentNumber)
	}
}

func TestAnswerFallsBackWhenDatedSearchIsEmpty(t *testing.T) {
	summarizer := &fakeSummarizer{}
	svc := NewService(seededStore(t), summarizer, nil, config.QueryConfig{DefaultLimit: 5})

	// No documents on this date; keywords alone still match.
	answer, err := svc.Answer(context.Background(), "air 2024-01-01")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Documents) != 2 {
		t.Errorf("expected keyword fallback to find 2 documents, got %d", len(answer.Documents))
	}
}

func TestAnswerPropagatesSummarizerFailure(t *testing.T) {
	summarizer := &fakeSummarizer{err: errors.New("model unavailable")}
	svc := NewService(seededStore(t), summarizer, nil, config.QueryConfig{DefaultLimit: 5})

	_, err := svc.Answer(context.Background(), "air")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected summarizer failure to propagate, got %v", err)
	}
}

func TestListDocumentsClampsLimit(t *testing.T) {
	mem := store.NewMemory()
	docs := make([]ingest.Document, 0, 10)
	day := mustDay(t, "2025-05-01")
	for i := 0; i < 10; i++ {
		docs = append(docs, ingest.Document{
			DocumentNumber:  string(rune('A' + i)),
			Title:           "Common Title",
			PublicationDate: day,
		})
	}
	if _, err := mem.Upsert(context.Background(), docs); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	svc := NewService(mem, &fakeSummarizer{}, nil, config.QueryConfig{DefaultLimit: 5, MaxLimit: 6})

	got, err := svc.ListDocuments(context.Background(), "common", nil, 100)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("expected limit clamped to 6, got %d", len(got))
	}

	got, err = svc.ListDocuments(context.Background(), "common", nil, 0)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected default limit 5, got %d", len(got))
	}
}

func TestListDocumentsReturnsEmptySliceNotNil(t *testing.T) {
	svc := NewService(store.NewMemory(), &fakeSummarizer{}, nil, config.QueryConfig{DefaultLimit: 5})
	got, err := svc.ListDocuments(context.Background(), "anything", nil, 5)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
}
