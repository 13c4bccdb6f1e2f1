package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// fakeModel records the prompts it receives and replays scripted replies.
type fakeModel struct {
	prompts []string
	reply   string
	errs    []error
	calls   int
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func testDocs(t *testing.T) []ingest.Document {
	t.Helper()
	day, err := ingest.ParseDay("2025-05-01")
	if err != nil {
		t.Fatalf("bad test day: %v", err)
	}
	return []ingest.Document{
		{
			DocumentNumber:  "2025-09123",
			Title:           "Air Quality Designations",
			PublicationDate: day,
			DocumentType:    "Rule",
			Abstract:        "Final designations for ozone standards.",
			Agencies:        []string{"Environmental Protection Agency"},
		},
	}
}

func TestSummarizeTrimsModelOutput(t *testing.T) {
	model := &fakeModel{reply: "  The EPA finalized ozone designations.\n"}
	s := NewWithModel(model, config.LLMConfig{MaxTokens: 500}, nil)

	answer, err := s.Summarize(context.Background(), "what did the EPA publish?", testDocs(t))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if answer != "The EPA finalized ozone designations." {
		t.Errorf("unexpected answer %q", answer)
	}
	if model.calls != 1 {
		t.Errorf("expected 1 model call, got %d", model.calls)
	}
}

func TestSummarizePromptCarriesQuestionAndDocuments(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := NewWithModel(model, config.LLMConfig{}, nil)

	if _, err := s.Summarize(context.Background(), "what did the EPA publish?", testDocs(t)); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(model.prompts))
	}
	prompt := model.prompts[0]
	for _, want := range []string{
		"what did the EPA publish?",
		"Document Number: 2025-09123",
		"Title: Air Quality Designations",
		"Publication Date: 2025-05-01",
		"Abstract: Final designations for ozone standards.",
		"Agencies: Environmental Protection Agency",
		"### Answer:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeRetriesTransientModelFailure(t *testing.T) {
	model := &fakeModel{
		reply: "eventually fine",
		errs:  []error{errors.New("connection reset")},
	}
	s := NewWithModel(model, config.LLMConfig{}, nil)

	answer, err := s.Summarize(context.Background(), "anything", testDocs(t))
	if err != nil {
		t.Fatalf("Summarize failed after retry: %v", err)
	}
	if answer != "eventually fine" {
		t.Errorf("unexpected answer %q", answer)
	}
	if model.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", model.calls)
	}
}

func TestSummarizePropagatesPersistentFailure(t *testing.T) {
	model := &fakeModel{
		errs: []error{errors.New("model gone"), errors.New("model gone")},
	}
	s := NewWithModel(model, config.LLMConfig{}, nil)

	_, err := s.Summarize(context.Background(), "anything", testDocs(t))
	if err == nil || !strings.Contains(err.Error(), "model gone") {
		t.Fatalf("expected persistent failure to surface, got %v", err)
	}
}
