// Package summarize renders natural-language answers from retrieved
// documents using an OpenAI-compatible chat endpoint (a local Ollama
// instance in the default configuration).
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/Akash-RK/federal-register-rag/pkg/metrics"
	"github.com/Akash-RK/federal-register-rag/pkg/resilience"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Summarizer generates answers with a language model, guarded by a circuit
// breaker so a wedged model endpoint fails fast instead of piling up
// requests.
type Summarizer struct {
	model       llms.Model
	maxTokens   int
	temperature float64
	breaker     *resilience.CircuitBreaker
	m           *metrics.Metrics
	logger      *slog.Logger
}

// New creates a Summarizer against the configured OpenAI-compatible
// endpoint.
func New(cfg config.LLMConfig, m *metrics.Metrics) (*Summarizer, error) {
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	return NewWithModel(model, cfg, m), nil
}

// NewWithModel wires a Summarizer around an existing model, letting tests
// inject a fake.
func NewWithModel(model llms.Model, cfg config.LLMConfig, m *metrics.Metrics) *Summarizer {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Summarizer{
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		breaker:     resilience.NewCircuitBreaker("llm", resilience.CircuitBreakerConfig{}),
		m:           m,
		logger:      slog.Default().With("component", "summarizer"),
	}
}

// Summarize answers the question from the retrieved documents. Transient
// model failures are retried with backoff inside the circuit breaker.
func (s *Summarizer) Summarize(ctx context.Context, question string, docs []ingest.Document) (string, error) {
	prompt := buildPrompt(question, docs)
	start := time.Now()

	var answer string
	err := s.breaker.Execute(func() error {
		return resilience.Retry(ctx, "llm-generate", resilience.RetryConfig{MaxAttempts: 2}, func() error {
			completion, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt,
				llms.WithMaxTokens(s.maxTokens),
				llms.WithTemperature(s.temperature),
			)
			if err != nil {
				return err
			}
			answer = strings.TrimSpace(completion)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	elapsed := time.Since(start)
	if s.m != nil {
		s.m.SummaryLatency.Observe(elapsed.Seconds())
	}
	s.logger.Debug("answer generated",
		"documents", len(docs),
		"prompt_len", len(prompt),
		"elapsed", elapsed,
	)
	return answer, nil
}
