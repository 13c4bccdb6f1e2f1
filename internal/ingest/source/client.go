// Package source implements the Federal Register API client and the
// fixed-cooldown retry controller that wraps it. The client classifies
// every response into a typed outcome; the controller decides whether and
// when to try again.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
)

// Status classifies one fetch attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusRateLimited
	StatusTransient
	StatusPermanent
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRateLimited:
		return "rate_limited"
	case StatusTransient:
		return "transient"
	case StatusPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of a single fetch attempt. TotalCount carries
// the upstream's reported document total so a future pager can detect a
// truncated first page; the current pipeline requests the maximum page size
// in one call.
type Outcome struct {
	Status      Status
	Payload     []byte
	ResultCount int
	TotalCount  int
	Reason      error
}

// countEnvelope decodes just enough of the payload to report counts.
type countEnvelope struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// Client fetches one publication day's documents from the upstream API.
// It performs no local mutation; staging is the pipeline's concern.
type Client struct {
	baseURL string
	perPage int
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(cfg config.SourceConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		perPage: cfg.PerPage,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  slog.Default().With("component", "source-client"),
	}
}

// Fetch requests every document published exactly on the given day. HTTP
// 429 maps to RateLimited, 5xx and transport errors to TransientFailure,
// any other non-2xx to PermanentFailure.
func (c *Client) Fetch(ctx context.Context, day ingest.Day) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dayURL(day), nil)
	if err != nil {
		return Outcome{Status: StatusPermanent, Reason: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{Status: StatusTransient, Reason: fmt.Errorf("fetching %s: %w", day, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Outcome{Status: StatusRateLimited, Reason: fmt.Errorf("upstream returned 429 for %s", day)}
	case resp.StatusCode >= 500:
		return Outcome{Status: StatusTransient, Reason: fmt.Errorf("upstream returned %d for %s", resp.StatusCode, day)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Outcome{Status: StatusPermanent, Reason: fmt.Errorf("upstream returned %d for %s", resp.StatusCode, day)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Status: StatusTransient, Reason: fmt.Errorf("reading response for %s: %w", day, err)}
	}

	var envelope countEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Outcome{Status: StatusPermanent, Reason: fmt.Errorf("malformed payload for %s: %w", day, err)}
	}

	c.logger.Debug("day fetched",
		"day", day.String(),
		"results", len(envelope.Results),
		"total", envelope.Count,
	)
	return Outcome{
		Status:      StatusSuccess,
		Payload:     payload,
		ResultCount: len(envelope.Results),
		TotalCount:  envelope.Count,
	}
}

// dayURL builds the documents request scoped to one publication date,
// asking for the largest page the API allows.
func (c *Client) dayURL(day ingest.Day) string {
	params := url.Values{}
	params.Set("per_page", fmt.Sprintf("%d", c.perPage))
	params.Set("conditions[publication_date][is]", day.String())
	return fmt.Sprintf("%s/documents.json?%s", c.baseURL, params.Encode())
}
