package query

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	apperrors "github.com/Akash-RK/federal-register-rag/pkg/errors"
)

// Handler exposes the query API over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:    svc,
		logger: slog.Default().With("component", "query-handler"),
	}
}

// Ask handles GET /api/v1/query?q=... and returns the summarized answer
// with the documents it was grounded on.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "missing q parameter"))
		return
	}

	answer, err := h.svc.Answer(r.Context(), question)
	if err != nil {
		h.logger.Error("query failed", "question", question, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":     question,
		"answer":    answer.Text,
		"documents": answer.Documents,
	})
}

// Documents handles GET /api/v1/documents?q=...&date=...&limit=... for
// direct lookups without summarization.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var day *ingest.Day
	if v := params.Get("date"); v != "" {
		parsed, err := ingest.ParseDay(v)
		if err != nil {
			writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid date %q, want YYYY-MM-DD", v))
			return
		}
		day = &parsed
	}
	limit := 0
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid limit %q", v))
			return
		}
		limit = n
	}

	docs, err := h.svc.ListDocuments(r.Context(), params.Get("q"), day, limit)
	if err != nil {
		h.logger.Error("document lookup failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(docs),
		"documents": docs,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{
		"error": err.Error(),
	})
}
