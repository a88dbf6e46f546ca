package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tildaslashalef/revu/internal/export"
	"github.com/tildaslashalef/revu/internal/history"
	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
)

// Handler serves the review API endpoints
type Handler struct {
	reviews      *review.Service
	store        *history.Service
	maxBodyBytes int64
	logger       *loggy.Logger

	sessionOnce sync.Once
	sessionID   string
}

// NewHandler creates a new API handler
func NewHandler(reviews *review.Service, store *history.Service, maxBodyBytes int64, logger *loggy.Logger) *Handler {
	return &Handler{
		reviews:      reviews,
		store:        store,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

type detectRequest struct {
	Code string `json:"code"`
}

type reviewRequest struct {
	Code             string `json:"code"`
	Language         string `json:"language"`
	OriginalFileName string `json:"original_file_name,omitempty"`
}

type reviewResponse struct {
	ID            string                  `json:"id,omitempty"`
	Language      review.Language         `json:"language"`
	Review        review.StructuredReview `json:"review"`
	SuggestedCode *string                 `json:"suggested_code"`
}

type explainRequest struct {
	Code     string       `json:"code"`
	Language string       `json:"language"`
	Point    review.Point `json:"point"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Detect handles POST /api/v1/detect
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.reviews.DetectLanguage(r.Context(), req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Review handles POST /api/v1/review. A language of "auto" (or none) runs the
// detect-then-review flow; an inconclusive detection aborts the operation.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	language := review.LanguageAuto
	if req.Language != "" && req.Language != string(review.LanguageAuto) {
		language = review.ParseLanguage(req.Language)
		if language == review.LanguageAuto {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("unsupported language: %s", req.Language),
				Kind:  string(review.ErrKindBadRequest),
			})
			return
		}
	}

	if req.OriginalFileName != "" && language == review.LanguageAuto {
		// An uploaded file's extension pre-selects the tag before any
		// detection round-trip happens
		language = review.LanguageFromFileName(req.OriginalFileName)
	}

	reviewReq := review.Request{
		Code:             req.Code,
		Language:         language,
		OriginalFileName: req.OriginalFileName,
	}

	result, reviewedAs, err := h.reviews.Review(r.Context(), reviewReq)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := reviewResponse{
		Language:      reviewedAs,
		Review:        result.Review,
		SuggestedCode: result.SuggestedCode,
	}

	if entry := h.save(r.Context(), reviewReq, reviewedAs, *result); entry != nil {
		resp.ID = entry.ID
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Explain handles POST /api/v1/explain
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !h.decode(w, r, &req) {
		return
	}

	language := review.ParseLanguage(req.Language)
	explanation, err := h.reviews.ExplainFurther(r.Context(), req.Code, language, req.Point)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, explainResponse{Explanation: explanation})
}

// ListReviews handles GET /api/v1/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	entries, err := h.store.ListReviews(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if entries == nil {
		entries = []*history.Entry{}
	}

	h.writeJSON(w, http.StatusOK, entries)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, entry)
}

// ExportReview handles GET /api/v1/reviews/{id}/export
func (h *Handler) ExportReview(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	doc := export.Markdown(entry, export.DefaultOptions())
	name := export.FileName(entry, time.Now())

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// save stores a completed review under the server's session. History is a
// convenience here; a storage failure never fails the review itself.
func (h *Handler) save(ctx context.Context, req review.Request, language review.Language, result review.CodeReview) *history.Entry {
	if h.store == nil {
		return nil
	}

	h.sessionOnce.Do(func() {
		session, err := h.store.StartSession(ctx, "")
		if err != nil {
			h.logger.Warn("Failed to start history session", "error", err)
			return
		}
		h.sessionID = session.ID
	})

	if h.sessionID == "" {
		return nil
	}

	entry, err := h.store.SaveReview(ctx, h.sessionID, req, language, result)
	if err != nil {
		h.logger.Warn("Failed to save review to history", "error", err)
		return nil
	}

	return entry
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "invalid request body",
			Kind:  string(review.ErrKindBadRequest),
		})
		return false
	}

	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps orchestrator errors to HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrEmptySnippet), errors.Is(err, review.ErrDetectionInconclusive):
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	var classified *review.Error
	if errors.As(err, &classified) {
		status := http.StatusBadGateway
		switch classified.Kind {
		case review.ErrKindBadRequest:
			status = http.StatusBadRequest
		case review.ErrKindUnknown:
			status = http.StatusInternalServerError
		}

		h.writeJSON(w, status, errorResponse{
			Error: classified.Message,
			Kind:  string(classified.Kind),
		})
		return
	}

	h.logger.Error("Unclassified error in handler", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}

	return value
}
