package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wildmint-labs/wildmint/internal/metrics"
	"github.com/wildmint-labs/wildmint/internal/mint"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
	"github.com/wildmint-labs/wildmint/internal/storage"
)

// SessionFactory builds a new pipeline session for an owner
type SessionFactory func(owner string) (*pipeline.Session, error)

// Options are the dependencies of the HTTP layer. Metrics is optional.
type Options struct {
	Store      *storage.SessionStore
	NewSession SessionFactory
	// Minter serves POST /mint and must hold the provider key in-process.
	Minter  mint.Minter
	Metrics *metrics.Metrics
}

type Handler struct {
	sessionStore *storage.SessionStore
	newSession   SessionFactory
	minter       mint.Minter
	metrics      *metrics.Metrics
	now          func() time.Time
}

func New(opts Options) *Handler {
	store := opts.Store
	if store == nil {
		store = storage.New()
	}
	return &Handler{
		sessionStore: store,
		newSession:   opts.NewSession,
		minter:       opts.Minter,
		metrics:      opts.Metrics,
		now:          time.Now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, errorResponse{Error: message})
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*pipeline.Session, bool) {
	session, exists := h.sessionStore.Get(chi.URLParam(r, "id"))
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// statusFor maps an operation error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrBusy), errors.Is(err, pipeline.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrCapture):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
