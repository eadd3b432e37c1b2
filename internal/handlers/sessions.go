package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/models"
)

type createSessionRequest struct {
	PublicKey string `json:"publicKey"`
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.List()
	sessionList := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, session.Snapshot())
	}
	h.writeJSON(w, http.StatusOK, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && err != io.EOF {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(request.PublicKey) == "" {
		h.writeError(w, "publicKey is required", http.StatusBadRequest)
		return
	}

	session, err := h.newSession(request.PublicKey)
	if err != nil {
		h.writeError(w, "Failed to create session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.sessionStore.Set(session)
	if h.metrics != nil {
		h.metrics.SessionOpened()
	}

	slog.Info("Session created", "session_id", session.ID(), "owner", session.Owner())
	h.writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if h.sessionStore.Delete(session.ID()) && h.metrics != nil {
		h.metrics.SessionClosed()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := session.Capture(r.Context()); err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}

// HandleConfirm runs classification and minting. Stage failures are part of
// the session and are returned with the session view.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	// a dropped client connection must not abort an issued classify or mint call
	ctx := context.WithoutCancel(r.Context())
	if err := session.Confirm(ctx); err != nil && !models.IsStage(err) {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	if err := session.Reset(); err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}
