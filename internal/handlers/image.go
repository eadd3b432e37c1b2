package handlers

import (
	"net/http"
	"strconv"
)

// HandleImage serves the session's captured image
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	img, ok := session.Image()
	if !ok {
		h.writeError(w, "No image captured", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(img.Data)
}
