package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

// HandleUpload imports an image into the session, as a multipart file or as
// a JSON data URL
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleDataURLUpload(w, r, session)
		return
	}

	h.handleFileUpload(w, r, session)
}

func (h *Handler) handleDataURLUpload(w http.ResponseWriter, r *http.Request, session *pipeline.Session) {
	var request struct {
		Image string `json:"image"`
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, 2*capture.MaxImageSize)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.Image == "" {
		h.writeError(w, "image is required", http.StatusBadRequest)
		return
	}

	data, mimeType, err := capture.ParseDataURL(request.Image)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.importImage(w, session, data, mimeType)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request, session *pipeline.Session) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, capture.MaxImageSize+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.importImage(w, session, fileData, header.Header.Get("Content-Type"))
}

func (h *Handler) importImage(w http.ResponseWriter, session *pipeline.Session, data []byte, mimeType string) {
	if err := session.ImportFile(data, mimeType); err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, http.StatusOK, session.Snapshot())
}
