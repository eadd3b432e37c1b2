package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/mint"
	"github.com/wildmint-labs/wildmint/internal/models"
)

// HandleMint mints an already classified sighting. The provider response is
// relayed unmodified on success; failures answer {"error": message}.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	if h.minter == nil {
		h.writeError(w, "Minting is not configured", http.StatusServiceUnavailable)
		return
	}

	var request mint.EndpointRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*capture.MaxImageSize)).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(request.PublicKey) == "" {
		h.writeError(w, "publicKey is required", http.StatusBadRequest)
		return
	}

	species := strings.TrimSpace(request.Species)
	if !classification.IsAnimalSpecies(species) {
		h.writeError(w, "species must name an animal", http.StatusBadRequest)
		return
	}

	capturedAt := h.now()
	if request.CapturedAt != nil && !request.CapturedAt.IsZero() {
		capturedAt = *request.CapturedAt
	}

	img := models.CapturedImage{CapturedAt: capturedAt}
	if request.Image != "" {
		imported, err := capture.ImportDataURL(request.Image, capturedAt)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		img = imported
	}

	result, err := h.minter.Mint(r.Context(), mint.Input{
		Image: img,
		Result: models.ClassificationResult{
			Species:     species,
			Description: request.Description,
			IsAnimal:    true,
		},
		Owner: request.PublicKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, mint.ErrInvalidRecipient), errors.Is(err, models.ErrNonAnimal):
			h.writeError(w, err.Error(), http.StatusBadRequest)
		default:
			h.writeError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Raw); err != nil {
		slog.Error("Unable to write mint response", "err", err)
	}
}
