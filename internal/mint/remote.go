package mint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wildmint-labs/wildmint/internal/models"
)

// EndpointRequest is the body of POST /mint
type EndpointRequest struct {
	Image       string     `json:"image"`
	Species     string     `json:"species"`
	Description string     `json:"description"`
	PublicKey   string     `json:"publicKey"`
	CapturedAt  *time.Time `json:"capturedAt,omitempty"`
}

// RemoteMinter mints through a POST /mint endpoint, so the provider key stays
// on the server
type RemoteMinter struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewRemoteMinter creates a minter for the given /mint URL
func NewRemoteMinter(endpoint string) *RemoteMinter {
	return &RemoteMinter{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{},
	}
}

// Mint posts the sighting and relays the server's answer
func (r *RemoteMinter) Mint(ctx context.Context, in Input) (models.MintResult, error) {
	if !in.Result.IsAnimal {
		return models.MintResult{}, models.NonAnimalError(in.Result.Description)
	}

	payload := EndpointRequest{
		Species:     in.Result.Species,
		Description: in.Result.Description,
		PublicKey:   in.Owner,
	}
	if len(in.Image.Data) > 0 {
		payload.Image = in.Image.DataURL()
	}
	if !in.Image.CapturedAt.IsZero() {
		capturedAt := in.Image.CapturedAt
		payload.CapturedAt = &capturedAt
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return models.MintResult{}, models.MintServiceError("", fmt.Errorf("failed to marshal mint request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.Endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return models.MintResult{}, models.MintServiceError("", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return models.MintResult{}, models.MintServiceError(err.Error(), err)
	}
	defer resp.Body.Close()

	return readResult(resp)
}
