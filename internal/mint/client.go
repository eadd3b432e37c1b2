package mint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/models"
)

// GenericFailure is reported when the service gives no message of its own
const GenericFailure = "Failed to mint NFT"

// Client talks to the NFT minting provider. It holds the provider API key and
// must only run server side.
type Client struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Collection string
	HTTPClient *http.Client
}

// NewClient creates a provider client targeting https://{env}.{host}
func NewClient(cfg config.Mint) *Client {
	return &Client{
		APIKey:     cfg.APIKey,
		BaseURL:    fmt.Sprintf("https://%s.%s", cfg.Env, cfg.ProviderHost),
		APIVersion: cfg.APIVersion,
		Collection: cfg.Collection,
		HTTPClient: &http.Client{},
	}
}

// Endpoint is the collection's NFT creation URL
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s/api/%s/collections/%s/nfts", strings.TrimSuffix(c.BaseURL, "/"), c.APIVersion, c.Collection)
}

// Submit creates the NFT. The provider's response body is returned unmodified.
func (c *Client) Submit(ctx context.Context, request models.MintRequest) (models.MintResult, error) {
	if c.APIKey == "" {
		return models.MintResult{}, models.MintServiceError("minting provider API key not configured", nil)
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return models.MintResult{}, models.MintServiceError("", fmt.Errorf("failed to marshal mint request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint(), bytes.NewBuffer(requestBody))
	if err != nil {
		return models.MintResult{}, models.MintServiceError("", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.MintResult{}, models.MintServiceError(err.Error(), err)
	}
	defer resp.Body.Close()

	return readResult(resp)
}

// readResult turns a mint response (provider or POST /mint) into a result or a MintServiceError
func readResult(resp *http.Response) (models.MintResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.MintResult{}, models.MintServiceError(err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serviceMessage(body)
		if msg == "" {
			msg = GenericFailure
		}
		slog.Error("Mint request rejected", "status", resp.StatusCode, "message", msg)
		return models.MintResult{}, models.MintServiceError(msg, fmt.Errorf("mint service returned status %d", resp.StatusCode))
	}

	if !json.Valid(body) {
		return models.MintResult{}, models.MintServiceError("mint service returned an invalid response", nil)
	}

	result := models.MintResult{
		Raw:         json.RawMessage(body),
		ExplorerURL: explorerURL(body),
	}
	if result.ExplorerURL == "" {
		slog.Warn("Mint response carries no explorer reference")
	}
	return result, nil
}

// serviceMessage extracts "message", or a string "error", from an error body
func serviceMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	var errText string
	if err := json.Unmarshal(payload.Error, &errText); err == nil {
		return errText
	}
	return ""
}

// explorerURL finds a viewable reference in a mint response
func explorerURL(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	candidates := []map[string]any{payload}
	if onChain, ok := payload["onChain"].(map[string]any); ok {
		candidates = append(candidates, onChain)
	}
	for _, m := range candidates {
		for _, key := range []string{"explorerUrl", "explorerLink", "url"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
