package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL    string
	config     providers.Config
	httpClient *http.Client
}

// New returns a new Ollama provider
func New(baseURL string, config providers.Config) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Ollama{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		config:     config,
		httpClient: &http.Client{},
	}
}

// Classify sends the image to /api/generate with the fixed system instruction
func (o *Ollama) Classify(ctx context.Context, image models.CapturedImage) (string, error) {
	text, err := o.generate(ctx, image)
	if err != nil {
		return "", models.ClassificationServiceError(err)
	}
	return text, nil
}

func (o *Ollama) generate(ctx context.Context, image models.CapturedImage) (string, error) {
	url := o.baseURL + "/api/generate"

	body := map[string]interface{}{
		"model":  o.config.Model,
		"system": o.config.Instruction(),
		"prompt": providers.UserPrompt,
		"images": []string{base64.StdEncoding.EncodeToString(image.Data)},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": o.config.Temperature,
		},
	}
	if o.config.Structured {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
