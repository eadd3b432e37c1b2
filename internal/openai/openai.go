package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

// DefaultURL is the chat completions endpoint
const DefaultURL = "https://api.openai.com/v1/chat/completions"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	apiKey     string
	url        string
	config     providers.Config
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(apiKey, url string, config providers.Config) *OpenAI {
	if url == "" {
		url = DefaultURL
	}
	return &OpenAI{
		apiKey:     apiKey,
		url:        url,
		config:     config,
		httpClient: &http.Client{},
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	MaxTokens      int               `json:"max_tokens"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify sends the image as a data URL alongside the fixed system instruction
func (o *OpenAI) Classify(ctx context.Context, image models.CapturedImage) (string, error) {
	text, err := o.complete(ctx, image)
	if err != nil {
		return "", models.ClassificationServiceError(err)
	}
	return text, nil
}

func (o *OpenAI) complete(ctx context.Context, image models.CapturedImage) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	body := chatRequest{
		Model: o.config.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: o.config.Instruction(),
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: providers.UserPrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: image.DataURL()}},
				},
			},
		},
		MaxTokens:   500,
		Temperature: o.config.Temperature,
	}
	if o.config.Structured {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(respBody))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
