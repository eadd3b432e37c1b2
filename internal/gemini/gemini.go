package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey string
	config providers.Config
	opts   []option.ClientOption
}

// New returns a new Gemini provider
func New(apiKey string, config providers.Config, opts ...option.ClientOption) *Gemini {
	return &Gemini{
		apiKey: apiKey,
		config: config,
		opts:   opts,
	}
}

// Classify sends the image with the fixed system instruction to Gemini
func (g *Gemini) Classify(ctx context.Context, image models.CapturedImage) (string, error) {
	text, err := g.generate(ctx, image)
	if err != nil {
		return "", models.ClassificationServiceError(err)
	}
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, image models.CapturedImage) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.config.Model)
	model.SetTemperature(float32(g.config.Temperature))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(g.config.Instruction())},
	}
	if g.config.Structured {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = responseSchema()
	}

	resp, err := model.GenerateContent(ctx,
		genai.Text(providers.UserPrompt),
		genai.Blob{MIMEType: image.MIMEType, Data: image.Data},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return sb.String(), nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"animal":      {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"animal", "description"},
	}
}
