package classification

import (
	"fmt"

	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/gemini"
	"github.com/wildmint-labs/wildmint/internal/ollama"
	"github.com/wildmint-labs/wildmint/internal/openai"
	"github.com/wildmint-labs/wildmint/internal/providers"
)

// NewClassifier builds the configured vision provider
func NewClassifier(cfg config.Classifier) (providers.Classifier, error) {
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(cfg.Provider)
	}

	providerConfig := providers.Config{
		Model:       model,
		Temperature: cfg.Temperature,
		Structured:  cfg.Structured,
	}

	switch cfg.Provider {
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey, providerConfig), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIURL, providerConfig), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, providerConfig), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
