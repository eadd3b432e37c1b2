package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// PlaceholderImageURL is the image every sighting NFT points at unless
// captured-image mode is on.
const PlaceholderImageURL = "https://images.prestigeonline.com/wp-content/uploads/sites/6/2024/09/26220054/459118063_539597145247047_8853740358288590339_n.jpeg"

// Config is the full runtime configuration, read from the environment
type Config struct {
	Port       string
	LogLevel   string
	Classifier Classifier
	Mint       Mint
	Camera     Camera
}

// Classifier selects and configures the vision-language provider
type Classifier struct {
	Provider     string
	Model        string
	Temperature  float64
	Structured   bool
	GeminiAPIKey string
	OpenAIAPIKey string
	OpenAIURL    string
	OllamaURL    string
}

// Mint configures the minting provider and the fixed sighting attributes
type Mint struct {
	APIKey           string
	Chain            string
	Env              string
	ProviderHost     string
	APIVersion       string
	Collection       string
	ImageURL         string
	UseCapturedImage bool
	Latitude         string
	Longitude        string
	// Endpoint, when set, sends mint requests to a remote POST /mint instead of
	// calling the provider in-process.
	Endpoint string
}

// Camera configures the snapshot camera; empty URL means upload only
type Camera struct {
	SnapshotURL string
}

// Load reads the configuration from environment variables
func Load() Config {
	provider := strings.ToLower(getEnv("CLASSIFIER_PROVIDER", "gemini"))

	cfg := Config{
		Port:     getEnv("PORT", "8888"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Classifier: Classifier{
			Provider:     provider,
			Model:        getEnv("CLASSIFIER_MODEL", DefaultModel(provider)),
			Temperature:  getFloat("CLASSIFIER_TEMPERATURE", 0.1),
			Structured:   getBool("CLASSIFIER_STRUCTURED", false),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OpenAIURL:    getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
			OllamaURL:    getEnv("OLLAMA_URL", getEnv("OLLAMA_HOST", "http://localhost:11434")),
		},
		Mint: Mint{
			APIKey:           os.Getenv("CROSSMINT_API_KEY"),
			Chain:            getEnv("MINT_CHAIN", "solana"),
			Env:              getEnv("MINT_ENV", "staging"),
			ProviderHost:     getEnv("MINT_PROVIDER_HOST", "crossmint.com"),
			APIVersion:       getEnv("MINT_API_VERSION", "2022-06-09"),
			Collection:       getEnv("MINT_COLLECTION", "default"),
			ImageURL:         getEnv("MINT_IMAGE_URL", PlaceholderImageURL),
			UseCapturedImage: getBool("MINT_USE_CAPTURED_IMAGE", false),
			Latitude:         getEnv("MINT_LATITUDE", "40.7468733"),
			Longitude:        getEnv("MINT_LONGITUDE", "-73.9947449"),
			Endpoint:         os.Getenv("MINT_ENDPOINT"),
		},
		Camera: Camera{
			SnapshotURL: os.Getenv("CAMERA_SNAPSHOT_URL"),
		},
	}

	return cfg
}

// DefaultModel returns the model used when CLASSIFIER_MODEL is not set
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-1.5-flash"
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

// Validate reports configuration that cannot work at all
func (c Config) Validate() error {
	switch c.Classifier.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported classifier provider: %s", c.Classifier.Provider)
	}
	if c.Mint.Chain == "" {
		return fmt.Errorf("MINT_CHAIN must not be empty")
	}
	if c.Mint.Endpoint == "" && c.Mint.APIKey == "" {
		slog.Warn("CROSSMINT_API_KEY not set, minting will fail")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Ignoring invalid boolean", "key", key, "value", value)
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Ignoring invalid number", "key", key, "value", value)
		return fallback
	}
	return f
}
