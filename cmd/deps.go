package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/mint"
)

// newMinters returns the in-process mint service and the minter sessions use:
// the service itself, or a remote POST /mint when an endpoint is configured.
func newMinters(cfg config.Mint) (*mint.Service, mint.Minter) {
	service := mint.NewService(mint.NewBuilder(cfg), mint.NewClient(cfg))
	if cfg.Endpoint != "" {
		slog.Info("Minting through remote endpoint", "endpoint", cfg.Endpoint)
		return service, mint.NewRemoteMinter(cfg.Endpoint)
	}
	return service, service
}

type classifierFlags struct {
	provider   string
	model      string
	structured bool
}

func (f *classifierFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Classifier provider (gemini, openai, or ollama); overrides CLASSIFIER_PROVIDER")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&f.structured, "structured", false, "Ask the provider for a JSON answer")
}

// apply overrides the environment configuration with the flags that were set
func (f *classifierFlags) apply(cmd *cobra.Command, cfg *config.Classifier) {
	if f.provider != "" {
		cfg.Provider = strings.ToLower(f.provider)
		cfg.Model = config.DefaultModel(cfg.Provider)
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if cmd.Flags().Changed("structured") {
		cfg.Structured = f.structured
	}
}
