package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/config"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "wildmint",
		Short: "Photograph an animal, identify it, mint it as an NFT",
		Long: `Wildmint turns wildlife sightings into NFTs.

A captured or uploaded photo is identified by a vision-language model; when it
shows an animal, an NFT carrying the species, location and capture time is
minted to the owner's wallet.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := config.Load().SlogLevel()
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newSightCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
