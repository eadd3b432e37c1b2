package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/config"
)

func newClassifyCmd() *cobra.Command {
	var flags classifierFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Identify the animal in an image without minting",
		Args:  cobra.ExactArgs(1),
		Example: `  wildmint classify fox.jpg
  wildmint classify heron.png --provider ollama --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load().Classifier
			flags.apply(cmd, &cfg)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			img, err := capture.Import(data, "", time.Now())
			if err != nil {
				return err
			}

			classifier, err := classification.NewClassifier(cfg)
			if err != nil {
				return err
			}
			raw, err := classifier.Classify(cmd.Context(), img)
			if err != nil {
				return err
			}
			result := classification.Parser(cfg.Structured)(raw)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintf(out, "Species:     %s\n", result.Species)
			fmt.Fprintf(out, "Description: %s\n", result.Description)
			fmt.Fprintf(out, "Animal:      %t\n", result.IsAnimal)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed result as JSON")

	return cmd
}
