package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

func newSightCmd() *cobra.Command {
	var flags classifierFlags
	var owner, mintEndpoint string
	var useCamera bool

	cmd := &cobra.Command{
		Use:   "sight [image]",
		Short: "Run one sighting through capture, classification and minting",
		Long: `Runs a single pipeline session from the command line.

The image comes from the given file, or from the snapshot camera
(CAMERA_SNAPSHOT_URL) with --camera. The session view, including the
provider's mint response, is printed as JSON. A photo without an animal ends
the session as failed and nothing is minted.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  # Mint in-process with CROSSMINT_API_KEY
  wildmint sight fox.jpg --owner <solana address>

  # Mint through a running server
  wildmint sight fox.jpg --owner <solana address> --mint-endpoint http://localhost:8888/mint

  # Take the photo with the configured camera
  wildmint sight --camera --owner <solana address>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !useCamera {
				return fmt.Errorf("an image file or --camera is required")
			}

			cfg := config.Load()
			flags.apply(cmd, &cfg.Classifier)
			if mintEndpoint != "" {
				cfg.Mint.Endpoint = mintEndpoint
			}

			classifier, err := classification.NewClassifier(cfg.Classifier)
			if err != nil {
				return err
			}
			_, minter := newMinters(cfg.Mint)

			opts := pipeline.Options{
				Owner:      owner,
				Classifier: classifier,
				Structured: cfg.Classifier.Structured,
				Minter:     minter,
			}
			if useCamera {
				if cfg.Camera.SnapshotURL == "" {
					return fmt.Errorf("--camera requires CAMERA_SNAPSHOT_URL")
				}
				opts.Camera = capture.NewSnapshotCamera(cfg.Camera.SnapshotURL)
			}

			session, err := pipeline.NewSession(opts)
			if err != nil {
				return err
			}
			defer session.Close()

			if useCamera {
				err = session.Capture(cmd.Context())
			} else {
				var data []byte
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				err = session.ImportFile(data, "")
			}
			if err != nil {
				return err
			}

			stageErr := session.Confirm(cmd.Context())
			if stageErr != nil && !models.IsStage(stageErr) {
				return stageErr
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(session.Snapshot()); err != nil {
				return err
			}

			if stageErr != nil {
				slog.Debug("Sighting not minted", "session_id", session.ID(), "state", session.State())
				return stageErr
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&owner, "owner", "", "Owner's wallet public key (required)")
	cmd.Flags().StringVar(&mintEndpoint, "mint-endpoint", "", "Mint through this POST /mint URL instead of in-process (overrides MINT_ENDPOINT)")
	cmd.Flags().BoolVar(&useCamera, "camera", false, "Capture from the snapshot camera instead of a file")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
