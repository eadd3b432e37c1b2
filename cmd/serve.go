package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildmint-labs/wildmint/internal/capture"
	"github.com/wildmint-labs/wildmint/internal/classification"
	"github.com/wildmint-labs/wildmint/internal/config"
	"github.com/wildmint-labs/wildmint/internal/handlers"
	"github.com/wildmint-labs/wildmint/internal/metrics"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
	"github.com/wildmint-labs/wildmint/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mint endpoint and session API",
		Long: `Starts the Wildmint HTTP server.

POST /mint mints an identified sighting with the server-held provider key.
The /api/sessions endpoints drive the capture -> classify -> mint pipeline
for a UI: upload or capture an image, confirm it, read the outcome, reset.`,
		Example: `  # Start server on default port 8888
  wildmint serve

  # Start server on custom port
  wildmint serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			classifier, err := classification.NewClassifier(cfg.Classifier)
			if err != nil {
				return err
			}
			mintService, sessionMinter := newMinters(cfg.Mint)
			m := metrics.New()
			store := storage.New()
			defer store.Close()

			handler := handlers.New(handlers.Options{
				Store: store,
				NewSession: func(owner string) (*pipeline.Session, error) {
					opts := pipeline.Options{
						Owner:      owner,
						Classifier: classifier,
						Structured: cfg.Classifier.Structured,
						Minter:     sessionMinter,
						Observer:   m,
					}
					if cfg.Camera.SnapshotURL != "" {
						opts.Camera = capture.NewSnapshotCamera(cfg.Camera.SnapshotURL)
					}
					return pipeline.NewSession(opts)
				},
				Minter:  mintService,
				Metrics: m,
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Wildmint server available", "addr", addr, "url", "http://localhost"+addr,
					"provider", cfg.Classifier.Provider, "model", cfg.Classifier.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (overrides PORT)")

	return cmd
}
