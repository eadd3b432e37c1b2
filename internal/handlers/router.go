package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes wires the mint endpoint, the session API and the operational endpoints
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Post("/mint", h.HandleMint)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", h.HandleListSessions)
		r.Post("/", h.HandleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Post("/upload", h.HandleUpload)
			r.Post("/capture", h.HandleCapture)
			r.Post("/confirm", h.HandleConfirm)
			r.Post("/reset", h.HandleReset)
			r.Get("/image", h.HandleImage)
		})
	})

	return r
}
