package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a chi router with all control endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()

	// middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// basic cors
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS", "DELETE"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// health check
	r.Get("/health", handler.Health)

	// api v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// forwarding lifecycle
		r.Post("/forwarder/start", handler.Start)
		r.Delete("/forwarder/current", handler.Stop)
		r.Get("/status", handler.Status)

		// configuration and account info
		r.Get("/jobs", handler.ListJobs)
		r.Get("/chats", handler.ListChats)

		// completed forwards
		r.Get("/history", handler.History)
	})

	return r
}
