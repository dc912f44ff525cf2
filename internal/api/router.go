/**
 * @description
 * This file sets up the HTTP router for the assistant-service: standard chi
 * middleware, a health check, and the internal-key-protected endpoints for
 * inbound messages and mandate webhooks.
 *
 * @dependencies
 * - net/http, time: Standard Go libraries.
 * - github.com/go-chi/chi/v5: HTTP routing and middleware.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AssistantRoutes creates the router for the assistant service.
func AssistantRoutes(h *Handlers, internalAPIKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Group(func(r chi.Router) {
		r.Use(InternalKeyMiddleware(internalAPIKey))

		r.Post("/assistant/messages", h.HandleInboundMessage)
		r.Post("/webhooks/mandates", h.HandleMandateWebhook)
		r.Get("/assistant/users/{userID}/transfers", h.HandleListTransfers)
	})

	return r
}
