package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Token issuance (no auth required)
		r.Get("/auth/token", s.handleIssueToken)

		// System metrics (no auth required for basic monitoring)
		r.Get("/metrics", s.handleMetrics)

		// WebSocket (token via header or query, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/gadgets", func(r chi.Router) {
				r.Get("/", s.handleListGadgets)
				r.Post("/", s.handleCreateGadget)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetGadget)
					r.Patch("/", s.handleUpdateGadget)
					r.Delete("/", s.handleDecommissionGadget)
					r.Get("/history", s.handleGadgetHistory)
					r.Post("/self-destruct", s.handleRequestSelfDestruct)
					r.Post("/self-destruct/confirm", s.handleConfirmSelfDestruct)
				})
			})

			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
