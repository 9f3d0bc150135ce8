package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter assembles the chi mux the gateway serves from.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Health and metrics stay open for probes and scrapers.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", g.metrics.Handler())

	// Webhook sources authenticate their own requests; Slack signs them.
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Without admin credentials configured the admin surface does not
	// exist at all, rather than existing unprotected.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Get("/modules", g.handleListModules())
				r.Get("/channels", g.handleListChannels())
				r.Post("/config/reload", g.handleReloadConfig())
			})
		})
	}

	return r
}
