package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Uptime         float64  `json:"uptime_seconds"`
	StartedAt      string   `json:"started_at"`
	Channels       []string `json:"channels"`
	WebhookSources []string `json:"webhook_sources"`
}

// handleStatus serves GET /status behind admin auth.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:         time.Since(g.startedAt).Truncate(time.Second).Seconds(),
			StartedAt:      g.startedAt.UTC().Format(time.RFC3339),
			Channels:       []string{},
			WebhookSources: g.dispatcher.Sources(),
		}
		if g.channels != nil {
			resp.Channels = g.channels.Channels()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
