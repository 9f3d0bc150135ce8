package gateway

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	WebhookSources []string `json:"webhook_sources"`
}

// handleHealth serves GET /health: 200 with at least one channel
// registered, 503 "degraded" otherwise. A bridge without channels is
// reachable but cannot move events, and the probe should say so.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:         "ok",
			Channels:       []string{},
			WebhookSources: g.dispatcher.Sources(),
		}
		if g.channels != nil {
			resp.Channels = g.channels.Channels()
		}
		if len(resp.Channels) == 0 {
			resp.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
