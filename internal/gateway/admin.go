package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/hexastack/slackbridge/internal/core"
)

// moduleJSON is one registry entry as /api/modules reports it.
type moduleJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// handleListModules serves GET /api/modules: every module compiled into
// this binary, whether or not the config enables it.
func (g *Gateway) handleListModules() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mods := core.GetModules()
		out := make([]moduleJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, moduleJSON{
				ID:        string(m.ID),
				Namespace: m.ID.Namespace(),
				Name:      m.ID.Name(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleListChannels serves GET /api/channels: the channel modules the
// running config actually wired.
func (g *Gateway) handleListChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		channels := []string{}
		if g.channels != nil {
			channels = g.channels.Channels()
		}
		writeJSON(w, http.StatusOK, channels)
	}
}

// handleReloadConfig triggers a hot-reload of module configuration. The
// reload function is provided by the application at wiring time; channels
// use it to pick up rotated credentials without a restart.
func (g *Gateway) handleReloadConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.reload == nil {
			http.Error(w, "reload not available", http.StatusServiceUnavailable)
			return
		}

		if err := g.reload(); err != nil {
			g.logger.Error("config reload failed", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		g.logger.Info("configuration reloaded successfully")
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
