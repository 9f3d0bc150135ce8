package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authMiddleware guards the admin routes. It accepts either a Bearer
// token or Basic credentials, whichever AuthConfig carries, and compares
// in constant time. Webhook routes never pass through here; Slack
// authenticates those with its own signature.
func authMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authorized(cfg, r) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func authorized(cfg AuthConfig, r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if header == "" {
		return false
	}

	if cfg.BearerToken != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && secureEqual(token, cfg.BearerToken) {
			return true
		}
	}

	if cfg.BasicUser != "" && cfg.BasicPass != "" {
		user, pass, ok := r.BasicAuth()
		if ok && secureEqual(user, cfg.BasicUser) && secureEqual(pass, cfg.BasicPass) {
			return true
		}
	}

	return false
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
