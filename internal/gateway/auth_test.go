package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// adminStatus runs one request through the auth middleware and reports
// the status code.
func adminStatus(t *testing.T, cfg AuthConfig, decorate func(*http.Request)) int {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := authMiddleware(cfg)(inner)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	if decorate != nil {
		decorate(req)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestAuthMiddlewareBearer(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BearerToken: "admin-token"}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer admin-token", http.StatusOK},
		{"wrong token", "Bearer guessed", http.StatusUnauthorized},
		{"token without scheme", "admin-token", http.StatusUnauthorized},
		{"empty header", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adminStatus(t, cfg, func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})
			if got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareBasic(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{BasicUser: "operator", BasicPass: "hunter2"}

	if got := adminStatus(t, cfg, func(r *http.Request) {
		r.SetBasicAuth("operator", "hunter2")
	}); got != http.StatusOK {
		t.Errorf("valid credentials: status = %d, want %d", got, http.StatusOK)
	}

	if got := adminStatus(t, cfg, func(r *http.Request) {
		r.SetBasicAuth("operator", "wrong")
	}); got != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareBearerNotAcceptedAsBasic(t *testing.T) {
	t.Parallel()

	// Basic credentials against a bearer-only config must not pass.
	cfg := AuthConfig{BearerToken: "admin-token"}
	if got := adminStatus(t, cfg, func(r *http.Request) {
		r.SetBasicAuth("operator", "admin-token")
	}); got != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestAuthConfigIsConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  AuthConfig
		want bool
	}{
		{"empty", AuthConfig{}, false},
		{"bearer only", AuthConfig{BearerToken: "t"}, true},
		{"basic only", AuthConfig{BasicUser: "u", BasicPass: "p"}, true},
		{"basic user without pass", AuthConfig{BasicUser: "u"}, false},
		{"basic pass without user", AuthConfig{BasicPass: "p"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
