package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeLister is a minimal channel dispatcher view for health testing.
type fakeLister struct {
	channels []string
}

func (f *fakeLister) Channels() []string { return f.channels }

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g := &Gateway{
		logger:    discardLogger(),
		metrics:   NewMetrics(),
		startedAt: time.Now(),
	}
	g.config.defaults()
	g.dispatcher = NewWebhookDispatcher(g.logger, g.metrics)
	return g
}

func TestHandleHealthOK(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	g.channels = &fakeLister{channels: []string{"channel.slack"}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth()(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want %q", resp.Status, "ok")
	}
	if len(resp.Channels) != 1 || resp.Channels[0] != "channel.slack" {
		t.Errorf("Channels = %v", resp.Channels)
	}
}

func TestHandleHealthDegradedWithoutChannels(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth()(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	g.startedAt = time.Now().Add(-90 * time.Second)
	g.channels = &fakeLister{channels: []string{"channel.slack"}}
	g.dispatcher.Register("slack", &recordingHandler{}, "")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	g.handleStatus()(rr, req)

	var resp StatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Uptime < 89 {
		t.Errorf("Uptime = %v, want >= 89s", resp.Uptime)
	}
	if len(resp.WebhookSources) != 1 || resp.WebhookSources[0] != "slack" {
		t.Errorf("WebhookSources = %v", resp.WebhookSources)
	}
}

func TestHandleReloadConfig(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)

	// Without a reload function the endpoint is unavailable.
	rr := httptest.NewRecorder()
	g.handleReloadConfig()(rr, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	g.reload = func() error { return nil }
	rr = httptest.NewRecorder()
	g.handleReloadConfig()(rr, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	g.reload = func() error { return errors.New("bad config") }
	rr = httptest.NewRecorder()
	g.handleReloadConfig()(rr, httptest.NewRequest(http.MethodPost, "/api/config/reload", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestBuildRouterMountsAdminOnlyWithAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	mux := g.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status without auth config = %d, want %d", rr.Code, http.StatusNotFound)
	}

	g.config.Auth.BearerToken = "token"
	mux = g.buildRouter()

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status without credentials = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("Authorization", "Bearer token")
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status with credentials = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	g.metrics.RecordWebhook("slack", http.StatusOK)
	mux := g.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); !strings.Contains(body, "slackbridge_webhook_requests_total") {
		t.Errorf("metrics output missing webhook counter:\n%s", body)
	}
}
