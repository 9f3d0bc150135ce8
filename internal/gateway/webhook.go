package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"
)

// WebhookResponse lets a handler control the HTTP reply. Slack's URL
// verification handshake needs this: the challenge must echo back in the
// response body. A nil response means the default 200 {"ok":true}
// acknowledgement.
type WebhookResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// WebhookHandler processes one source's webhook payload. The body
// arrives exactly as read off the wire, before any parsing, because
// Slack's v0 signature covers the raw bytes and re-encoding would break
// verification.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, headers http.Header) (*WebhookResponse, error)
}

type webhookEntry struct {
	handler WebhookHandler
	secret  string
}

// WebhookDispatcher routes POST /webhook/{source} to the handler
// registered for that source. A source registered with a secret gets the
// generic X-Signature-256 HMAC check before its handler runs; Slack
// registers with an empty secret and verifies v0 signatures itself.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]webhookEntry
	logger   *slog.Logger
	metrics  *Metrics
}

// NewWebhookDispatcher creates a dispatcher with no sources registered.
func NewWebhookDispatcher(logger *slog.Logger, metrics *Metrics) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: make(map[string]webhookEntry),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds a handler for source with an optional HMAC secret.
// Re-registering a source replaces its handler, which is how a config
// reload swaps in a receiver with rotated credentials.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = webhookEntry{handler: h, secret: secret}
}

// Sources returns the registered source names in sorted order.
func (d *WebhookDispatcher) Sources() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Sorted(maps.Keys(d.handlers))
}

// ServeHTTP implements http.Handler for the /webhook/{source} route.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		d.record(source, http.StatusBadRequest)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	entry, registered := d.handlers[source]
	d.mu.RUnlock()

	if !registered {
		// Acknowledge rather than 404: a platform pointed at a source the
		// operator has not enabled yet should not enter a retry loop.
		d.logger.Warn("webhook received for unregistered source", "source", source)
		d.record(source, http.StatusOK)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true,"warning":"no handler registered"}`))
		return
	}

	if entry.secret != "" && !genericSignatureOK(body, r.Header.Get("X-Signature-256"), entry.secret) {
		if d.metrics != nil {
			d.metrics.RecordAuthFailure(source)
		}
		d.record(source, http.StatusUnauthorized)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	resp, err := entry.handler.HandleWebhook(r.Context(), source, body, r.Header)
	if err != nil {
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		d.record(source, http.StatusInternalServerError)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	d.reply(w, source, resp)
}

// reply writes the handler's response, filling in the acknowledgement
// defaults for anything the handler left unset.
func (d *WebhookDispatcher) reply(w http.ResponseWriter, source string, resp *WebhookResponse) {
	if resp == nil {
		d.record(source, http.StatusOK)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
		return
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	d.record(source, status)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

func (d *WebhookDispatcher) record(source string, status int) {
	if d.metrics != nil {
		d.metrics.RecordWebhook(source, status)
	}
}

// genericSignatureOK checks the sha256= HMAC header in constant time.
func genericSignatureOK(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
