package slack

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hexastack/slackbridge/internal/gateway"
)

// WebhookReceiver processes inbound Slack webhook calls. It implements
// gateway.WebhookHandler and owns the full inbound contract: signature
// verification, the URL-verification handshake, classification, and
// dispatch through the shared processor.
//
// Response rules: 401 only for authentication failure, the verbatim
// challenge for url_verification, and 200 for everything else including
// ignored and unknown bodies, so the platform never retries them.
type WebhookReceiver struct {
	auth      *Authenticator
	processor *processor
	metrics   *gateway.Metrics
	logger    *slog.Logger
}

// NewWebhookReceiver creates a receiver wired to the shared processor.
func NewWebhookReceiver(auth *Authenticator, proc *processor, metrics *gateway.Metrics, logger *slog.Logger) *WebhookReceiver {
	return &WebhookReceiver{
		auth:      auth,
		processor: proc,
		metrics:   metrics,
		logger:    logger,
	}
}

// Compile-time interface guard.
var _ gateway.WebhookHandler = (*WebhookReceiver)(nil)

// HandleWebhook implements gateway.WebhookHandler. The body is the raw
// request bytes; verification runs over them before any parsing.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, _ string, body []byte, headers http.Header) (*gateway.WebhookResponse, error) {
	if err := w.auth.Authenticate(body, headers); err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			w.logger.Warn("webhook authentication failed", "reason", authErr.Reason)
			if w.metrics != nil {
				w.metrics.RecordAuthFailure(w.processor.channelName)
			}
			return &gateway.WebhookResponse{
				Status:      http.StatusUnauthorized,
				ContentType: "text/plain; charset=utf-8",
				Body:        []byte("invalid request signature"),
			}, nil
		}
		return nil, err
	}

	classified, err := classify(body, headers.Get("Content-Type"))
	if err != nil {
		// Unclassifiable bodies are acknowledged so Slack stops retrying.
		w.logger.Debug("unclassifiable webhook body", "error", err)
		return nil, nil
	}

	if classified.Kind == BodyURLVerification {
		return &gateway.WebhookResponse{
			Status:      http.StatusOK,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(classified.Verification.Challenge),
		}, nil
	}

	if err := w.processor.process(ctx, classified); err != nil {
		return nil, err
	}

	if classified.Kind == BodySlashCommand {
		// An empty 200 body makes Slack render nothing in the channel;
		// the reply arrives later through the command's response_url.
		return &gateway.WebhookResponse{Status: http.StatusOK}, nil
	}

	return nil, nil
}
