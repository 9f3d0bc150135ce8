package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hexastack/slackbridge/pkg/message"
)

const maxResponseBytes = 1 << 20 // 1 MiB is plenty for reply lists.

// engineReply is one reply in the bot engine's response body.
type engineReply struct {
	Text     string `json:"text"`
	ThreadID string `json:"thread_id,omitempty"`
}

// engineResponse is the optional body the engine returns. An empty body
// or an empty replies list means the engine will answer asynchronously
// or not at all.
type engineResponse struct {
	Replies []engineReply `json:"replies,omitempty"`
}

// replySender delivers engine replies back to the originating channel.
// The outbound channel dispatcher satisfies it.
type replySender interface {
	Send(ctx context.Context, msg message.OutboundMessage) error
}

// Forwarder POSTs canonical events to a bot engine endpoint and
// dispatches any synchronous replies back through the channel layer.
type Forwarder struct {
	url        string
	token      string
	maxReplies int
	client     *http.Client
	logger     *slog.Logger

	// Set during Start, once the channel dispatcher service exists.
	sender replySender
}

// NewForwarder creates a forwarder for the given engine endpoint.
func NewForwarder(cfg Config, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		url:        cfg.URL,
		token:      cfg.Token,
		maxReplies: cfg.MaxReplies,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// SetSender wires the reply path. Without a sender, synchronous replies
// are logged and dropped.
func (f *Forwarder) SetSender(s replySender) {
	f.sender = s
}

// Push implements pipeline.Sink. A non-2xx engine status is an error so
// the channel can surface the failed delivery.
func (f *Forwarder) Push(ctx context.Context, ev message.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("pipeline.http: marshal event %s: %w", ev.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("pipeline.http: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("pipeline.http: deliver event %s: %w", ev.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("pipeline.http: read engine response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pipeline.http: engine returned status %d for event %s", resp.StatusCode, ev.ID)
	}

	f.logger.Debug("event delivered",
		"event", ev.ID,
		"status", resp.StatusCode,
		"took", time.Since(start),
	)

	return f.dispatchReplies(ctx, ev, body)
}

// dispatchReplies sends any synchronous replies from the engine back to
// the conversation the event came from. Reply failures are logged, not
// returned: the event itself was delivered.
func (f *Forwarder) dispatchReplies(ctx context.Context, ev message.Event, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var engineResp engineResponse
	if err := json.Unmarshal(body, &engineResp); err != nil {
		f.logger.Warn("unparseable engine response ignored", "event", ev.ID, "error", err)
		return nil
	}

	replies := engineResp.Replies
	if len(replies) > f.maxReplies {
		f.logger.Warn("engine reply list truncated",
			"event", ev.ID,
			"replies", len(replies),
			"max", f.maxReplies,
		)
		replies = replies[:f.maxReplies]
	}

	for _, reply := range replies {
		if reply.Text == "" {
			continue
		}
		out := message.ReplyTo(&ev, reply.Text)
		if reply.ThreadID != "" {
			out.ThreadID = reply.ThreadID
		}

		if f.sender == nil {
			f.logger.Warn("engine reply dropped, no channel dispatcher wired", "event", ev.ID)
			continue
		}
		if err := f.sender.Send(ctx, out); err != nil {
			f.logger.Error("engine reply delivery failed", "event", ev.ID, "error", err)
		}
	}
	return nil
}
