package slack

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	socketReconnectMin = time.Second
	socketReconnectMax = 30 * time.Second
)

// socketEnvelope is the framing Slack uses on a Socket Mode connection.
type socketEnvelope struct {
	EnvelopeID string          `json:"envelope_id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// socketAck acknowledges receipt of an envelope.
type socketAck struct {
	EnvelopeID string `json:"envelope_id"`
}

// SocketClient maintains a Socket Mode connection: it opens a WebSocket
// URL via apps.connections.open, reads envelopes, acknowledges each one,
// and feeds the payloads through the shared processor. Signature
// verification does not apply here; the connection itself is
// authenticated by the app token.
type SocketClient struct {
	client    *Client
	processor *processor
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSocketClient creates a Socket Mode client.
func NewSocketClient(client *Client, proc *processor, logger *slog.Logger) *SocketClient {
	return &SocketClient{
		client:    client,
		processor: proc,
		logger:    logger,
	}
}

// Start launches the connection loop. Reconnects use exponential backoff
// capped at 30s; Slack-initiated disconnects reconnect immediately with a
// fresh URL.
func (s *SocketClient) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop terminates the connection loop and waits for it to exit.
func (s *SocketClient) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SocketClient) run(ctx context.Context) {
	backoff := socketReconnectMin

	for {
		if ctx.Err() != nil {
			return
		}

		err := s.connectAndServe(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			s.logger.Warn("socket mode connection lost", "error", err, "retry_in", backoff)
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			backoff = min(backoff*2, socketReconnectMax)
			continue
		}

		// Clean disconnect (e.g. Slack asked for a refresh): reconnect
		// immediately with a fresh URL.
		backoff = socketReconnectMin
	}
}

// connectAndServe opens one WebSocket connection and serves envelopes
// until it closes. A nil return means Slack requested a reconnect.
func (s *SocketClient) connectAndServe(ctx context.Context) error {
	open, err := s.client.ConnectionsOpen(ctx)
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, open.URL, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "shutting down")
	}()

	// Envelopes can carry full event payloads with files.
	conn.SetReadLimit(maxResponseBytes)

	s.logger.Info("socket mode connected")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var env socketEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("malformed socket envelope", "error", err)
			continue
		}

		switch env.Type {
		case "hello":
			continue

		case "disconnect":
			s.logger.Info("socket mode disconnect requested", "reason", env.Reason)
			return nil

		case "events_api", "interactive", "slash_commands":
			// Ack before processing: Slack redelivers unacked envelopes
			// and processing may outlive the delivery window.
			if env.EnvelopeID != "" {
				ack, _ := json.Marshal(socketAck{EnvelopeID: env.EnvelopeID})
				if err := conn.Write(ctx, websocket.MessageText, ack); err != nil {
					return err
				}
			}
			s.handlePayload(ctx, env)

		default:
			s.logger.Debug("unhandled socket envelope", "type", env.Type)
		}
	}
}

func (s *SocketClient) handlePayload(ctx context.Context, env socketEnvelope) {
	classified, err := classifyJSON(env.Payload)
	if err != nil {
		var classErr *ClassificationError
		if errors.As(err, &classErr) {
			s.logger.Debug("unclassifiable socket payload", "reason", classErr.Reason)
			return
		}
		s.logger.Warn("socket payload classification failed", "error", err)
		return
	}

	if err := s.processor.process(ctx, classified); err != nil {
		s.logger.Error("socket event processing failed", "error", err)
	}
}
