// Package pipeline defines the sink side of the bridge: channels push
// canonical events into a Sink, and the sink hands them to whatever bot
// engine is configured. The concrete HTTP forwarder lives in
// modules/pipeline/http.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/hexastack/slackbridge/pkg/message"
)

// Sink receives canonical events from channels.
type Sink interface {
	Push(ctx context.Context, ev message.Event) error
}

// LogSink logs every event instead of forwarding it. It is the fallback
// when no pipeline module is configured, so a channel-only deployment
// still starts and the events stay observable.
type LogSink struct {
	Logger *slog.Logger
}

// Push implements Sink.
func (s *LogSink) Push(_ context.Context, ev message.Event) error {
	s.Logger.Info("event received (no pipeline configured)",
		"id", ev.ID,
		"channel", ev.Channel,
		"kind", string(ev.Kind),
		"message_kind", string(ev.MessageKind),
		"sender", ev.SenderID,
	)
	return nil
}
