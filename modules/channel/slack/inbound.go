package slack

import (
	"context"
	"log/slog"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/internal/gateway"
	"github.com/hexastack/slackbridge/pkg/message"
)

// processor runs a classified body through the shared inbound pipeline:
// ignore rules, mixed-content splitting, channel-type resolution,
// normalization, allow-list filtering, attachment prefetch, and finally
// dispatch to the inbox. Both the webhook receiver and the Socket Mode
// client feed it.
type processor struct {
	normalizer  *Normalizer
	prefetcher  *Prefetcher
	allowList   *channel.AllowList
	inbox       func(message.Event) error
	metrics     *gateway.Metrics
	logger      *slog.Logger
	channelName string
}

// process dispatches every actionable event a body yields. Bodies and
// events that are ignored or malformed are logged and dropped without an
// error, so the webhook caller still acknowledges them.
func (p *processor) process(ctx context.Context, body *RawBody) error {
	if isIgnoredAction(body) {
		p.drop("url_button", "link-button artifact ignored", nil)
		return nil
	}

	for _, part := range splitMixed(body) {
		chatType := resolveChatType(part)

		ev, err := p.normalizer.Normalize(part, chatType)
		if err != nil {
			// A contract violation against the wire shape. Drop the
			// event, never forward a half-extracted identity.
			p.drop("extraction_error", "event dropped", err)
			continue
		}

		if !ev.IsActionable() {
			p.drop("unknown_kind", "unknown event acknowledged", nil)
			continue
		}

		if !p.allowList.IsAllowed(*ev) {
			p.drop("denied", "event denied by allow list", nil)
			continue
		}

		if ev.MessageKind == message.MessageAttachments && p.prefetcher != nil {
			if err := p.prefetcher.Prefetch(ctx, ev); err != nil {
				p.drop("attachment_fetch", "attachment prefetch failed, event dropped", err)
				continue
			}
		}

		if p.metrics != nil {
			p.metrics.RecordEvent(p.channelName, string(ev.MessageKind))
		}

		if err := p.inbox(*ev); err != nil {
			return err
		}
	}

	return nil
}

func (p *processor) drop(reason, msg string, err error) {
	if p.metrics != nil {
		p.metrics.RecordDrop(p.channelName, reason)
	}
	if err != nil {
		p.logger.Warn(msg, "reason", reason, "error", err)
		return
	}
	p.logger.Debug(msg, "reason", reason)
}
