package slack

import (
	"context"
	"log/slog"
	"time"

	"github.com/hexastack/slackbridge/internal/attachment"
	"github.com/hexastack/slackbridge/pkg/message"
)

// Prefetcher downloads the transient, token-walled file URLs of an
// attachments event and replaces them with durable store references
// before the event reaches the bot pipeline.
type Prefetcher struct {
	store   attachment.Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewPrefetcher creates a prefetcher backed by the given store.
func NewPrefetcher(store attachment.Store, timeout time.Duration, logger *slog.Logger) *Prefetcher {
	return &Prefetcher{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Prefetch resolves every transient attachment URL on the event. It is
// all-or-nothing: the first failing fetch aborts with an
// *AttachmentFetchError and leaves the event unmodified. The platform's
// webhook delivery window is short, so the whole pass runs under one
// bounded timeout and never retries.
func (p *Prefetcher) Prefetch(ctx context.Context, ev *message.Event) error {
	if len(ev.Attachments) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resolved := make([]message.Attachment, len(ev.Attachments))
	copy(resolved, ev.Attachments)

	for i, att := range resolved {
		if att.URL == "" || attachment.IsDurable(att.URL) {
			continue
		}

		ref, err := p.store.FetchAndStore(ctx, att.URL, att.Name)
		if err != nil {
			return &AttachmentFetchError{URL: att.URL, Err: err}
		}

		resolved[i].URL = ref.URI()
		if resolved[i].Size == 0 {
			resolved[i].Size = ref.Size
		}
		p.logger.Debug("attachment prefetched",
			"event", ev.ID,
			"name", att.Name,
			"ref", ref.URI(),
		)
	}

	ev.Attachments = resolved
	if ev.Payload != nil && ev.Payload.Attachment != nil {
		ev.Payload.Attachment = &resolved[0]
	}

	return nil
}
