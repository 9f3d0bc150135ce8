package slack

import (
	"io"
	"log/slog"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/pkg/message"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingInbox collects events pushed to the pipeline.
type recordingInbox struct {
	events []message.Event
}

func (r *recordingInbox) push(ev message.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func newTestProcessor(inbox *recordingInbox) *processor {
	return &processor{
		normalizer:  NewNormalizer("channel.slack", defaultQuickReplyBlockID, false),
		allowList:   channel.NewAllowList(nil, nil),
		inbox:       inbox.push,
		logger:      discardLogger(),
		channelName: "channel.slack",
	}
}
