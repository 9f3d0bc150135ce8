package slack

import (
	"context"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/pkg/message"
)

// sendOutbound chunks and delivers one outbound message. Replies to an
// interaction go through its response_url; everything else goes through
// chat.postMessage.
func (s *Slack) sendOutbound(ctx context.Context, msg message.OutboundMessage) error {
	chunks := channel.SplitMessage(msg, channel.ChunkConfig{
		MaxLength:      s.config.MaxMessageLength,
		PreserveBlocks: true,
	})

	for _, chunk := range chunks {
		var err error
		if chunk.ResponseURL != "" {
			err = s.client.Respond(ctx, chunk.ResponseURL, chunk.Text, chunk.ReplaceOriginal)
		} else {
			_, err = s.client.PostMessage(ctx, PostMessageRequest{
				Channel:  chunk.ChatID,
				Text:     chunk.Text,
				ThreadTS: chunk.ThreadID,
			})
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordOutbound(s.channelName(), "error")
			}
			return err
		}
	}

	if s.metrics != nil {
		s.metrics.RecordOutbound(s.channelName(), "ok")
	}
	return nil
}
