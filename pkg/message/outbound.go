package message

// OutboundMessage represents a reply to be delivered through a channel.
type OutboundMessage struct {
	// Channel is the module ID of the channel that must deliver the message.
	Channel string `json:"channel"`

	// ChatID is the conversation to deliver to.
	ChatID string `json:"chat_id"`

	ThreadID string `json:"thread_id,omitempty"`
	Text     string `json:"text"`

	// ResponseURL, when set, instructs the channel to edit or replace the
	// originating interactive message instead of posting a new one.
	ResponseURL string `json:"response_url,omitempty"`

	// ReplaceOriginal is honored only together with ResponseURL.
	ReplaceOriginal bool `json:"replace_original,omitempty"`
}

// NewTextMessage creates an outbound text message for the given chat.
func NewTextMessage(channel, chatID, text string) OutboundMessage {
	return OutboundMessage{Channel: channel, ChatID: chatID, Text: text}
}

// ReplyTo creates an outbound message addressed back to the conversation an
// inbound event came from, reusing its response URL when present.
func ReplyTo(ev *Event, text string) OutboundMessage {
	return OutboundMessage{
		Channel:     ev.Channel,
		ChatID:      ev.SenderID,
		ThreadID:    ev.ThreadID,
		Text:        text,
		ResponseURL: ev.ResponseURL,
	}
}
