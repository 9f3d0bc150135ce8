// Package message defines the platform-agnostic data contract between
// channels and the bot pipeline: the canonical event produced by inbound
// normalization and the outbound message accepted by channels.
package message

// ChatType indicates the kind of conversation an event belongs to.
type ChatType string

const (
	// ChatDirect is a direct (one-to-one) conversation.
	ChatDirect ChatType = "direct"
	// ChatGroup is a multi-participant private conversation.
	ChatGroup ChatType = "group"
	// ChatPublic is a public conversation anyone in the workspace can join.
	ChatPublic ChatType = "public"
)

// IsDirect reports whether the chat is a one-to-one conversation.
func (c ChatType) IsDirect() bool {
	return c == ChatDirect
}

// EventKind classifies what an inbound event fundamentally is.
type EventKind string

const (
	// EventEcho is a copy of the bot's own outgoing message delivered back
	// to it by the platform.
	EventEcho EventKind = "echo"
	// EventMessage is a new user action: free text, an interactive
	// component action, or a mention.
	EventMessage EventKind = "message"
	// EventUnknown is anything the normalizer cannot map. Unknown events
	// are acknowledged but never forwarded to the bot pipeline.
	EventUnknown EventKind = "unknown"
)

// MessageKind refines an echo or message event into its semantic content
// kind. It is meaningless when EventKind is EventUnknown.
type MessageKind string

const (
	MessageText        MessageKind = "text"
	MessagePostback    MessageKind = "postback"
	MessageQuickReply  MessageKind = "quick_reply"
	MessageAttachments MessageKind = "attachments"
	MessageUnknown     MessageKind = "unknown"
)

// Sender identifies the author of an inbound event.
type Sender struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
