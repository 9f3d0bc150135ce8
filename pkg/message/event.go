package message

import (
	"encoding/json"
	"time"
)

// Event is the canonical inbound event handed to the bot pipeline.
//
// An Event is built once per inbound call (or once per logical sub-event
// when a mixed text+files callback is split) and is immutable afterwards:
// every derived field is computed during construction, never lazily.
type Event struct {
	// ID is the platform-provided event identifier when one exists,
	// otherwise a generated unique id. Downstream deduplication keys on it.
	ID string `json:"id"`

	Kind        EventKind   `json:"kind"`
	MessageKind MessageKind `json:"message_kind,omitempty"`

	// Channel is the module ID of the channel that produced the event.
	Channel string `json:"channel"`

	// SenderID is the conversation identifier for group and public chats
	// and the user identifier for direct chats.
	SenderID string `json:"sender_id,omitempty"`

	// RecipientID is only meaningful for echo events: it identifies the
	// conversation with the human whose message the bot is echoing.
	RecipientID string `json:"recipient_id,omitempty"`

	Sender   Sender   `json:"sender,omitempty"`
	ChatType ChatType `json:"chat_type"`

	// Text is the free text content with mention markup stripped and
	// surrounding whitespace trimmed. Empty for non-text kinds.
	Text string `json:"text,omitempty"`

	// Payload carries the structured content of postback, quick-reply, and
	// attachment events. Nil for plain text and unknown kinds.
	Payload *Payload `json:"payload,omitempty"`

	// Attachments lists the event's files. URLs are transient platform
	// URLs until the prefetcher replaces them with durable references.
	Attachments []Attachment `json:"attachments,omitempty"`

	// ThreadID is the platform thread the event belongs to, when any.
	ThreadID string `json:"thread_id,omitempty"`

	// ResponseURL is present only for interactive-action events; it can be
	// used to edit or replace the originating message.
	ResponseURL string `json:"response_url,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Raw is the originating wire payload, kept for auditing.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Payload is the structured content of a non-text event.
type Payload struct {
	// Value is the literal value of the chosen interactive component,
	// set for postback and quick-reply events.
	Value string `json:"value,omitempty"`

	// Attachment references the first file of an attachments event.
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment is one normalized file reference.
type Attachment struct {
	Type FileType `json:"type"`
	// URL is the transient platform download URL, replaced by a durable
	// attach:// reference after prefetch.
	URL      string `json:"url,omitempty"`
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// IsEcho reports whether the event is an echo of the bot's own message.
func (e *Event) IsEcho() bool {
	return e.Kind == EventEcho
}

// HasAttachments reports whether the event carries files.
func (e *Event) HasAttachments() bool {
	return len(e.Attachments) > 0
}

// IsActionable reports whether the event should be forwarded to the bot
// pipeline. Unknown events are acknowledged but dropped.
func (e *Event) IsActionable() bool {
	return e.Kind == EventEcho || e.Kind == EventMessage
}
