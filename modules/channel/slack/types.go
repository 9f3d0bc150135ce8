package slack

import "encoding/json"

// Wire types for the payload shapes Slack delivers. The union is
// disambiguated by classify(); see classify.go for the decision order.

// URLVerification is the one-time handshake Slack sends when an Events
// API endpoint is registered. The challenge must be echoed back verbatim.
type URLVerification struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
}

// EventCallback wraps an Events API delivery.
type EventCallback struct {
	Type      string     `json:"type"`
	TeamID    string     `json:"team_id"`
	APIAppID  string     `json:"api_app_id"`
	Event     InnerEvent `json:"event"`
	EventID   string     `json:"event_id"`
	EventTime int64      `json:"event_time"`
}

// InnerEvent is the event inside an EventCallback: a message or an
// app_mention. The two shapes overlap heavily, so one struct covers both.
type InnerEvent struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype,omitempty"`
	Text        string `json:"text,omitempty"`
	User        string `json:"user,omitempty"`
	BotID       string `json:"bot_id,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelType string `json:"channel_type,omitempty"`
	TS          string `json:"ts,omitempty"`
	ThreadTS    string `json:"thread_ts,omitempty"`
	EventTS     string `json:"event_ts,omitempty"`
	Files       []File `json:"files,omitempty"`

	// Blocks and Attachments are only checked for presence during message
	// kind resolution; their content is never interpreted here.
	Blocks      []json.RawMessage `json:"blocks,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
}

// File describes one uploaded file on a message event. URLPrivate is a
// transient, token-walled download URL; the prefetcher replaces it with a
// durable reference before the event reaches the pipeline.
type File struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	MIMEType   string `json:"mimetype,omitempty"`
	FileType   string `json:"filetype,omitempty"`
	Size       int64  `json:"size,omitempty"`
	URLPrivate string `json:"url_private,omitempty"`
}

// BlockActionPayload is an interactive-component delivery: a user pressed
// a button or made a selection on a message the bot sent.
type BlockActionPayload struct {
	Type        string         `json:"type"`
	TeamID      string         `json:"team_id,omitempty"`
	User        ActionUser     `json:"user"`
	Channel     *ActionChannel `json:"channel,omitempty"`
	Container   Container      `json:"container,omitempty"`
	Message     *ActionMessage `json:"message,omitempty"`
	Actions     []Action       `json:"actions"`
	ResponseURL string         `json:"response_url,omitempty"`
	TriggerID   string         `json:"trigger_id,omitempty"`
}

// ActionUser identifies the user who triggered the interaction.
type ActionUser struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// ActionChannel identifies the conversation the interactive component
// lives in.
type ActionChannel struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Container locates the source message of an interaction.
type Container struct {
	Type      string `json:"type,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
	MessageTS string `json:"message_ts,omitempty"`
	ThreadTS  string `json:"thread_ts,omitempty"`
}

// ActionMessage is the original outgoing message the interaction refers
// to. Its blocks carry the quick-reply marker when the prompt was one.
type ActionMessage struct {
	TS     string         `json:"ts,omitempty"`
	BotID  string         `json:"bot_id,omitempty"`
	Text   string         `json:"text,omitempty"`
	Blocks []MessageBlock `json:"blocks,omitempty"`
}

// MessageBlock is the minimal view of a layout block needed for
// quick-reply detection.
type MessageBlock struct {
	Type    string `json:"type"`
	BlockID string `json:"block_id,omitempty"`
}

// Action is one element of a block_actions payload.
type Action struct {
	Type     string `json:"type"`
	ActionID string `json:"action_id,omitempty"`
	BlockID  string `json:"block_id,omitempty"`
	Value    string `json:"value,omitempty"`
	ActionTS string `json:"action_ts,omitempty"`
}

// SlashCommand is a slash-command invocation, delivered form-encoded.
type SlashCommand struct {
	Command     string `json:"command"`
	Text        string `json:"text,omitempty"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	TeamID      string `json:"team_id,omitempty"`
	ResponseURL string `json:"response_url,omitempty"`
	TriggerID   string `json:"trigger_id,omitempty"`
}
