package slack

import (
	"errors"
	"testing"
	"time"

	"github.com/hexastack/slackbridge/pkg/message"
)

func newNorm() *Normalizer {
	return NewNormalizer("channel.slack", defaultQuickReplyBlockID, false)
}

func TestNormalizeTextMessage(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodyEventCallback, Callback: &EventCallback{
		EventID:   "Ev1",
		EventTime: 1700000000,
		Event: InnerEvent{
			Type:    "message",
			Text:    "  <@U12345678> hello there  ",
			User:    "U99",
			Channel: "C1",
		},
	}}

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if ev.Kind != message.EventMessage {
		t.Errorf("Kind = %v, want message", ev.Kind)
	}
	if ev.MessageKind != message.MessageText {
		t.Errorf("MessageKind = %v, want text", ev.MessageKind)
	}
	if ev.Text != "hello there" {
		t.Errorf("Text = %q, want mention stripped and trimmed", ev.Text)
	}
	if ev.ID != "Ev1" {
		t.Errorf("ID = %q, want platform event ID", ev.ID)
	}
	if ev.SenderID != "C1" {
		t.Errorf("SenderID = %q, want channel in public chat", ev.SenderID)
	}
	if !ev.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Timestamp = %v, want event_time", ev.Timestamp)
	}
}

func TestNormalizeDirectChatUsesUserID(t *testing.T) {
	n := newNorm()
	body := callbackBody(InnerEvent{Type: "message", Text: "hi", User: "U99", Channel: "D1", ChannelType: "im"})

	ev, err := n.Normalize(body, message.ChatDirect)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.SenderID != "U99" {
		t.Errorf("SenderID = %q, want user in direct chat", ev.SenderID)
	}
}

func TestNormalizeEchoPrecedence(t *testing.T) {
	// A bot-identity marker wins over every message-like field combination.
	n := newNorm()
	body := callbackBody(InnerEvent{
		Type:    "message",
		Text:    "echoed reply",
		BotID:   "B1",
		User:    "U99",
		Channel: "C1",
	})

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Kind != message.EventEcho {
		t.Errorf("Kind = %v, want echo", ev.Kind)
	}
	if ev.RecipientID != "U99" {
		t.Errorf("RecipientID = %q, want original user", ev.RecipientID)
	}
}

func TestNormalizeEchoRecipientFallsBackToChannel(t *testing.T) {
	n := newNorm()
	body := callbackBody(InnerEvent{Type: "message", Text: "echoed", BotID: "B1", Channel: "D1"})

	ev, err := n.Normalize(body, message.ChatDirect)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.RecipientID != "D1" {
		t.Errorf("RecipientID = %q, want channel fallback", ev.RecipientID)
	}
}

func TestNormalizePostback(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
		User:        ActionUser{ID: "U1", Username: "alice"},
		Channel:     &ActionChannel{ID: "C1"},
		Actions:     []Action{{Type: "button", Value: "order_pizza", ActionTS: "1700000000.000100"}},
		ResponseURL: "https://hooks.slack.example/respond/T1/1",
	}}

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.MessageKind != message.MessagePostback {
		t.Errorf("MessageKind = %v, want postback", ev.MessageKind)
	}
	if ev.Payload == nil || ev.Payload.Value != "order_pizza" {
		t.Errorf("Payload = %+v, want first action value", ev.Payload)
	}
	if ev.SenderID != "C1" {
		t.Errorf("SenderID = %q, interactions always use the channel", ev.SenderID)
	}
	if ev.ResponseURL == "" {
		t.Error("ResponseURL lost during normalization")
	}
	if ev.Sender.Username != "alice" {
		t.Errorf("Sender.Username = %q, want alice", ev.Sender.Username)
	}
}

func TestNormalizeQuickReplyBeatsPostback(t *testing.T) {
	// Both quick-reply and postback predicates hold; quick reply wins.
	n := newNorm()
	body := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
		User:    ActionUser{ID: "U1"},
		Channel: &ActionChannel{ID: "C1"},
		Message: &ActionMessage{Blocks: []MessageBlock{
			{Type: "section", BlockID: "intro"},
			{Type: "actions", BlockID: defaultQuickReplyBlockID},
		}},
		Actions: []Action{{Type: "button", Value: "yes"}},
	}}

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.MessageKind != message.MessageQuickReply {
		t.Errorf("MessageKind = %v, want quick_reply", ev.MessageKind)
	}
	if ev.Payload == nil || ev.Payload.Value != "yes" {
		t.Errorf("Payload = %+v, want selection value", ev.Payload)
	}
}

func TestNormalizeAttachments(t *testing.T) {
	n := newNorm()
	body := callbackBody(InnerEvent{
		Type:    "message",
		User:    "U1",
		Channel: "C1",
		Files: []File{
			{ID: "F1", Name: "photo.png", MIMEType: "image/png", URLPrivate: "https://files.slack.example/F1", Size: 1024},
			{ID: "F2", Name: "song.mp3", MIMEType: "audio/mpeg", URLPrivate: "https://files.slack.example/F2"},
		},
	})

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.MessageKind != message.MessageAttachments {
		t.Errorf("MessageKind = %v, want attachments", ev.MessageKind)
	}
	if len(ev.Attachments) != 2 {
		t.Fatalf("got %d attachments, want 2", len(ev.Attachments))
	}
	if ev.Attachments[0].Type != message.FileImage {
		t.Errorf("Type = %v, want image", ev.Attachments[0].Type)
	}
	if ev.Payload == nil || ev.Payload.Attachment == nil || ev.Payload.Attachment.Name != "photo.png" {
		t.Errorf("Payload = %+v, want first attachment", ev.Payload)
	}
	// Only the first file drives the default summary.
	if ev.Text != "[image] photo.png" {
		t.Errorf("Text = %q, want first-file summary", ev.Text)
	}
}

func TestNormalizeSummarizeAllFiles(t *testing.T) {
	n := NewNormalizer("channel.slack", defaultQuickReplyBlockID, true)
	body := callbackBody(InnerEvent{
		Type:    "message",
		User:    "U1",
		Channel: "C1",
		Files: []File{
			{ID: "F1", Name: "photo.png", MIMEType: "image/png"},
			{ID: "F2", Name: "song.mp3", MIMEType: "audio/mpeg"},
		},
	})

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Text != "[image] photo.png, [audio] song.mp3" {
		t.Errorf("Text = %q, want all files listed", ev.Text)
	}
}

func TestNormalizeMissingIdentity(t *testing.T) {
	n := newNorm()

	tests := []struct {
		name string
		body *RawBody
		chat message.ChatType
	}{
		{"message without channel", callbackBody(InnerEvent{Type: "message", Text: "hi"}), message.ChatPublic},
		{"direct message without user", callbackBody(InnerEvent{Type: "message", Text: "hi", Channel: "D1"}), message.ChatDirect},
		{"action without channel", &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
			Actions: []Action{{Value: "x"}},
		}}, message.ChatPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.body, tt.chat)
			var extractErr *ExtractionError
			if !errors.As(err, &extractErr) {
				t.Errorf("Normalize() = %v, want ExtractionError", err)
			}
		})
	}
}

func TestNormalizeUnknownBody(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodyUnknown, Raw: []byte(`{"something":"else"}`)}

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Kind != message.EventUnknown {
		t.Errorf("Kind = %v, want unknown", ev.Kind)
	}
	if ev.IsActionable() {
		t.Error("unknown event must not be actionable")
	}
	if ev.ID == "" {
		t.Error("unknown event still needs a generated ID")
	}
}

func TestNormalizeAppMention(t *testing.T) {
	n := newNorm()
	body := callbackBody(InnerEvent{
		Type:    "app_mention",
		Text:    "<@U0BOT> summarize this thread",
		User:    "U1",
		Channel: "C1",
		TS:      "1700000000.000100",
	})

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Kind != message.EventMessage {
		t.Errorf("Kind = %v, want message", ev.Kind)
	}
	if ev.Text != "summarize this thread" {
		t.Errorf("Text = %q, want mention stripped", ev.Text)
	}
}

func TestNormalizeSlashCommand(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodySlashCommand, Command: &SlashCommand{
		Command:     "/remind",
		Text:        "me tomorrow",
		UserID:      "U1",
		UserName:    "alice",
		ChannelID:   "C1",
		ResponseURL: "https://hooks.slack.example/commands/T1/1",
	}}

	ev, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.Kind != message.EventMessage || ev.MessageKind != message.MessageText {
		t.Errorf("kinds = %v/%v, want message/text", ev.Kind, ev.MessageKind)
	}
	if ev.Text != "/remind me tomorrow" {
		t.Errorf("Text = %q, want command and arguments joined", ev.Text)
	}
	if ev.SenderID != "C1" {
		t.Errorf("SenderID = %q, want channel in public chat", ev.SenderID)
	}
	if ev.ResponseURL == "" {
		t.Error("ResponseURL lost during normalization")
	}
	if ev.Sender.Username != "alice" {
		t.Errorf("Sender.Username = %q, want alice", ev.Sender.Username)
	}
}

func TestNormalizeSlashCommandDirectChat(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodySlashCommand, Command: &SlashCommand{
		Command:   "/help",
		UserID:    "U1",
		ChannelID: "D1",
	}}

	ev, err := n.Normalize(body, message.ChatDirect)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if ev.SenderID != "U1" {
		t.Errorf("SenderID = %q, want user in direct chat", ev.SenderID)
	}
	if ev.Text != "/help" {
		t.Errorf("Text = %q, want bare command", ev.Text)
	}
}

func TestNormalizeGeneratesUniqueIDs(t *testing.T) {
	n := newNorm()
	body := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
		User:    ActionUser{ID: "U1"},
		Channel: &ActionChannel{ID: "C1"},
		Actions: []Action{{Value: "x"}},
	}}

	first, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	second, err := n.Normalize(body, message.ChatPublic)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Error("generated IDs must be unique per event")
	}
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<@U12345678> hello", "hello"},
		{"hello <@U12345678>", "hello"},
		{"<@U123|alice> hi", "hi"},
		{"no mentions here", "no mentions here"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		if got := stripMentions(tt.in); got != tt.want {
			t.Errorf("stripMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
