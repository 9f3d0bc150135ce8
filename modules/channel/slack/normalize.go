package slack

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hexastack/slackbridge/pkg/message"
)

// mentionPattern matches <@U12345> and <@U12345|label> mention markup.
var mentionPattern = regexp.MustCompile(`<@\w+(?:\|[^>]*)?>`)

// Normalizer converts classified bodies into canonical events.
//
// Normalization is two-phase: kinds and identities are resolved first,
// then an immutable Event is built. Nothing is computed lazily, so the
// same body always yields the same event fields.
type Normalizer struct {
	channelName       string
	quickReplyBlockID string
	summarizeAllFiles bool
}

// NewNormalizer creates a normalizer producing events attributed to the
// given channel name.
func NewNormalizer(channelName, quickReplyBlockID string, summarizeAllFiles bool) *Normalizer {
	return &Normalizer{
		channelName:       channelName,
		quickReplyBlockID: quickReplyBlockID,
		summarizeAllFiles: summarizeAllFiles,
	}
}

// Normalize builds the canonical event for a classified body. Unknown
// bodies yield an event with Kind EventUnknown and no error; the caller
// acknowledges and drops those. An ExtractionError means a field the
// resolved kind requires is structurally absent.
func (n *Normalizer) Normalize(body *RawBody, chatType message.ChatType) (*message.Event, error) {
	kind := n.eventKind(body)

	ev := &message.Event{
		ID:        n.eventID(body),
		Kind:      kind,
		Channel:   n.channelName,
		ChatType:  chatType,
		Timestamp: n.timestamp(body),
		Raw:       body.Raw,
	}

	if kind == message.EventUnknown {
		return ev, nil
	}

	ev.MessageKind = n.messageKind(body)

	senderID, err := n.senderID(body, chatType, kind == message.EventEcho)
	if err != nil {
		return nil, err
	}
	ev.SenderID = senderID
	ev.Sender = senderIdentity(body)

	if kind == message.EventEcho {
		recipient, err := echoRecipientID(body)
		if err != nil {
			return nil, err
		}
		ev.RecipientID = recipient
	}

	n.extractContent(body, ev)

	return ev, nil
}

// eventKind resolves what the event fundamentally is. First match wins:
// a bot-identity marker always means echo, regardless of any other field
// combination.
func (n *Normalizer) eventKind(body *RawBody) message.EventKind {
	switch {
	case body.Kind == BodyEventCallback && body.Callback.Event.BotID != "":
		return message.EventEcho
	case body.Kind == BodyBlockAction:
		return message.EventMessage
	case body.Kind == BodyEventCallback && isMessageLike(body.Callback.Event.Type):
		return message.EventMessage
	case body.Kind == BodySlashCommand:
		return message.EventMessage
	}
	return message.EventUnknown
}

func isMessageLike(innerType string) bool {
	return innerType == "message" || innerType == "app_mention"
}

// messageKind refines the semantic content kind. First match wins:
// quick replies outrank generic postbacks even when both conditions hold.
func (n *Normalizer) messageKind(body *RawBody) message.MessageKind {
	switch {
	case n.isQuickReply(body):
		return message.MessageQuickReply
	case body.Kind == BodyBlockAction && len(body.Action.Actions) > 0:
		return message.MessagePostback
	case body.Kind == BodyEventCallback && len(body.Callback.Event.Files) > 0:
		return message.MessageAttachments
	case body.Kind == BodyEventCallback && hasTextContent(body.Callback.Event):
		return message.MessageText
	case body.Kind == BodySlashCommand:
		return message.MessageText
	}
	return message.MessageUnknown
}

// isQuickReply checks the quick-reply marker on the original outgoing
// message carried inside the interaction payload, not on the inbound
// action itself.
func (n *Normalizer) isQuickReply(body *RawBody) bool {
	if body.Kind != BodyBlockAction || len(body.Action.Actions) == 0 {
		return false
	}
	if body.Action.Message == nil {
		return false
	}
	for _, block := range body.Action.Message.Blocks {
		if block.BlockID == n.quickReplyBlockID {
			return true
		}
	}
	return false
}

func hasTextContent(inner InnerEvent) bool {
	return inner.Text != "" || len(inner.Blocks) > 0 || len(inner.Attachments) > 0
}

// senderID resolves the conversation identifier for group contexts and
// the user identifier for direct contexts. Interactions always use the
// channel the component lives on. Echo events may lack a user field and
// fall back to the conversation.
func (n *Normalizer) senderID(body *RawBody, chatType message.ChatType, echo bool) (string, error) {
	switch body.Kind {
	case BodyBlockAction:
		if id := actionChannelID(body.Action); id != "" {
			return id, nil
		}
		return "", &ExtractionError{Kind: "block_action", Field: "channel.id"}

	case BodyEventCallback:
		inner := body.Callback.Event
		if chatType.IsDirect() {
			if inner.User != "" {
				return inner.User, nil
			}
			if echo && inner.Channel != "" {
				return inner.Channel, nil
			}
			return "", &ExtractionError{Kind: "event_callback", Field: "event.user"}
		}
		if inner.Channel != "" {
			return inner.Channel, nil
		}
		return "", &ExtractionError{Kind: "event_callback", Field: "event.channel"}

	case BodySlashCommand:
		if chatType.IsDirect() && body.Command.UserID != "" {
			return body.Command.UserID, nil
		}
		if body.Command.ChannelID != "" {
			return body.Command.ChannelID, nil
		}
		return "", &ExtractionError{Kind: "slash_command", Field: "channel_id"}
	}

	return "", &ExtractionError{Kind: body.Kind.String(), Field: "sender"}
}

// echoRecipientID identifies the conversation with the human whose
// message the bot is echoing.
func echoRecipientID(body *RawBody) (string, error) {
	inner := body.Callback.Event
	if inner.User != "" {
		return inner.User, nil
	}
	if inner.Channel != "" {
		return inner.Channel, nil
	}
	return "", &ExtractionError{Kind: "echo", Field: "event.user"}
}

func senderIdentity(body *RawBody) message.Sender {
	switch body.Kind {
	case BodyBlockAction:
		return message.Sender{
			ID:       body.Action.User.ID,
			Username: body.Action.User.Username,
		}
	case BodyEventCallback:
		return message.Sender{ID: body.Callback.Event.User}
	case BodySlashCommand:
		return message.Sender{
			ID:       body.Command.UserID,
			Username: body.Command.UserName,
		}
	}
	return message.Sender{}
}

// extractContent fills text, payload, attachments, thread, and response
// URL according to the resolved message kind.
func (n *Normalizer) extractContent(body *RawBody, ev *message.Event) {
	switch body.Kind {
	case BodyBlockAction:
		ev.ResponseURL = body.Action.ResponseURL
		ev.ThreadID = body.Action.Container.ThreadTS
		if len(body.Action.Actions) > 0 {
			ev.Payload = &message.Payload{Value: body.Action.Actions[0].Value}
		}

	case BodyEventCallback:
		inner := body.Callback.Event
		ev.ThreadID = inner.ThreadTS

		switch ev.MessageKind {
		case message.MessageAttachments:
			ev.Attachments = normalizeFiles(inner.Files)
			ev.Payload = &message.Payload{Attachment: &ev.Attachments[0]}
			ev.Text = n.fileSummary(ev.Attachments)
		case message.MessageText:
			ev.Text = stripMentions(inner.Text)
		}

	case BodySlashCommand:
		ev.ResponseURL = body.Command.ResponseURL
		ev.Text = strings.TrimSpace(body.Command.Command + " " + body.Command.Text)
	}
}

// normalizeFiles maps wire files to normalized attachments, resolving the
// semantic file type from the MIME type with a file-name fallback.
func normalizeFiles(files []File) []message.Attachment {
	atts := make([]message.Attachment, 0, len(files))
	for _, f := range files {
		atts = append(atts, message.Attachment{
			Type:     message.FileTypeFor(f.MIMEType, f.Name),
			URL:      f.URLPrivate,
			Name:     f.Name,
			MIMEType: f.MIMEType,
			Size:     f.Size,
		})
	}
	return atts
}

// fileSummary builds the text stand-in for an attachments event. By
// default only the first file drives the summary; summarize_all_files
// lists every file.
func (n *Normalizer) fileSummary(atts []message.Attachment) string {
	if len(atts) == 0 {
		return ""
	}
	if !n.summarizeAllFiles {
		return fileLabel(atts[0])
	}
	labels := make([]string, 0, len(atts))
	for _, a := range atts {
		labels = append(labels, fileLabel(a))
	}
	return strings.Join(labels, ", ")
}

func fileLabel(a message.Attachment) string {
	if a.Name == "" {
		return fmt.Sprintf("[%s]", a.Type)
	}
	return fmt.Sprintf("[%s] %s", a.Type, a.Name)
}

// stripMentions removes user-mention markup and trims surrounding
// whitespace. This is the only transformation applied to free text.
func stripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// eventID uses the platform event ID when one exists and generates a
// unique one otherwise, so downstream dedup always has a key.
func (n *Normalizer) eventID(body *RawBody) string {
	if body.Kind == BodyEventCallback && body.Callback.EventID != "" {
		return body.Callback.EventID
	}
	return generateEventID()
}

func generateEventID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}

func (n *Normalizer) timestamp(body *RawBody) time.Time {
	switch body.Kind {
	case BodyEventCallback:
		if body.Callback.EventTime > 0 {
			return time.Unix(body.Callback.EventTime, 0)
		}
		if t, ok := parseSlackTS(body.Callback.Event.TS); ok {
			return t
		}
	case BodyBlockAction:
		if len(body.Action.Actions) > 0 {
			if t, ok := parseSlackTS(body.Action.Actions[0].ActionTS); ok {
				return t
			}
		}
	}
	return time.Now()
}

// parseSlackTS parses the "1700000000.000100" timestamp format.
func parseSlackTS(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	secs, _, _ := strings.Cut(ts, ".")
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(n, 0), true
}
