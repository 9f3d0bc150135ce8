package slack

import (
	"encoding/json"
	"net/url"
	"strings"
)

// BodyKind tags which of the mutually exclusive wire shapes a payload is.
type BodyKind int

const (
	BodyUnknown BodyKind = iota
	BodyURLVerification
	BodyEventCallback
	BodyBlockAction
	BodySlashCommand
)

func (k BodyKind) String() string {
	switch k {
	case BodyURLVerification:
		return "url_verification"
	case BodyEventCallback:
		return "event_callback"
	case BodyBlockAction:
		return "block_action"
	case BodySlashCommand:
		return "slash_command"
	default:
		return "unknown"
	}
}

// RawBody is the classified form of one inbound payload. Exactly one of
// the shape pointers is set, matching Kind.
type RawBody struct {
	Kind         BodyKind
	Verification *URLVerification
	Callback     *EventCallback
	Action       *BlockActionPayload
	Command      *SlashCommand

	// Raw is the payload as received, after form unwrapping.
	Raw json.RawMessage
}

const urlVerificationType = "url_verification"

// urlButtonValue marks a link-styled button whose press is a UI artifact,
// not user intent. Such actions are acknowledged and discarded.
const urlButtonValue = "url"

// classify tags a raw payload with its body kind. Form-encoded bodies are
// unwrapped first: interactive payloads arrive as a JSON string in the
// "payload" form field, slash commands as plain form fields.
//
// The JSON decision order is first-match-wins and must not be reordered:
// several shapes satisfy more than one naive predicate at once.
func classify(raw []byte, contentType string) (*RawBody, error) {
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		return classifyForm(raw)
	}
	return classifyJSON(raw)
}

func classifyForm(raw []byte) (*RawBody, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "invalid form body: " + err.Error()}
	}

	if payload := values.Get("payload"); payload != "" {
		return classifyJSON([]byte(payload))
	}

	if cmd := values.Get("command"); cmd != "" {
		command := &SlashCommand{
			Command:     cmd,
			Text:        values.Get("text"),
			UserID:      values.Get("user_id"),
			UserName:    values.Get("user_name"),
			ChannelID:   values.Get("channel_id"),
			ChannelName: values.Get("channel_name"),
			TeamID:      values.Get("team_id"),
			ResponseURL: values.Get("response_url"),
			TriggerID:   values.Get("trigger_id"),
		}
		return &RawBody{Kind: BodySlashCommand, Command: command, Raw: raw}, nil
	}

	return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "form body matches no known shape"}
}

func classifyJSON(raw []byte) (*RawBody, error) {
	var probe struct {
		Type    string          `json:"type"`
		Payload string          `json:"payload"`
		Event   json.RawMessage `json:"event"`
		Actions json.RawMessage `json:"actions"`
		Command string          `json:"command"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "invalid JSON: " + err.Error()}
	}

	switch {
	case probe.Type == urlVerificationType:
		var v URLVerification
		if err := json.Unmarshal(raw, &v); err != nil {
			return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "malformed url_verification: " + err.Error()}
		}
		return &RawBody{Kind: BodyURLVerification, Verification: &v, Raw: raw}, nil

	case probe.Payload != "":
		// Legacy wrapped variant: a JSON string carrying the real payload.
		return classifyJSON([]byte(probe.Payload))

	case len(probe.Event) > 0 && string(probe.Event) != "null":
		var cb EventCallback
		if err := json.Unmarshal(raw, &cb); err != nil {
			return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "malformed event_callback: " + err.Error()}
		}
		return &RawBody{Kind: BodyEventCallback, Callback: &cb, Raw: raw}, nil

	case len(probe.Actions) > 0 && string(probe.Actions) != "null":
		var action BlockActionPayload
		if err := json.Unmarshal(raw, &action); err != nil {
			return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "malformed block action: " + err.Error()}
		}
		return &RawBody{Kind: BodyBlockAction, Action: &action, Raw: raw}, nil

	case probe.Command != "":
		var cmd SlashCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return &RawBody{Kind: BodyUnknown, Raw: raw}, &ClassificationError{Reason: "malformed slash command: " + err.Error()}
		}
		return &RawBody{Kind: BodySlashCommand, Command: &cmd, Raw: raw}, nil
	}

	return &RawBody{Kind: BodyUnknown, Raw: raw}, nil
}

// isIgnoredAction reports whether a classified body is a link-button
// artifact that must be acknowledged but never dispatched.
func isIgnoredAction(body *RawBody) bool {
	return body.Kind == BodyBlockAction &&
		body.Action != nil &&
		len(body.Action.Actions) > 0 &&
		body.Action.Actions[0].Value == urlButtonValue
}

// splitMixed splits an event callback that carries both free text and
// files into two independent callbacks, one per content side. Message
// kind resolution is single-kind per event; without the split one side
// would be silently dropped.
func splitMixed(body *RawBody) []*RawBody {
	if body.Kind != BodyEventCallback {
		return []*RawBody{body}
	}

	inner := body.Callback.Event
	if inner.Text == "" || len(inner.Files) == 0 {
		return []*RawBody{body}
	}

	textCB := *body.Callback
	textCB.Event.Files = nil

	filesCB := *body.Callback
	filesCB.Event.Text = ""
	filesCB.Event.Blocks = nil
	filesCB.Event.Attachments = nil
	if filesCB.EventID != "" {
		// Keep the halves distinct for downstream dedup.
		filesCB.EventID += "/files"
	}

	return []*RawBody{
		{Kind: BodyEventCallback, Callback: &textCB, Raw: body.Raw},
		{Kind: BodyEventCallback, Callback: &filesCB, Raw: body.Raw},
	}
}
