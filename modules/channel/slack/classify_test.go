package slack

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
)

const jsonContentType = "application/json"
const formContentType = "application/x-www-form-urlencoded"

func TestClassifyURLVerification(t *testing.T) {
	body := []byte(`{"type":"url_verification","token":"tok","challenge":"abc123"}`)
	got, err := classify(body, jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyURLVerification {
		t.Fatalf("Kind = %v, want url_verification", got.Kind)
	}
	if got.Verification.Challenge != "abc123" {
		t.Errorf("Challenge = %q, want %q", got.Verification.Challenge, "abc123")
	}
}

func TestClassifyEventCallback(t *testing.T) {
	body := []byte(`{
		"type": "event_callback",
		"team_id": "T1",
		"event": {"type":"message","text":"hi","user":"U1","channel":"C1","channel_type":"channel","ts":"1700000000.000100"},
		"event_id": "Ev123",
		"event_time": 1700000000
	}`)
	got, err := classify(body, jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyEventCallback {
		t.Fatalf("Kind = %v, want event_callback", got.Kind)
	}
	if got.Callback.Event.Text != "hi" {
		t.Errorf("Event.Text = %q, want %q", got.Callback.Event.Text, "hi")
	}
	if got.Callback.EventID != "Ev123" {
		t.Errorf("EventID = %q, want %q", got.Callback.EventID, "Ev123")
	}
}

func TestClassifyBlockActionTopLevel(t *testing.T) {
	body := []byte(`{
		"type": "block_actions",
		"user": {"id":"U1","username":"alice"},
		"channel": {"id":"C1"},
		"actions": [{"type":"button","value":"order_pizza","action_ts":"1700000000.000100"}],
		"response_url": "https://hooks.slack.example/respond/T1/1"
	}`)
	got, err := classify(body, jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyBlockAction {
		t.Fatalf("Kind = %v, want block_action", got.Kind)
	}
	if got.Action.Actions[0].Value != "order_pizza" {
		t.Errorf("Value = %q, want %q", got.Action.Actions[0].Value, "order_pizza")
	}
}

func TestClassifyWrappedPayloadForm(t *testing.T) {
	inner := `{"type":"block_actions","user":{"id":"U1"},"channel":{"id":"C1"},"actions":[{"type":"button","value":"go"}]}`
	body := []byte("payload=" + url.QueryEscape(inner))

	got, err := classify(body, formContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyBlockAction {
		t.Fatalf("Kind = %v, want block_action from wrapped payload", got.Kind)
	}
	if got.Action.Actions[0].Value != "go" {
		t.Errorf("Value = %q, want %q", got.Action.Actions[0].Value, "go")
	}
}

func TestClassifyWrappedPayloadJSONField(t *testing.T) {
	inner := `{"type":"block_actions","user":{"id":"U1"},"actions":[{"type":"button","value":"go"}]}`
	wrapper, _ := json.Marshal(map[string]string{"payload": inner})

	got, err := classify(wrapper, jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyBlockAction {
		t.Errorf("Kind = %v, want block_action from payload field", got.Kind)
	}
}

func TestClassifySlashCommandForm(t *testing.T) {
	body := []byte("command=%2Fhelp&text=me&user_id=U1&channel_id=C1&team_id=T1")
	got, err := classify(body, formContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodySlashCommand {
		t.Fatalf("Kind = %v, want slash_command", got.Kind)
	}
	if got.Command.Command != "/help" {
		t.Errorf("Command = %q, want %q", got.Command.Command, "/help")
	}
	if got.Command.Text != "me" {
		t.Errorf("Text = %q, want %q", got.Command.Text, "me")
	}
}

func TestClassifyUnknown(t *testing.T) {
	got, err := classify([]byte(`{"something":"else"}`), jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyUnknown {
		t.Errorf("Kind = %v, want unknown", got.Kind)
	}
}

func TestClassifyInvalidJSON(t *testing.T) {
	got, err := classify([]byte(`{not json`), jsonContentType)
	var classErr *ClassificationError
	if !errors.As(err, &classErr) {
		t.Fatalf("classify() = %v, want ClassificationError", err)
	}
	if got.Kind != BodyUnknown {
		t.Errorf("Kind = %v, want unknown on invalid JSON", got.Kind)
	}
}

func TestClassifyVerificationBeatsEvent(t *testing.T) {
	// A body satisfying both the url_verification and event predicates
	// must classify by the first matching clause.
	body := []byte(`{"type":"url_verification","challenge":"x","event":{"type":"message"}}`)
	got, err := classify(body, jsonContentType)
	if err != nil {
		t.Fatalf("classify() error: %v", err)
	}
	if got.Kind != BodyURLVerification {
		t.Errorf("Kind = %v, want url_verification to win", got.Kind)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	body := []byte(`{"type":"event_callback","event":{"type":"message","text":"hi","channel":"C1"},"event_id":"Ev1"}`)
	first, err1 := classify(body, jsonContentType)
	second, err2 := classify(body, jsonContentType)
	if err1 != nil || err2 != nil {
		t.Fatalf("classify() errors: %v, %v", err1, err2)
	}
	if first.Kind != second.Kind || first.Callback.EventID != second.Callback.EventID {
		t.Error("classify() is not deterministic for identical input")
	}
}

func TestIsIgnoredAction(t *testing.T) {
	urlButton := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
		Actions: []Action{{Type: "button", Value: urlButtonValue}},
	}}
	if !isIgnoredAction(urlButton) {
		t.Error("url-valued first action should be ignored")
	}

	realButton := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{
		Actions: []Action{{Type: "button", Value: "order"}},
	}}
	if isIgnoredAction(realButton) {
		t.Error("regular action should not be ignored")
	}
}

func TestSplitMixedTextAndFiles(t *testing.T) {
	body := &RawBody{Kind: BodyEventCallback, Callback: &EventCallback{
		EventID: "Ev1",
		Event: InnerEvent{
			Type:    "message",
			Text:    "hi",
			Channel: "C1",
			Files:   []File{{ID: "F1", Name: "doc.pdf", MIMEType: "application/pdf"}},
		},
	}}

	parts := splitMixed(body)
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}

	text := parts[0].Callback.Event
	if text.Text != "hi" || len(text.Files) != 0 {
		t.Errorf("text half = %+v, want text only", text)
	}

	files := parts[1].Callback.Event
	if files.Text != "" || len(files.Files) != 1 {
		t.Errorf("files half = %+v, want files only", files)
	}

	if parts[0].Callback.EventID == parts[1].Callback.EventID {
		t.Error("split halves share an event ID, dedup would drop one")
	}
}

func TestSplitMixedPassthrough(t *testing.T) {
	textOnly := &RawBody{Kind: BodyEventCallback, Callback: &EventCallback{
		Event: InnerEvent{Type: "message", Text: "hi", Channel: "C1"},
	}}
	if parts := splitMixed(textOnly); len(parts) != 1 {
		t.Errorf("text-only callback split into %d parts, want 1", len(parts))
	}

	action := &RawBody{Kind: BodyBlockAction, Action: &BlockActionPayload{}}
	if parts := splitMixed(action); len(parts) != 1 {
		t.Errorf("block action split into %d parts, want 1", len(parts))
	}
}
