package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hexastack/slackbridge/pkg/message"
)

func newTestSlack(serverURL string) *Slack {
	cfg := Config{BotToken: "xoxb-test", SigningSecret: "secret", APIURL: serverURL}
	cfg.defaults()
	return &Slack{
		config:  cfg,
		client:  newTestClient(serverURL),
		logger:  discardLogger(),
		secrets: newSecretStore(cfg.BotToken, "", cfg.SigningSecret),
	}
}

func TestSendOutboundPostsMessage(t *testing.T) {
	var posted []PostMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat.postMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req PostMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		posted = append(posted, req)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "1.2"})
	}))
	defer srv.Close()

	s := newTestSlack(srv.URL)
	msg := message.OutboundMessage{ChatID: "C1", Text: "hello", ThreadID: "1700000000.000100"}

	if err := s.sendOutbound(context.Background(), msg); err != nil {
		t.Fatalf("sendOutbound() error: %v", err)
	}
	if len(posted) != 1 {
		t.Fatalf("server saw %d posts, want 1", len(posted))
	}
	if posted[0].Channel != "C1" || posted[0].Text != "hello" || posted[0].ThreadTS != "1700000000.000100" {
		t.Errorf("request = %+v", posted[0])
	}
}

func TestSendOutboundUsesResponseURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestSlack(srv.URL)
	msg := message.OutboundMessage{
		ChatID:          "C1",
		Text:            "updated",
		ResponseURL:     srv.URL + "/respond/T1/1",
		ReplaceOriginal: true,
	}

	if err := s.sendOutbound(context.Background(), msg); err != nil {
		t.Fatalf("sendOutbound() error: %v", err)
	}
	if path != "/respond/T1/1" {
		t.Errorf("delivered to %q, want the response_url", path)
	}
}

func TestSendOutboundChunksLongMessage(t *testing.T) {
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req PostMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		texts = append(texts, req.Text)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	s := newTestSlack(srv.URL)
	s.config.MaxMessageLength = 20
	lines := []string{
		strings.Repeat("a", 15),
		strings.Repeat("b", 15),
		strings.Repeat("c", 15),
	}
	msg := message.OutboundMessage{ChatID: "C1", Text: strings.Join(lines, "\n")}

	if err := s.sendOutbound(context.Background(), msg); err != nil {
		t.Fatalf("sendOutbound() error: %v", err)
	}
	if len(texts) < 2 {
		t.Fatalf("server saw %d posts, want chunked delivery", len(texts))
	}
	for _, text := range texts {
		if len(text) > 20 {
			t.Errorf("chunk of %d bytes exceeds the limit", len(text))
		}
	}
	if got := strings.Join(texts, "\n"); got != msg.Text {
		t.Errorf("reassembled = %q, want original text", got)
	}
}

func TestSendOutboundChunkingDropsResponseURLAfterFirst(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/chat.postMessage" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newTestSlack(srv.URL)
	s.config.MaxMessageLength = 20
	msg := message.OutboundMessage{
		ChatID:      "C1",
		Text:        strings.Repeat("a", 15) + "\n" + strings.Repeat("b", 15),
		ResponseURL: srv.URL + "/respond/T1/1",
	}

	if err := s.sendOutbound(context.Background(), msg); err != nil {
		t.Fatalf("sendOutbound() error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(paths))
	}
	if paths[0] != "/respond/T1/1" {
		t.Errorf("first chunk went to %q, want the response_url", paths[0])
	}
	if paths[1] != "/chat.postMessage" {
		t.Errorf("second chunk went to %q, want chat.postMessage", paths[1])
	}
}

func TestSendOutboundPropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))
	defer srv.Close()

	s := newTestSlack(srv.URL)
	err := s.sendOutbound(context.Background(), message.OutboundMessage{ChatID: "CX", Text: "hi"})
	if err == nil {
		t.Fatal("sendOutbound() = nil, want delivery error")
	}
}
