package channel

import (
	"testing"

	"github.com/hexastack/slackbridge/pkg/message"
)

func eventFrom(userID, chatID string) message.Event {
	return message.Event{
		Sender:   message.Sender{ID: userID},
		SenderID: chatID,
	}
}

func TestAllowListEmptyAllowsEveryone(t *testing.T) {
	a := NewAllowList(nil, nil)
	if !a.IsAllowed(eventFrom("U123", "C456")) {
		t.Error("empty allow-list should allow everyone")
	}

	var nilList *AllowList
	if !nilList.IsAllowed(eventFrom("U123", "C456")) {
		t.Error("nil allow-list should allow everyone")
	}
}

func TestAllowListUserMatch(t *testing.T) {
	a := NewAllowList([]string{" U123 "}, nil)
	if !a.IsAllowed(eventFrom("u123", "C456")) {
		t.Error("user match should allow (case-insensitive, trimmed)")
	}
	if a.IsAllowed(eventFrom("U999", "C456")) {
		t.Error("non-matching user should be denied when a list is configured")
	}
}

func TestAllowListChatMatch(t *testing.T) {
	a := NewAllowList(nil, []string{"C456"})
	if !a.IsAllowed(eventFrom("U999", "C456")) {
		t.Error("chat match should allow")
	}
	if a.IsAllowed(eventFrom("U999", "C777")) {
		t.Error("non-matching chat should be denied")
	}
}
