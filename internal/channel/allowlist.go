package channel

import (
	"strings"

	"github.com/hexastack/slackbridge/pkg/message"
)

// AllowList restricts which users and conversations may reach the bot
// pipeline. An empty or nil AllowList allows everyone; a channel adapter
// serves the whole workspace unless a deployment narrows it down.
type AllowList struct {
	users map[string]struct{}
	chats map[string]struct{}
}

// NewAllowList builds the lookup sets. Entries are trimmed and
// lowercased once here, so IsAllowed matches Slack IDs regardless of how
// the operator cased them in the config.
func NewAllowList(users, chats []string) *AllowList {
	a := &AllowList{
		users: make(map[string]struct{}, len(users)),
		chats: make(map[string]struct{}, len(chats)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	for _, c := range chats {
		a.chats[normalize(c)] = struct{}{}
	}
	return a
}

// IsAllowed reports whether ev may enter the pipeline. With both lists
// empty nothing is restricted. Otherwise the sender's user ID passing
// the user list or the conversation ID passing the chat list is enough;
// everything else is denied.
func (a *AllowList) IsAllowed(ev message.Event) bool {
	if a == nil || (len(a.users) == 0 && len(a.chats) == 0) {
		return true
	}

	if _, ok := a.users[normalize(ev.Sender.ID)]; ok {
		return true
	}
	if _, ok := a.chats[normalize(ev.SenderID)]; ok {
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
