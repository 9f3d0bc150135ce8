package slack

import "github.com/hexastack/slackbridge/pkg/message"

// Conversation identifier prefixes. Slack encodes the conversation kind
// in the first letter of the ID.
const (
	directPrefix = 'D'
	groupPrefix  = 'G'
)

// resolveChatType derives the conversation kind for a classified body.
//
// When the inner event carries an explicit channel_type it is trusted
// verbatim. Otherwise the kind is inferred from the conversation ID
// prefix. App mentions never carry channel_type and always use the
// prefix fallback.
func resolveChatType(body *RawBody) message.ChatType {
	switch body.Kind {
	case BodyEventCallback:
		inner := body.Callback.Event
		if inner.Type != "app_mention" && inner.ChannelType != "" {
			return mapChannelType(inner.ChannelType)
		}
		return chatTypeFromID(inner.Channel)

	case BodyBlockAction:
		return chatTypeFromID(actionChannelID(body.Action))

	case BodySlashCommand:
		return chatTypeFromID(body.Command.ChannelID)
	}

	return message.ChatPublic
}

// mapChannelType converts Slack channel_type strings to message.ChatType.
func mapChannelType(ct string) message.ChatType {
	switch ct {
	case "im":
		return message.ChatDirect
	case "mpim", "group":
		return message.ChatGroup
	case "channel":
		return message.ChatPublic
	default:
		return message.ChatPublic
	}
}

// chatTypeFromID infers the conversation kind from the ID prefix.
func chatTypeFromID(id string) message.ChatType {
	if id == "" {
		return message.ChatPublic
	}
	switch id[0] {
	case directPrefix:
		return message.ChatDirect
	case groupPrefix:
		return message.ChatGroup
	default:
		return message.ChatPublic
	}
}

// actionChannelID returns the conversation ID an interaction happened in,
// preferring the channel object over the container.
func actionChannelID(p *BlockActionPayload) string {
	if p.Channel != nil && p.Channel.ID != "" {
		return p.Channel.ID
	}
	return p.Container.ChannelID
}
