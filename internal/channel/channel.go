// Package channel sits between the messaging platforms and the event
// pipeline: the Channel interface that adapters like Slack implement,
// the dispatcher that routes engine replies back out, outbound chunking,
// and the allow-list gate.
package channel

import (
	"context"

	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/pkg/message"
)

// Channel is what a platform adapter exposes to the rest of the bridge.
// Inbound, the adapter authenticates raw platform payloads, normalizes
// them into canonical events, and hands them to the inbox. Outbound, the
// dispatcher calls Send with an engine reply addressed to it.
type Channel interface {
	core.Module

	// Send delivers one outbound message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error

	// SetInbox hands the channel its path into the pipeline. Wiring
	// calls this after LoadModules and before Start.
	SetInbox(fn func(ev message.Event) error)
}
