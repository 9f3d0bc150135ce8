package channel

import (
	"context"
	"sync"

	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/pkg/message"
)

// MockChannel is a Channel double for wiring and pipeline tests: it
// records what the dispatcher sends it and injects inbound events
// through SimulateEvent as if a platform had delivered them.
type MockChannel struct {
	name  string
	inbox func(ev message.Event) error
	mu    sync.Mutex
	sent  []message.OutboundMessage

	// SendFunc overrides the default recording Send when set.
	SendFunc func(ctx context.Context, msg message.OutboundMessage) error
}

// Compile-time interface guard.
var _ Channel = (*MockChannel)(nil)

// NewMockChannel creates a MockChannel with the given name.
func NewMockChannel(name string) *MockChannel {
	return &MockChannel{name: name}
}

// ModuleInfo implements core.Module.
func (m *MockChannel) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  core.ModuleID("channel." + m.name),
		New: func() core.Module { return NewMockChannel(m.name) },
	}
}

// Send records msg, or delegates to SendFunc when one is set.
func (m *MockChannel) Send(ctx context.Context, msg message.OutboundMessage) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// SetInbox implements Channel.
func (m *MockChannel) SetInbox(fn func(ev message.Event) error) {
	m.inbox = fn
}

// SimulateEvent pushes an event through the inbox as if it arrived from
// the platform.
func (m *MockChannel) SimulateEvent(ev message.Event) error {
	if m.inbox == nil {
		return ErrNoInbox
	}
	return m.inbox(ev)
}

// Sent returns a copy of all recorded outbound messages.
func (m *MockChannel) Sent() []message.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]message.OutboundMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
