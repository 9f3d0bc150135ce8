package channel

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/hexastack/slackbridge/pkg/message"
)

// Dispatcher routes outbound messages to registered channels by module
// ID. Inbound events carry the ID of the channel that produced them, so
// an engine reply built with message.ReplyTo addresses the right channel
// without the pipeline knowing any concrete channel type.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewDispatcher creates a dispatcher with no channels registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{channels: make(map[string]Channel)}
}

// Register adds ch under the given module ID (e.g. "channel.slack").
// A second registration under the same ID returns ErrDuplicateChannel.
func (d *Dispatcher) Register(id string, ch Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.channels[id]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, id)
	}
	d.channels[id] = ch
	return nil
}

// Get returns the channel registered under id, or false when none is.
func (d *Dispatcher) Get(id string) (Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ch, ok := d.channels[id]
	return ch, ok
}

// Send delivers msg through the channel named by msg.Channel, returning
// ErrNoChannel when nothing is registered under that ID.
func (d *Dispatcher) Send(ctx context.Context, msg message.OutboundMessage) error {
	ch, ok := d.Get(msg.Channel)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChannel, msg.Channel)
	}
	return ch.Send(ctx, msg)
}

// Channels returns the registered module IDs in sorted order, for the
// gateway's status and channel-listing endpoints.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Sorted(maps.Keys(d.channels))
}
