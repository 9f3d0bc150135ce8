package pipeline

import "sync"

const defaultDedupCapacity = 1024

// Deduper remembers recently seen event IDs. Slack redelivers webhook
// events it considers unacknowledged, so the same event ID can arrive
// more than once; the deduper drops the repeats before they reach the
// sink. Capacity is bounded: the oldest entry is evicted first.
type Deduper struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	next  int
}

// NewDeduper creates a deduper remembering up to capacity IDs.
// A capacity <= 0 uses the default of 1024.
func NewDeduper(capacity int) *Deduper {
	if capacity <= 0 {
		capacity = defaultDedupCapacity
	}
	return &Deduper{
		seen:  make(map[string]struct{}, capacity),
		order: make([]string, capacity),
	}
}

// Seen reports whether the ID has been marked before. It never records
// anything; callers mark an ID only once the event is safely handed off,
// so a failed delivery leaves the platform's redelivery undeduplicated.
// An empty ID is never deduplicated.
func (d *Deduper) Seen(id string) bool {
	if id == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.seen[id]
	return ok
}

// Mark records the ID, evicting the oldest entry when at capacity.
// Marking an empty or already-marked ID is a no-op.
func (d *Deduper) Mark(id string) {
	if id == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return
	}

	if old := d.order[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.order[d.next] = id
	d.next = (d.next + 1) % len(d.order)
	d.seen[id] = struct{}{}
}
