// Package reload applies configuration changes to a running bridge. The
// Handler re-reads the file and pushes the new module sections through
// the Reload lifecycle hook; the Watcher notices on-disk edits so rotated
// Slack credentials take effect without waiting for a SIGHUP.
package reload

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const defaultPollInterval = 5 * time.Second

// WatcherConfig configures the config-file watcher.
type WatcherConfig struct {
	// ConfigPath is the file to watch.
	ConfigPath string

	// PollInterval is the time between stat checks. Zero means 5s.
	PollInterval time.Duration
}

// EventType names what the watcher observed.
type EventType string

// EventModified means the watched file's modification time moved forward.
const EventModified EventType = "modified"

// Event is one observed change of the watched file.
type Event struct {
	Type       EventType
	ConfigPath string
}

// Watcher polls the config file's modification time. Polling was chosen
// over inotify-style APIs so the same code covers every platform the
// bridge runs on, and because a several-second delay is irrelevant for a
// credential rotation.
type Watcher struct {
	path     string
	interval time.Duration
	events   chan Event

	stop    chan struct{}
	stopped chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWatcher creates a watcher for cfg.ConfigPath. Call Start to begin.
func NewWatcher(cfg WatcherConfig) *Watcher {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{
		path:     cfg.ConfigPath,
		interval: interval,
		events:   make(chan Event, 1),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the polling goroutine. Additional calls are no-ops.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run(ctx)
	})
}

// Events returns the channel on which changes are delivered. The channel
// holds one pending event; edits arriving while one is pending coalesce
// into it, which is what a reload consumer wants.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop halts polling and waits for the goroutine to exit. Safe to call
// repeatedly and before Start.
//
// If Stop races with Start, the wait on w.stopped holds until the freshly
// launched goroutine observes the closed stop channel and exits, so Stop
// never returns while the goroutine still runs.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	if w.started.Load() {
		<-w.stopped
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stopped)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.modTime()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			last = w.check(last)
		}
	}
}

// check compares the file's current modification time against last and
// emits an event when it advanced. A file that is missing or unreadable
// emits nothing; the next successful stat resumes comparisons.
func (w *Watcher) check(last time.Time) time.Time {
	current := w.modTime()
	if current.IsZero() || !current.After(last) {
		return last
	}

	select {
	case w.events <- Event{Type: EventModified, ConfigPath: w.path}:
	default:
	}
	return current
}

func (w *Watcher) modTime() time.Time {
	info, err := os.Stat(w.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
