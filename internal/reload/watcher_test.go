package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeBridgeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slackbridge.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w := NewWatcher(WatcherConfig{
		ConfigPath:   path,
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w.Start(ctx)
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherEmitsOnCredentialRotation(t *testing.T) {
	path := writeBridgeConfig(t, "modules:\n  channel.slack:\n    bot_token: xoxb-old\n")
	w := startWatcher(t, path)

	// Give the poller one tick to record the initial modification time.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("modules:\n  channel.slack:\n    bot_token: xoxb-new\n"), 0o600); err != nil {
		t.Fatalf("rotating token in config: %v", err)
	}

	select {
	case evt := <-w.Events():
		if evt.Type != EventModified {
			t.Errorf("event type = %q, want %q", evt.Type, EventModified)
		}
		if evt.ConfigPath != path {
			t.Errorf("event path = %q, want %q", evt.ConfigPath, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after the config file changed")
	}
}

func TestWatcherStopReturnsPromptly(t *testing.T) {
	path := writeBridgeConfig(t, "version: \"1\"\n")
	w := startWatcher(t, path)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWatcherStopAfterContextCancel(t *testing.T) {
	path := writeBridgeConfig(t, "version: \"1\"\n")

	w := NewWatcher(WatcherConfig{
		ConfigPath:   path,
		PollInterval: 50 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung after the context was cancelled")
	}
}

func TestWatcherStopBeforeStart(t *testing.T) {
	w := NewWatcher(WatcherConfig{ConfigPath: "/any/slackbridge.yaml"})

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop before Start deadlocked")
	}
}

func TestWatcherSilentOnMissingFile(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		ConfigPath:   "/nonexistent/slackbridge.yaml",
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	select {
	case evt := <-w.Events():
		t.Errorf("unexpected event for missing file: %+v", evt)
	case <-ctx.Done():
	}
}
