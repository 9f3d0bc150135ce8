package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/pkg/message"
)

// flakySink fails the first failures pushes, then accepts, recording
// every accepted event.
type flakySink struct {
	failures int
	calls    int
	accepted []message.Event
}

func (s *flakySink) Push(_ context.Context, ev message.Event) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("engine unavailable")
	}
	s.accepted = append(s.accepted, ev)
	return nil
}

func newWiredMock(t *testing.T, sink *flakySink) *channel.MockChannel {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := core.NewAppContext(logger, t.TempDir())
	appCtx.RegisterService("pipeline.sink", sink)

	mock := channel.NewMockChannel("mock")
	application := core.NewApp(appCtx)
	application.AppendModule("channel.mock", mock)

	if err := wirePipeline(application, appCtx, []string{"channel.mock"}, logger); err != nil {
		t.Fatalf("wirePipeline() error: %v", err)
	}
	return mock
}

func TestWirePipelineNoChannels(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := core.NewAppContext(logger, t.TempDir())
	application := core.NewApp(appCtx)

	if err := wirePipeline(application, appCtx, nil, logger); err == nil {
		t.Error("wirePipeline() should fail with no channel modules")
	}
}

func TestWirePipelineDropsDuplicateAfterDelivery(t *testing.T) {
	sink := &flakySink{}
	mock := newWiredMock(t, sink)

	ev := message.Event{ID: "Ev1", Kind: message.EventMessage, Channel: "channel.mock"}
	if err := mock.SimulateEvent(ev); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := mock.SimulateEvent(ev); err != nil {
		t.Fatalf("redelivery errored: %v", err)
	}

	if len(sink.accepted) != 1 {
		t.Errorf("sink accepted %d events, want 1 (duplicate should be dropped)", len(sink.accepted))
	}
}

func TestWirePipelineRedeliveryAfterSinkFailure(t *testing.T) {
	sink := &flakySink{failures: 1}
	mock := newWiredMock(t, sink)

	// The webhook call that hits the failing push answers with an error,
	// so the platform redelivers the same event ID. That retry must reach
	// the sink instead of being dropped as a duplicate.
	ev := message.Event{ID: "Ev1", Kind: message.EventMessage, Channel: "channel.mock"}
	if err := mock.SimulateEvent(ev); err == nil {
		t.Fatal("first delivery should surface the sink failure")
	}
	if err := mock.SimulateEvent(ev); err != nil {
		t.Fatalf("redelivery errored: %v", err)
	}

	if len(sink.accepted) != 1 {
		t.Fatalf("sink accepted %d events, want the redelivered event", len(sink.accepted))
	}
	if sink.accepted[0].ID != "Ev1" {
		t.Errorf("accepted event ID = %q, want Ev1", sink.accepted[0].ID)
	}
}
