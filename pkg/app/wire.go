package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/internal/pipeline"
	"github.com/hexastack/slackbridge/pkg/message"
)

// wirePipeline discovers channels among the loaded modules, registers
// them with an outbound dispatcher, and points every channel's inbox at
// the configured pipeline sink behind an event deduplicator.
// Must be called after LoadModules and before Start.
func wirePipeline(
	app *core.App,
	appCtx *core.AppContext,
	ids []string,
	logger *slog.Logger,
) error {
	dispatcher := channel.NewDispatcher()
	var channels []channel.Channel

	for _, id := range ids {
		mod, ok := app.Module(id)
		if !ok {
			continue
		}
		ch, ok := mod.(channel.Channel)
		if !ok {
			continue
		}
		// Register under the full module ID (e.g. "channel.slack") because
		// that is what the channel sets as ev.Channel on inbound events.
		if err := dispatcher.Register(id, ch); err != nil {
			return fmt.Errorf("registering channel %s: %w", id, err)
		}
		channels = append(channels, ch)
		logger.Info("channel registered", "channel", id)
	}

	if len(channels) == 0 {
		return fmt.Errorf("no channel modules loaded (configure at least one channel.* module)")
	}

	// The gateway and pipeline modules resolve the dispatcher at Start.
	appCtx.RegisterService("channel.dispatcher", dispatcher)

	sink := resolveSink(appCtx, logger)
	deduper := pipeline.NewDeduper(0)

	inbox := func(ev message.Event) error {
		if deduper.Seen(ev.ID) {
			logger.Debug("duplicate event dropped", "event", ev.ID, "channel", ev.Channel)
			return nil
		}
		if err := sink.Push(context.Background(), ev); err != nil {
			// Leave the ID unmarked so the platform's redelivery of this
			// event is not dropped as a duplicate.
			return err
		}
		deduper.Mark(ev.ID)
		return nil
	}

	for _, ch := range channels {
		ch.SetInbox(inbox)
	}

	logger.Info("pipeline wired", "channels", len(channels))
	return nil
}

// resolveSink returns the sink published by a pipeline module, falling
// back to the logging sink so a channel-only deployment still starts.
func resolveSink(appCtx *core.AppContext, logger *slog.Logger) pipeline.Sink {
	svc, ok := appCtx.Service("pipeline.sink")
	if !ok {
		logger.Warn("no pipeline module configured, events will only be logged")
		return &pipeline.LogSink{Logger: logger}
	}
	sink, ok := svc.(pipeline.Sink)
	if !ok {
		logger.Warn("pipeline.sink service has unexpected type, events will only be logged")
		return &pipeline.LogSink{Logger: logger}
	}
	return sink
}
