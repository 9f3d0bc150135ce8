package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/hexastack/slackbridge/internal/attachment"
	"github.com/hexastack/slackbridge/internal/cron"
)

// sweepJob removes attachments older than the configured retention.
type sweepJob struct {
	store     attachment.Store
	retention time.Duration
	schedule  string
	logger    *slog.Logger
}

// Compile-time interface guard.
var _ cron.Job = (*sweepJob)(nil)

func (j *sweepJob) Name() string { return "attachment.sweep" }

func (j *sweepJob) Schedule() string { return j.schedule }

func (j *sweepJob) Run(ctx context.Context) error {
	removed, err := j.store.Purge(ctx, j.retention)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.Info("attachment sweep completed",
			"removed", removed,
			"retention", j.retention,
		)
	}
	return nil
}
