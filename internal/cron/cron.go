// Package cron provides a small scheduler for periodic maintenance jobs,
// built on robfig/cron expressions.
package cron

import "context"

// Job is a named periodic task with a cron schedule.
type Job interface {
	// Name uniquely identifies the job within a scheduler.
	Name() string

	// Schedule returns the cron expression (standard 5-field format).
	Schedule() string

	// Run executes one tick of the job. The context is canceled when the
	// scheduler stops.
	Run(ctx context.Context) error
}
