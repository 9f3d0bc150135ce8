package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry pairs a registered job with the mutex that keeps its ticks from
// overlapping. A tick that fires while the previous run is still going
// is skipped, not queued; for maintenance work like an attachment purge
// the next tick covers the same ground anyway.
type entry struct {
	job     Job
	running sync.Mutex
}

// Scheduler runs registered jobs on their cron schedules. Register all
// jobs first, then Start; the zero job set is valid and Start simply
// schedules nothing.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	runner  *cron.Cron
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewScheduler creates an empty scheduler logging through logger.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// RegisterJob adds a job. Job names are unique per scheduler; a second
// registration under the same name is rejected.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, taken := s.entries[name]; taken {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	s.entries[name] = &entry{job: j}
	s.order = append(s.order, name)
	return nil
}

// Start parses every registered schedule and begins ticking. An invalid
// expression fails the whole Start so a misconfigured retention sweep is
// caught at boot, not discovered by an ever-growing store.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.runner = cron.New(cron.WithParser(parser))

	for _, name := range s.order {
		e := s.entries[name]
		if _, err := s.runner.AddFunc(e.job.Schedule(), s.tick(ctx, e)); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
		}
	}

	s.runner.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.order))
	return nil
}

// tick returns the closure the cron runner invokes for one job.
func (s *Scheduler) tick(ctx context.Context, e *entry) func() {
	name := e.job.Name()
	return func() {
		if !e.running.TryLock() {
			s.logger.Warn("cron: previous run still active, tick skipped", "job", name)
			return
		}
		defer e.running.Unlock()

		s.logger.Debug("cron: job started", "job", name)
		if err := e.job.Run(ctx); err != nil {
			s.logger.Error("cron: job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("cron: job completed", "job", name)
	}
}

// Stop cancels the job context and waits for in-flight runs to finish.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.runner != nil {
		<-s.runner.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
