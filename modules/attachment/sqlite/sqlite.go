// Package sqlite implements a persistent SQLite-backed attachment store.
// Downloaded files are kept as blobs so channel events can reference them
// with durable attach:// URIs after the platform's signed URLs expire.
// It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hexastack/slackbridge/internal/attachment"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/internal/cron"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ attachment.Store  = (*blobStore)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module implements the SQLite attachment store with a cron-driven
// retention sweeper.
type Module struct {
	config    Config
	db        *sql.DB
	logger    *slog.Logger
	store     *blobStore
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "attachment.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("attachment: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("attachment: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", m.config.Path)
	if err != nil {
		return fmt.Errorf("attachment: open %s: %w", m.config.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if m.config.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("attachment: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", m.config.BusyTimeout)); err != nil {
		_ = db.Close()
		return fmt.Errorf("attachment: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.store = &blobStore{
		db:          db,
		client:      &http.Client{Timeout: m.config.FetchTimeout},
		maxFileSize: m.config.MaxFileSize,
		logger:      ctx.Logger,
	}

	ctx.RegisterService("attachment.store", m.store)

	m.logger.Info("attachment store provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"retention", m.config.Retention,
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("attachment: ping failed: %w", err)
	}

	return nil
}

// Start implements core.Starter. It launches the retention sweeper when
// a retention window is configured.
func (m *Module) Start() error {
	if m.config.Retention <= 0 {
		return nil
	}

	m.scheduler = cron.NewScheduler(m.logger)
	job := &sweepJob{
		store:     m.store,
		retention: m.config.Retention,
		schedule:  m.config.SweepSchedule,
		logger:    m.logger,
	}
	if err := m.scheduler.RegisterJob(job); err != nil {
		return err
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler != nil {
		if err := m.scheduler.Stop(ctx); err != nil {
			m.logger.Error("attachment sweeper stop failed", "error", err)
		}
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the attachment store implementation.
func (m *Module) Store() attachment.Store {
	return m.store
}
