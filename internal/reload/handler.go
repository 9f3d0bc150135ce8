package reload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hexastack/slackbridge/internal/config"
	"github.com/hexastack/slackbridge/internal/core"
)

// Handler turns a reload trigger (SIGHUP, file change, admin endpoint)
// into a module reload: parse the file, validate it, offer the fresh
// sections to every module that implements core.Reloader. A config that
// fails validation never reaches the modules, so the bridge keeps
// running on the previous one.
type Handler struct {
	app     *core.App
	logger  *slog.Logger
	dataDir string
}

// NewHandler creates a reload handler for the given app.
func NewHandler(app *core.App, logger *slog.Logger, dataDir string) *Handler {
	return &Handler{
		app:     app,
		logger:  logger,
		dataDir: dataDir,
	}
}

// HandleReload reads configPath from disk, validates it, and applies it.
func (h *Handler) HandleReload(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return h.apply(ctx, cfg)
}

// HandleReloadFromConfig applies an already-loaded config without
// re-validating it. The caller owns validation.
func (h *Handler) HandleReloadFromConfig(ctx context.Context, cfg *config.Config) error {
	return h.apply(ctx, cfg)
}

func (h *Handler) apply(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before reload: %w", err)
	}

	appCtx := core.NewAppContext(h.logger, h.dataDir).WithModuleConfigs(cfg.Modules)

	if err := h.app.ReloadModules(appCtx); err != nil {
		return fmt.Errorf("reloading modules: %w", err)
	}

	h.logger.Info("configuration reloaded successfully")
	return nil
}
