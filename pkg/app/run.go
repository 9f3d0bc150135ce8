// Package app provides the shared entry point for the slackbridge binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hexastack/slackbridge/internal/config"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/internal/reload"
	"github.com/hexastack/slackbridge/internal/security"
)

// RunParams carries what the CLI layer hands to Run.
type RunParams struct {
	// ConfigPath points at the YAML file to run from. Empty means search
	// the standard locations via ResolveConfigPath.
	ConfigPath string

	// Build identity, set through ldflags and reported by the status
	// endpoint and the version command.
	Version string
	Commit  string
	Date    string

	// DataDir overrides where the attachment store keeps its files.
	DataDir string

	// LogLevel is the minimum level to emit; zero value is Info.
	LogLevel slog.Level
}

// Run boots the bridge and blocks until SIGINT or SIGTERM: it loads and
// validates the configuration, wires the event pipeline between the
// channels and the engine sink, starts every module, then sits in the
// reload loop. SIGHUP and an edit to the config file both apply the new
// configuration to the running process.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := newLogger(params.LogLevel)

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	// 0700: the attachment store under here holds workspace content.
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	// The gateway's status endpoint reports which file the bridge runs from.
	appCtx.RegisterService("config.path", cfgPath)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Channels exist after LoadModules but have no inbox yet; the pipeline
	// must connect them to the sink before Start opens any transport.
	if err := wirePipeline(application, appCtx, ids, logger); err != nil {
		return err
	}

	// The gateway's reload endpoint resolves this during Start, so it has
	// to be registered first.
	handler := reload.NewHandler(application, logger, dataDir)
	appCtx.RegisterService("reload.handler", handler)
	appCtx.RegisterService("app.reload", func() error {
		return handler.HandleReload(context.Background(), cfgPath)
	})

	if err := application.Start(); err != nil {
		return err
	}
	logger.Info("slackbridge started", "version", params.Version, "config", cfgPath)

	return serve(application, handler, cfgPath, logger)
}

// newLogger builds the process logger. Every handler in the bridge hangs
// off this one, so the redaction of Slack tokens and signing secrets
// installed here covers all log output.
func newLogger(level slog.Level) *slog.Logger {
	text := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(security.NewRedactingHandler(text, security.NewRedactor()))
}

// serve blocks on the signal and config-watch loop until a shutdown
// signal arrives.
func serve(application *core.App, handler *reload.Handler, cfgPath string, logger *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	watcher := reload.NewWatcher(reload.WatcherConfig{ConfigPath: cfgPath})
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watcher.Start(watchCtx)
	defer watcher.Stop()

	applyReload := func(trigger string) {
		logger.Info("reloading configuration", "trigger", trigger, "config", cfgPath)
		if err := handler.HandleReload(watchCtx, cfgPath); err != nil {
			logger.Error("reload failed", "error", err)
		}
	}

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				applyReload("SIGHUP")
				continue
			}
			logger.Info("shutdown signal received", "signal", sig.String())
			application.Stop()
			logger.Info("shutdown complete")
			return nil
		case <-watcher.Events():
			applyReload("file change")
		}
	}
}

// ResolveConfigPath searches the standard locations for slackbridge.yaml:
// $XDG_CONFIG_HOME/slackbridge/ first, then ~/.config/slackbridge/, then
// the current directory.
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "slackbridge", "slackbridge.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "slackbridge", "slackbridge.yaml"))
	}

	candidates = append(candidates, "slackbridge.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultConfigPath returns where a new config file should be written,
// whether or not anything exists there yet. The init wizard uses this.
func DefaultConfigPath() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "slackbridge", "slackbridge.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "slackbridge", "slackbridge.yaml")
}

// DefaultDataDir returns the persistent data directory holding the
// attachment store: $XDG_DATA_HOME/slackbridge when set, otherwise
// ~/.local/share/slackbridge.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "slackbridge")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "slackbridge")
}
