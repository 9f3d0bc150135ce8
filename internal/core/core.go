package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const shutdownTimeout = 30 * time.Second

// App owns the lifecycle of the loaded modules: the gateway, channels,
// the attachment store, and the pipeline all pass through here in a
// fixed order so startup failures unwind cleanly.
type App struct {
	ctx    *AppContext
	loaded []loadedModule
	logger *slog.Logger
}

type loadedModule struct {
	id      ModuleID
	module  Module
	started bool
}

// NewApp creates an App bound to the given context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules instantiates, configures, provisions, and validates one
// module per ID, in order. The first failure stops loading and tears
// down whatever was already loaded; the bridge either boots whole or
// not at all.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.unload()
			return fmt.Errorf("loading module %s: %w", id, err)
		}
		a.loaded = append(a.loaded, loadedModule{id: mod.ModuleInfo().ID, module: mod})
		a.logger.Info("module loaded", "module", id)
	}
	return nil
}

// Module returns the loaded instance for id, or false when id was not
// among the loaded set.
func (a *App) Module(id string) (Module, bool) {
	for i := range a.loaded {
		if string(a.loaded[i].id) == id {
			return a.loaded[i].module, true
		}
	}
	return nil, false
}

// AppendModule places an already-built module under lifecycle management.
// Wiring-time components that never go through the registry, such as
// test doubles, enter the app this way.
func (a *App) AppendModule(id string, mod Module) {
	a.loaded = append(a.loaded, loadedModule{id: ModuleID(id), module: mod})
}

// Start starts every loaded module that implements Starter, in load
// order. A failed Start stops the modules started so far, in reverse,
// before returning the error.
func (a *App) Start() error {
	for i := range a.loaded {
		lm := &a.loaded[i]
		starter, ok := lm.module.(Starter)
		if !ok {
			continue
		}
		a.logger.Info("starting module", "module", string(lm.id))
		if err := starter.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(lm.id), "error", err)
			a.stopFrom(i - 1)
			return fmt.Errorf("starting module %s: %w", lm.id, err)
		}
		lm.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops all started modules in reverse load order, so consumers
// (gateway, pipeline) quiesce before the channels and store they use.
func (a *App) Stop() {
	a.stopFrom(len(a.loaded) - 1)
}

func (a *App) stopFrom(index int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := index; i >= 0; i-- {
		lm := &a.loaded[i]
		if !lm.started {
			continue
		}
		if stopper, ok := lm.module.(Stopper); ok {
			a.logger.Info("stopping module", "module", string(lm.id))
			if err := stopper.Stop(ctx); err != nil {
				a.logger.Error("module stop error", "module", string(lm.id), "error", err)
			}
		}
		lm.started = false
	}
}

// unload discards all loaded modules after a failed LoadModules, giving
// each Stopper a chance to release what Provision opened.
func (a *App) unload() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.loaded) - 1; i >= 0; i-- {
		if stopper, ok := a.loaded[i].module.(Stopper); ok {
			_ = stopper.Stop(ctx)
		}
	}
	a.loaded = nil
}

// ReloadModules offers the fresh context to every module implementing
// Reloader. All reloaders run even when one fails; the errors come back
// joined so a bad channel section does not block a credential rotation
// in another module.
func (a *App) ReloadModules(ctx *AppContext) error {
	var errs []error
	for i := range a.loaded {
		lm := &a.loaded[i]
		reloader, ok := lm.module.(Reloader)
		if !ok {
			continue
		}
		a.logger.Info("reloading module", "module", string(lm.id))
		if err := reloader.Reload(ctx.ForModule(lm.id)); err != nil {
			a.logger.Error("module reload failed", "module", string(lm.id), "error", err)
			errs = append(errs, fmt.Errorf("reloading module %s: %w", lm.id, err))
		}
	}
	return errors.Join(errs...)
}
