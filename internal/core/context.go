package core

import (
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// AppContext is what a module sees of the application: a logger scoped
// to the module, the persistent data directory, the raw per-module
// configuration, and the service registry through which the gateway,
// channels, pipeline, and store find each other without importing each
// other's packages.
type AppContext struct {
	// Logger for the current module scope.
	Logger *slog.Logger

	// DataDir is the root directory for persistent module data, such as
	// the attachment store's database and blobs.
	DataDir string

	parentLogger  *slog.Logger
	moduleConfigs map[string]yaml.Node

	services *serviceRegistry
}

// serviceRegistry is shared by every AppContext derived from the same
// root, so a service registered through a module-scoped context is
// visible everywhere.
type serviceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewAppContext creates the root context for one bridge process.
func NewAppContext(logger *slog.Logger, dataDir string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:       logger,
		DataDir:      dataDir,
		parentLogger: logger,
		services:     &serviceRegistry{services: make(map[string]any)},
	}
}

// WithModuleConfigs returns a copy carrying the raw YAML section for
// each module ID. Load and reload both pass through here, so the nodes
// reflect whichever file version was parsed last.
func (ctx *AppContext) WithModuleConfigs(configs map[string]yaml.Node) *AppContext {
	cp := *ctx
	cp.moduleConfigs = configs
	return &cp
}

// ForModule derives a context scoped to one module: same data dir,
// same services, logger tagged with the module ID.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	return &AppContext{
		Logger:        ctx.parentLogger.With("module", string(id)),
		DataDir:       ctx.DataDir,
		parentLogger:  ctx.parentLogger,
		moduleConfigs: ctx.moduleConfigs,
		services:      ctx.services,
	}
}

// RegisterService publishes svc under name for other modules to
// discover. Registering a name twice overwrites; last writer wins,
// which is what a Reload wants.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	defer ctx.services.mu.Unlock()
	ctx.services.services[name] = svc
}

// Service returns the service registered under name, or false if none.
func (ctx *AppContext) Service(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.services[name]
	return svc, ok
}

// ModuleConfig returns the raw YAML node for the given module ID.
// Reloaders use it to re-read their section after a config reload.
func (ctx *AppContext) ModuleConfig(id string) (*yaml.Node, bool) {
	node, ok := ctx.moduleConfigs[id]
	if !ok {
		return nil, false
	}
	return &node, true
}

// LoadModule builds one module from the registry and walks it through
// the provisioning half of the lifecycle:
//
//	New() → Configure() → Provision() → Validate()
//
// Each step runs only if the module implements the matching interface.
// The returned module is ready for App.Start.
func (ctx *AppContext) LoadModule(id string) (Module, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", id)
	}

	mod := info.New()

	if c, ok := mod.(Configurable); ok {
		if node, exists := ctx.moduleConfigs[id]; exists {
			if err := c.Configure(&node); err != nil {
				return nil, fmt.Errorf("configuring module %s: %w", id, err)
			}
		}
	}

	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(ctx.ForModule(info.ID)); err != nil {
			return nil, fmt.Errorf("provisioning module %s: %w", id, err)
		}
	}

	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating module %s: %w", id, err)
		}
	}

	return mod, nil
}
