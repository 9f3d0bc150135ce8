// Package http implements the pipeline.http module: it forwards
// canonical events to a bot engine over HTTP and routes the engine's
// synchronous replies back to their channel.
package http

import (
	"fmt"

	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/internal/pipeline"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ pipeline.Sink     = (*Forwarder)(nil)
)

// Module is the pipeline.http module.
type Module struct {
	config    Config
	forwarder *Forwarder
	appCtx    *core.AppContext
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "pipeline.http",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("pipeline.http: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The forwarder is published as
// the pipeline sink so the wiring layer can point channel inboxes at it.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx
	m.forwarder = NewForwarder(m.config, ctx.Logger)
	ctx.RegisterService("pipeline.sink", m.forwarder)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter. The channel dispatcher is registered
// during wiring, after provisioning, so it is resolved here.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service("channel.dispatcher")
	if !ok {
		m.appCtx.Logger.Warn("channel.dispatcher not found, engine replies will be dropped")
		return nil
	}
	dispatcher, ok := svc.(*channel.Dispatcher)
	if !ok {
		return fmt.Errorf("pipeline.http: channel.dispatcher has unexpected type %T", svc)
	}
	m.forwarder.SetSender(dispatcher)
	return nil
}
