// Package gateway runs the HTTP listener that fronts the bridge: Slack's
// webhook deliveries come in through it, and health, metrics, and admin
// endpoints hang off the same server.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hexastack/slackbridge/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// channelLister is the narrow view of the channel dispatcher the status
// endpoints need.
type channelLister interface {
	Channels() []string
}

// Gateway is the "gateway.http" module. It owns the webhook dispatcher
// that channel receivers register with during their own Provision, then
// serves everything from one http.Server.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	server     *http.Server
	metrics    *Metrics
	dispatcher *WebhookDispatcher
	startedAt  time.Time

	// Filled in by Start from the service registry; both are optional.
	channels channelLister
	reload   func() error
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The webhook dispatcher has to
// exist before the channel modules provision, since they register their
// receivers against it.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = NewMetrics()
	g.dispatcher = NewWebhookDispatcher(g.logger, g.metrics)

	ctx.RegisterService("gateway.metrics", g.metrics)
	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)

	for source := range g.config.Webhooks {
		g.logger.Info("webhook source configured", "source", source)
	}

	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It binds the listener synchronously so
// a taken port fails boot, then serves in the background.
func (g *Gateway) Start() error {
	g.resolveServices()
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// resolveServices picks up the optional collaborators other modules
// registered during Provision. A deployment without a channel dispatcher
// or reload handler still serves webhooks; the status and reload
// endpoints just report less.
func (g *Gateway) resolveServices() {
	if svc, ok := g.appCtx.Service("channel.dispatcher"); ok {
		if lister, ok := svc.(channelLister); ok {
			g.channels = lister
		}
	}
	if svc, ok := g.appCtx.Service("app.reload"); ok {
		if fn, ok := svc.(func() error); ok {
			g.reload = fn
		}
	}
}

// Stop implements core.Stopper. In-flight webhook requests get until the
// configured shutdown timeout to finish.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// Dispatcher returns the webhook dispatcher for in-process registration.
func (g *Gateway) Dispatcher() *WebhookDispatcher {
	return g.dispatcher
}
