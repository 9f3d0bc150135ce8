package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hexastack/slackbridge/internal/attachment"
	"github.com/hexastack/slackbridge/internal/channel"
	"github.com/hexastack/slackbridge/internal/core"
	"github.com/hexastack/slackbridge/internal/gateway"
	"github.com/hexastack/slackbridge/pkg/message"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Slack{})
}

// Compile-time interface guards.
var (
	_ channel.Channel   = (*Slack)(nil)
	_ core.Configurable = (*Slack)(nil)
	_ core.Provisioner  = (*Slack)(nil)
	_ core.Validator    = (*Slack)(nil)
	_ core.Starter      = (*Slack)(nil)
	_ core.Stopper      = (*Slack)(nil)
	_ core.Reloader     = (*Slack)(nil)
)

// authorizable is the optional store capability used to inject the bot
// token into attachment downloads.
type authorizable interface {
	SetAuthorizer(fn func(*http.Request))
}

// Slack implements the Slack channel for slackbridge.
type Slack struct {
	config    Config
	secrets   *secretStore
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	inbox     func(message.Event) error
	appCtx    *core.AppContext
	identity  *AuthTestResponse

	// Set during Start().
	metrics         *gateway.Metrics
	processor       *processor
	webhookReceiver *WebhookReceiver
	socketClient    *SocketClient
}

// ModuleInfo implements core.Module.
func (s *Slack) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.slack",
		New: func() core.Module { return &Slack{} },
	}
}

func (s *Slack) channelName() string {
	return string(s.ModuleInfo().ID)
}

// Configure implements core.Configurable.
func (s *Slack) Configure(node *yaml.Node) error {
	if err := node.Decode(&s.config); err != nil {
		return fmt.Errorf("slack: decode config: %w", err)
	}
	s.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (s *Slack) Provision(ctx *core.AppContext) error {
	s.config.defaults()
	s.appCtx = ctx
	s.logger = ctx.Logger
	s.secrets = newSecretStore(s.config.BotToken, s.config.AppToken, s.config.SigningSecret)
	s.client = NewClient(s.secrets.BotToken, s.secrets.AppToken, s.config.APIURL)
	s.allowList = channel.NewAllowList(s.config.AllowUsers, s.config.AllowChats)
	return nil
}

// Validate implements core.Validator.
func (s *Slack) Validate() error {
	if s.config.BotToken == "" {
		return errors.New("slack: bot_token is required")
	}
	switch s.config.Mode {
	case "webhook":
		if s.config.SigningSecret == "" {
			return errors.New("slack: signing_secret is required when mode is \"webhook\"")
		}
	case "socket":
		if s.config.AppToken == "" {
			return errors.New("slack: app_token is required when mode is \"socket\"")
		}
	default:
		return fmt.Errorf("slack: invalid mode %q (must be \"webhook\" or \"socket\")", s.config.Mode)
	}
	return s.config.validate()
}

// Start implements core.Starter. It validates the bot token, resolves
// collaborating services, and begins receiving events in the configured
// mode.
func (s *Slack) Start() error {
	if s.inbox == nil {
		return errors.New("slack: inbox not set, call SetInbox before Start")
	}

	identity, err := s.client.AuthTest(context.Background())
	if err != nil {
		return fmt.Errorf("slack: auth.test failed (check bot_token): %w", err)
	}
	s.identity = identity
	s.logger.Info("slack bot authenticated",
		"team", identity.Team,
		"user", identity.User,
		"bot_id", identity.BotID,
	)

	if svc, ok := s.appCtx.Service("gateway.metrics"); ok {
		if m, ok := svc.(*gateway.Metrics); ok {
			s.metrics = m
		}
	}

	s.processor = &processor{
		normalizer:  NewNormalizer(s.channelName(), s.config.QuickReplyBlockID, s.config.SummarizeAllFiles),
		prefetcher:  s.resolvePrefetcher(),
		allowList:   s.allowList,
		inbox:       s.inbox,
		metrics:     s.metrics,
		logger:      s.logger,
		channelName: s.channelName(),
	}

	switch s.config.Mode {
	case "webhook":
		s.webhookReceiver = NewWebhookReceiver(
			NewAuthenticator(s.secrets.SigningSecret, s.config.MaxSkew),
			s.processor, s.metrics, s.logger,
		)
		if err := s.registerWebhook(); err != nil {
			return err
		}
		s.logger.Info("slack webhook receiver registered")

	case "socket":
		s.socketClient = NewSocketClient(s.client, s.processor, s.logger)
		s.socketClient.Start()
		s.logger.Info("slack socket mode started")
	}

	return nil
}

// resolvePrefetcher wires the attachment store when one is loaded. The
// store gets an authorizer that reads the current bot token on every
// download, so a rotated token takes effect immediately.
func (s *Slack) resolvePrefetcher() *Prefetcher {
	svc, ok := s.appCtx.Service("attachment.store")
	if !ok {
		s.logger.Warn("attachment.store service not found, file events will keep transient URLs")
		return nil
	}

	store, ok := svc.(attachment.Store)
	if !ok {
		s.logger.Warn("attachment.store service has unexpected type, prefetch disabled")
		return nil
	}

	if auth, ok := store.(authorizable); ok {
		auth.SetAuthorizer(func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+s.secrets.BotToken())
		})
	}

	return NewPrefetcher(store, s.config.FetchTimeout, s.logger)
}

// registerWebhook resolves the gateway webhook dispatcher from the
// service registry and registers the WebhookReceiver as a handler.
func (s *Slack) registerWebhook() error {
	svc, ok := s.appCtx.Service("gateway.webhook_dispatcher")
	if !ok {
		return errors.New("slack: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}

	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("slack: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}

	// Pass an empty HMAC secret: Slack signs with its own v0 timestamp
	// scheme, verified inside WebhookReceiver over the raw body bytes.
	dispatcher.Register("slack", s.webhookReceiver, "")
	return nil
}

// Stop implements core.Stopper.
func (s *Slack) Stop(_ context.Context) error {
	s.logger.Info("slack channel stopping")
	if s.socketClient != nil {
		s.socketClient.Stop()
	}
	return nil
}

// Reload implements core.Reloader. It re-reads the module config and
// swaps the rotatable credentials; the authenticator, API client, and
// attachment authorizer read them through the secret store, so in-flight
// and future requests pick up the new values without a restart.
func (s *Slack) Reload(ctx *core.AppContext) error {
	node, ok := ctx.ModuleConfig(string(s.ModuleInfo().ID))
	if !ok {
		return nil
	}

	var cfg Config
	if err := node.Decode(&cfg); err != nil {
		return fmt.Errorf("slack: decode reloaded config: %w", err)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return err
	}

	s.secrets.update(cfg.BotToken, cfg.AppToken, cfg.SigningSecret)
	s.logger.Info("slack credentials reloaded")
	return nil
}

// Send implements channel.Channel.
func (s *Slack) Send(ctx context.Context, msg message.OutboundMessage) error {
	return s.sendOutbound(ctx, msg)
}

// SetInbox implements channel.Channel.
func (s *Slack) SetInbox(fn func(ev message.Event) error) {
	s.inbox = fn
}
