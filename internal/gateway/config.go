package gateway

import "time"

// Config holds the HTTP gateway settings. The bind default is loopback:
// Slack's webhook traffic is expected to arrive through a reverse proxy
// or tunnel that terminates TLS, never on a directly exposed port.
type Config struct {
	Bind            string                      `yaml:"bind"`
	Auth            AuthConfig                  `yaml:"auth"`
	Webhooks        map[string]WebhookSourceCfg `yaml:"webhooks"`
	ReadTimeout     time.Duration               `yaml:"read_timeout"`
	WriteTimeout    time.Duration               `yaml:"write_timeout"`
	ShutdownTimeout time.Duration               `yaml:"shutdown_timeout"`
}

const (
	defaultBind            = "127.0.0.1:8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = defaultBind
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
}

// AuthConfig guards the admin endpoints (status, module listing, config
// reload). With neither method set the admin routes are not mounted.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured reports whether any admin auth method is set.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

// WebhookSourceCfg configures one webhook source. Secret turns on the
// generic X-Signature-256 check for sources without their own signing
// scheme; the Slack source leaves it empty and verifies v0 signatures
// in its handler instead.
type WebhookSourceCfg struct {
	Secret string `yaml:"secret"`
}
