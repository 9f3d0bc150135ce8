package http

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxReplies = 10
)

// Config holds the pipeline.http module configuration.
type Config struct {
	// URL is the bot engine endpoint events are POSTed to.
	URL string `yaml:"url"`

	// Token, when set, is sent as a bearer token on every request.
	Token string `yaml:"token,omitempty"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxReplies caps how many replies a single engine response may
	// carry. Extra replies are dropped with a warning.
	MaxReplies int `yaml:"max_replies,omitempty"`
}

func (c *Config) defaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxReplies == 0 {
		c.MaxReplies = defaultMaxReplies
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("pipeline.http: url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("pipeline.http: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("pipeline.http: url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Timeout < 0 {
		return errors.New("pipeline.http: timeout must not be negative")
	}
	return nil
}
