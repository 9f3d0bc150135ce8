package slack

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIURL        = "https://slack.com/api"
	defaultMaxSkew       = 5 * time.Minute
	defaultMaxMessageLen = 40000
	defaultFetchTimeout  = 10 * time.Second

	// quickReplyBlockID tags outgoing prompts whose button presses should
	// classify as quick replies rather than generic postbacks.
	defaultQuickReplyBlockID = "quick_replies"
)

// Config holds the Slack channel configuration.
type Config struct {
	// BotToken is the xoxb- token used for Web API calls and file downloads.
	BotToken string `yaml:"bot_token"`

	// AppToken is the xapp- token used to open Socket Mode connections.
	// Required only when mode is "socket".
	AppToken string `yaml:"app_token"`

	// SigningSecret verifies inbound webhook signatures.
	// Required only when mode is "webhook".
	SigningSecret string `yaml:"signing_secret"`

	// Mode selects how events arrive: "webhook" (Events API over the HTTP
	// gateway) or "socket" (Socket Mode over WebSocket).
	Mode string `yaml:"mode"`

	// MaxSkew is the maximum allowed age of a signed request before it is
	// rejected as a replay. Defaults to 5m.
	MaxSkew time.Duration `yaml:"max_skew"`

	AllowUsers []string `yaml:"allow_users"`
	AllowChats []string `yaml:"allow_chats"`

	// MaxMessageLength caps outbound message size before chunking.
	MaxMessageLength int `yaml:"max_message_length"`

	// SummarizeAllFiles lists every file in the text summary of a
	// multi-file event instead of only the first one.
	SummarizeAllFiles bool `yaml:"summarize_all_files"`

	// QuickReplyBlockID is the block_id marker carried on outgoing
	// quick-reply prompts.
	QuickReplyBlockID string `yaml:"quick_reply_block_id"`

	// FetchTimeout bounds attachment prefetch for a single event.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	APIURL string `yaml:"api_url"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = "webhook"
	}
	if c.MaxSkew <= 0 {
		c.MaxSkew = defaultMaxSkew
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = defaultMaxMessageLen
	}
	if c.QuickReplyBlockID == "" {
		c.QuickReplyBlockID = defaultQuickReplyBlockID
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
}

// validate checks configuration field constraints beyond basic presence
// checks. It is called from Slack.Validate after defaults have been applied.
func (c *Config) validate() error {
	if c.BotToken != "" && !strings.HasPrefix(c.BotToken, "xoxb-") {
		return fmt.Errorf("slack: bot_token format invalid (expected xoxb- prefix)")
	}
	if c.AppToken != "" && !strings.HasPrefix(c.AppToken, "xapp-") {
		return fmt.Errorf("slack: app_token format invalid (expected xapp- prefix)")
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("slack: api_url must be a valid http/https URL, got %q", c.APIURL)
		}
	}

	if c.MaxMessageLength < 1 || c.MaxMessageLength > defaultMaxMessageLen {
		return fmt.Errorf("slack: max_message_length must be 1-%d, got %d", defaultMaxMessageLen, c.MaxMessageLength)
	}

	if c.MaxSkew < time.Second || c.MaxSkew > time.Hour {
		return fmt.Errorf("slack: max_skew must be 1s-1h, got %s", c.MaxSkew)
	}

	return nil
}
