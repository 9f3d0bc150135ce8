// Package security provides log redaction for the credentials this
// service handles: bot tokens, app tokens, and signing secrets must
// never appear in log output.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// Redactor replaces secret values in strings with a redaction
// placeholder. It matches both known token formats by pattern and
// literal values registered at runtime (signing secrets have no
// recognizable shape). All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with patterns for the token
// formats Slack issues.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: defaultPatterns(),
	}
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value that should be redacted on
// sight, such as a signing secret or an engine token. Empty strings are
// ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces every known token shape and registered literal in s
// with RedactPlaceholder. Literals run after patterns so a signing
// secret that happens to look like a token is still caught.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	for _, lit := range literals {
		s = strings.ReplaceAll(s, lit, RedactPlaceholder)
	}
	return s
}

// defaultPatterns covers the token formats this service touches: Slack
// bot, app-level, and user tokens, plus bare bearer credentials in
// header dumps.
func defaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Slack bot token
		regexp.MustCompile(`xoxb-[0-9A-Za-z\-]+`),
		// Slack app-level token (Socket Mode)
		regexp.MustCompile(`xapp-[0-9A-Za-z\-]+`),
		// Slack user token
		regexp.MustCompile(`xoxp-[0-9A-Za-z\-]+`),
		// Authorization header values
		regexp.MustCompile(`Bearer\s+[0-9A-Za-z\-._~+/]+=*`),
	}
}
