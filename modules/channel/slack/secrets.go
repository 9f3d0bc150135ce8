package slack

import "sync"

// secretStore holds the rotatable credentials behind a lock so a config
// reload can swap them while the authenticator and clients keep reading
// the current value instead of one captured at construction.
type secretStore struct {
	mu            sync.RWMutex
	botToken      string
	appToken      string
	signingSecret string
}

func newSecretStore(botToken, appToken, signingSecret string) *secretStore {
	return &secretStore{
		botToken:      botToken,
		appToken:      appToken,
		signingSecret: signingSecret,
	}
}

func (s *secretStore) update(botToken, appToken, signingSecret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.botToken = botToken
	s.appToken = appToken
	s.signingSecret = signingSecret
}

func (s *secretStore) BotToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botToken
}

func (s *secretStore) AppToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appToken
}

func (s *secretStore) SigningSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signingSecret
}
