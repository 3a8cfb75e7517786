package service

import (
	"log/slog"
	"sync"

	apperrors "kodechat/internal/errors"
	"kodechat/internal/llm"
)

// Session holds the per-session client configuration. Credentials are
// supplied once per session; until then every pipeline operation is blocked
// with ErrMissingCredentials.
type Session struct {
	mu             sync.RWMutex
	client         llm.CompletionClient
	defaultBaseURL string
}

// NewSession builds an unconfigured session. defaultBaseURL is used when
// Configure is called without an explicit base URL override.
func NewSession(defaultBaseURL string) *Session {
	return &Session{defaultBaseURL: defaultBaseURL}
}

// Configure builds and installs the completion client for this session.
// An empty baseURL falls back to the configured default. Reconfiguring
// replaces the previous client.
func (s *Session) Configure(apiKey, baseURL string) error {
	if baseURL == "" {
		baseURL = s.defaultBaseURL
	}
	client, err := llm.New(apiKey, baseURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	slog.Info("Session credentials configured", "base_url", baseURL)
	return nil
}

// Client returns the configured completion client, or ErrMissingCredentials
// if none has been supplied yet.
func (s *Session) Client() (llm.CompletionClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, apperrors.ErrMissingCredentials
	}
	return s.client, nil
}

// Configured reports whether credentials have been supplied.
func (s *Session) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}
