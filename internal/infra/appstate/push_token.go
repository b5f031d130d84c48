package appstate

import (
	"context"
	"sync"

	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"
)

// PushTokenStore holds the platform push token handed over by the host.
// It satisfies the read-only PushTokenSource port.
type PushTokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ service.PushTokenSource = (*PushTokenStore)(nil)

// NewPushTokenStore creates an empty token store.
func NewPushTokenStore() *PushTokenStore {
	return &PushTokenStore{}
}

// NewPushTokenSource exposes the store as a PushTokenSource.
func NewPushTokenSource(s *PushTokenStore) service.PushTokenSource {
	return s
}

// CurrentToken returns the stored token. An empty store is a transient
// condition; registration retries once the host supplies a token.
func (s *PushTokenStore) CurrentToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", domainerrors.ErrPushTokenMissing
	}

	return s.token, nil
}

// Set stores the token reported by the host.
func (s *PushTokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}
