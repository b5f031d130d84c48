package appstate

import (
	"context"
	"sync"

	"beacon/internal/domain/service"
)

// PermissionStore holds the platform notification permission state as
// reported by the host. Only the host can actually raise the system
// dialog, so Request resolves against the latest reported state and
// treats an unanswered prompt as a denial for the current attempt.
type PermissionStore struct {
	mu     sync.RWMutex
	status service.PermissionStatus
}

var _ service.PermissionGateway = (*PermissionStore)(nil)

// NewPermissionStore creates a store in the undetermined state.
func NewPermissionStore() *PermissionStore {
	return &PermissionStore{status: service.PermissionUndetermined}
}

// NewPermissionGateway exposes the store as a PermissionGateway.
func NewPermissionGateway(s *PermissionStore) service.PermissionGateway {
	return s
}

// Status returns the last reported permission state.
func (s *PermissionStore) Status(_ context.Context) (service.PermissionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status, nil
}

// Request resolves the pending prompt against the reported state.
func (s *PermissionStore) Request(_ context.Context) (service.PermissionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == service.PermissionGranted {
		return service.PermissionGranted, nil
	}

	return service.PermissionDenied, nil
}

// SetStatus records the permission state reported by the host.
func (s *PermissionStore) SetStatus(status service.PermissionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}
