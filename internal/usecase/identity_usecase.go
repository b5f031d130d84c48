// Package usecase defines the application service interfaces of the
// notification coordination core.
package usecase

import (
	"context"
)

// IdentityUsecase produces the stable per-install device identifier.
type IdentityUsecase interface {
	// GetOrCreateDeviceID reads the persisted identifier, generating and
	// persisting a fresh UUID v4 on first use. Idempotent across calls
	// and process restarts. Storage failure is fatal for registration.
	GetOrCreateDeviceID(ctx context.Context) (string, error)
}
