// Package service defines the collaborator ports the notification core
// depends on. Concrete implementations live under internal/infra.
package service

import (
	"context"
)

// TokenRegistry is the remote push-token registry. Register is an
// idempotent upsert keyed by (user, token) on the backend side.
type TokenRegistry interface {
	Register(ctx context.Context, deviceID, platform, token string) error
}
