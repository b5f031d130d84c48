package service

import (
	"context"
)

// PermissionStatus is the platform notification permission state.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// PermissionGateway exposes the platform notification permission dialog.
type PermissionGateway interface {
	// Status returns the current permission state without prompting.
	Status(ctx context.Context) (PermissionStatus, error)

	// Request prompts the user and returns the resulting state. The
	// platform never answers "undetermined" after a prompt.
	Request(ctx context.Context) (PermissionStatus, error)
}

// PushTokenSource supplies the current platform push token. The token is
// produced by the host platform and handed to the core out of band.
type PushTokenSource interface {
	CurrentToken(ctx context.Context) (string, error)
}
