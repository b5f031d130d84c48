package usecase

import (
	"context"
)

// RegistrationStatus is a read-only snapshot of the coordinator for
// observability. Producing it never mutates state.
type RegistrationStatus struct {
	DeviceID       string `json:"device_id"`
	Attempts       int    `json:"attempts"`
	MaxRetries     int    `json:"max_retries"`
	IsInitializing bool   `json:"is_initializing"`
	InCooldown     bool   `json:"in_cooldown"`
	ReachedLimit   bool   `json:"reached_limit"`
	NextRetryInMS  int64  `json:"next_retry_in_ms"`
}

// RegistrationUsecase drives the retry/backoff state machine that
// registers the device with the remote push-token registry.
type RegistrationUsecase interface {
	// Initialize runs one registration attempt. It returns false without
	// side effects when an attempt is already in flight, the cooldown has
	// not elapsed, or the retry limit is reached — unless forceRetry
	// bypasses those guards for exactly this call. Failure bookkeeping
	// (attempt count, cooldown scheduling, limit handling) applies either
	// way.
	Initialize(ctx context.Context, forceRetry bool) (bool, error)

	// ForceReset clears the attempt count, cancels pending retry and
	// reset timers, and returns the machine to idle.
	ForceReset(ctx context.Context) error

	// Status reports the current machine state without mutating it.
	Status(ctx context.Context) (*RegistrationStatus, error)
}
