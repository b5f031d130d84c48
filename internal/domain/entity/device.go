// Package entity contains the core business objects of the project.
package entity

import (
	"time"
)

// RegistrationState describes where the device sits in the push
// registration lifecycle.
type RegistrationState string

const (
	// RegistrationIdle means no registration attempt is in flight or pending.
	RegistrationIdle RegistrationState = "idle"
	// RegistrationInFlight means a registration attempt is currently running.
	RegistrationInFlight RegistrationState = "registering"
	// RegistrationCooldown means the last attempt failed and automatic
	// retries are suppressed until the backoff window elapses.
	RegistrationCooldown RegistrationState = "cooldown"
	// RegistrationLimitReached means the retry budget is exhausted; only a
	// long reset or an explicit user action can restart registration.
	RegistrationLimitReached RegistrationState = "limit_reached"
)

// DeviceRecord represents the per-install device identity and its
// registration bookkeeping. Exactly one record exists per installed
// instance; it is created lazily on the first registration attempt and
// only ever reset, never deleted.
type DeviceRecord struct {
	DeviceID      string            `json:"device_id"`       // Stable per-install identifier (UUID v4).
	Platform      string            `json:"platform"`        // Device platform (ios, android).
	Attempts      int               `json:"attempts"`        // Consecutive failed registration attempts.
	LastAttemptAt *time.Time        `json:"last_attempt_at"` // Timestamp of the most recent attempt, nil before the first.
	State         RegistrationState `json:"state"`           // Current registration lifecycle state.
	CreatedAt     time.Time         `json:"created_at"`      // Timestamp of when this record was created.
	UpdatedAt     time.Time         `json:"updated_at"`      // Timestamp of the last modification.
}
