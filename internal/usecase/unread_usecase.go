package usecase

import (
	"context"

	"github.com/google/uuid"
)

// UnreadUsecase maintains the authoritative unread message counter for
// the signed-in user. The count never goes negative and has no decrement
// operation; mark-as-read is the backend's concern and arrives as a Set.
type UnreadUsecase interface {
	// Bind attaches the counter to a user and seeds it from the locally
	// persisted snapshot.
	Bind(ctx context.Context, userID uuid.UUID) error

	// Increment adds one unseen message.
	Increment(ctx context.Context)

	// Set overwrites the count from an authoritative source, clamping
	// negative values to zero.
	Set(ctx context.Context, count int)

	// Value returns the current count.
	Value() int
}
