package usecase

import (
	"context"

	"github.com/google/uuid"
)

// SessionUsecase orchestrates the per-sign-in lifecycle: device
// registration kickoff, feed subscription, and unread seeding. At most
// one session is active; starting a new one ends the previous.
type SessionUsecase interface {
	Start(ctx context.Context, userID uuid.UUID) error
	End(ctx context.Context) error

	// Active returns the signed-in user, if any.
	Active() (uuid.UUID, bool)
}
