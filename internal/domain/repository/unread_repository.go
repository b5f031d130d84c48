package repository

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/errors"

	"github.com/google/uuid"
)

// ErrSnapshotNotFound is returned when no unread snapshot has been stored
// for the user.
var ErrSnapshotNotFound = errors.New("unread snapshot not found")

// UnreadRepository persists the last-known unread count per user so a new
// session can seed the counter before the authoritative source answers.
type UnreadRepository interface {
	GetSnapshot(ctx context.Context, userID uuid.UUID) (*entity.UnreadSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *entity.UnreadSnapshot) error
}
