package repository

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileRepository resolves display metadata for a message sender.
type ProfileRepository interface {
	GetDisplayInfo(ctx context.Context, userID uuid.UUID) (*entity.SenderProfile, error)
}
