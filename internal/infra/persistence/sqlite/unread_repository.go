package sqlite

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unreadRepository implements the repository.UnreadRepository interface.
type unreadRepository struct {
	db *gorm.DB
}

// NewUnreadRepository is the constructor for unreadRepository.
func NewUnreadRepository(db *gorm.DB) repository.UnreadRepository {
	return &unreadRepository{
		db: db,
	}
}

// GetSnapshot returns the persisted unread count for a user.
func (repo *unreadRepository) GetSnapshot(ctx context.Context, userID uuid.UUID) (*entity.UnreadSnapshot, error) {
	var snapshotM model.UnreadSnapshotModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		First(&snapshotM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSnapshotNotFound
		}

		return nil, errors.Wrap(err, "failed to load unread snapshot")
	}

	snapshot, err := snapshotM.ToDomain()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode unread snapshot")
	}

	return snapshot, nil
}

// SaveSnapshot creates or updates the unread count for a user.
func (repo *unreadRepository) SaveSnapshot(ctx context.Context, snapshot *entity.UnreadSnapshot) error {
	snapshotM := model.FromUnreadDomain(snapshot)
	snapshotM.UpdatedAt = time.Now()

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(snapshotM).Error; err != nil {
		return domainerrors.NewStorageExecuteError(err, "failed to save unread snapshot")
	}

	return nil
}
