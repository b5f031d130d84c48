package model

import (
	"time"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// UnreadSnapshotModel is the GORM model for the persisted unread count.
type UnreadSnapshotModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Count     int       `gorm:"column:count;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (UnreadSnapshotModel) TableName() string {
	return "unread_snapshot"
}

// ToDomain converts the model to a domain entity.
func (m *UnreadSnapshotModel) ToDomain() (*entity.UnreadSnapshot, error) {
	if m == nil {
		return nil, nil
	}

	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, err
	}

	return &entity.UnreadSnapshot{
		UserID:    userID,
		Count:     m.Count,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// FromUnreadDomain converts a domain entity to the persistence model.
func FromUnreadDomain(data *entity.UnreadSnapshot) *UnreadSnapshotModel {
	if data == nil {
		return nil
	}

	return &UnreadSnapshotModel{
		UserID:    data.UserID.String(),
		Count:     data.Count,
		UpdatedAt: data.UpdatedAt,
	}
}
