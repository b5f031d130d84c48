// Package model contains the GORM persistence models and keeps schema
// concerns out of the domain entities.
package model

import (
	"time"

	"beacon/internal/domain/entity"
)

// DeviceRecordModel is the GORM model for the per-install device record.
type DeviceRecordModel struct {
	DeviceID      string     `gorm:"column:device_id;primaryKey"`
	Platform      string     `gorm:"column:platform;not null"`
	Attempts      int        `gorm:"column:attempts;not null;default:0"`
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at"`
	State         string     `gorm:"column:state;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (DeviceRecordModel) TableName() string {
	return "device_record"
}

// ToDomain converts the model to a domain entity.
func (m *DeviceRecordModel) ToDomain() *entity.DeviceRecord {
	if m == nil {
		return nil
	}

	return &entity.DeviceRecord{
		DeviceID:      m.DeviceID,
		Platform:      m.Platform,
		Attempts:      m.Attempts,
		LastAttemptAt: m.LastAttemptAt,
		State:         entity.RegistrationState(m.State),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDeviceDomain converts a domain entity to the persistence model.
func FromDeviceDomain(data *entity.DeviceRecord) *DeviceRecordModel {
	if data == nil {
		return nil
	}

	return &DeviceRecordModel{
		DeviceID:      data.DeviceID,
		Platform:      data.Platform,
		Attempts:      data.Attempts,
		LastAttemptAt: data.LastAttemptAt,
		State:         string(data.State),
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
