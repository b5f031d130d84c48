// Package repository defines the persistence and lookup ports consumed
// by the usecase layer.
package repository

import (
	"context"

	"beacon/internal/domain/entity"
	"beacon/internal/errors"
)

// ErrDeviceNotFound is returned when no device record has been persisted yet.
var ErrDeviceNotFound = errors.New("device record not found")

// DeviceRepository persists the single per-install device record.
type DeviceRepository interface {
	// GetDevice returns the persisted device record, or ErrDeviceNotFound
	// if none exists yet.
	GetDevice(ctx context.Context) (*entity.DeviceRecord, error)

	// SaveDevice creates or updates the device record.
	SaveDevice(ctx context.Context, device *entity.DeviceRecord) error
}
