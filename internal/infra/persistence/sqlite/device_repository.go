package sqlite

import (
	"context"
	"time"

	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// deviceRepository implements the repository.DeviceRepository interface.
type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository is the constructor for deviceRepository.
func NewDeviceRepository(db *gorm.DB) repository.DeviceRepository {
	return &deviceRepository{
		db: db,
	}
}

// GetDevice returns the single per-install device record.
func (repo *deviceRepository) GetDevice(ctx context.Context) (*entity.DeviceRecord, error) {
	var deviceM model.DeviceRecordModel

	if err := repo.db.WithContext(ctx).
		First(&deviceM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeviceNotFound
		}

		return nil, errors.Wrap(err, "failed to load device record")
	}

	return deviceM.ToDomain(), nil
}

// SaveDevice creates or updates the device record.
func (repo *deviceRepository) SaveDevice(ctx context.Context, device *entity.DeviceRecord) error {
	deviceM := model.FromDeviceDomain(device)
	deviceM.UpdatedAt = time.Now()
	if deviceM.CreatedAt.IsZero() {
		deviceM.CreatedAt = deviceM.UpdatedAt
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(deviceM).Error; err != nil {
		return domainerrors.NewStorageExecuteError(err, "failed to save device record")
	}

	device.CreatedAt = deviceM.CreatedAt
	device.UpdatedAt = deviceM.UpdatedAt

	return nil
}
