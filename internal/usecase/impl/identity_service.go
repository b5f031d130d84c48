// Package impl contains the concrete application services of the
// notification coordination core.
package impl

import (
	"context"
	"sync"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

type identityService struct {
	deviceRepo repository.DeviceRepository
	platform   string

	mu     sync.Mutex
	cached string
}

// NewIdentityService creates a new identity service instance.
func NewIdentityService(cfg *config.Config, deviceRepo repository.DeviceRepository) usecase.IdentityUsecase {
	return &identityService{
		deviceRepo: deviceRepo,
		platform:   cfg.Registry.Platform,
	}
}

// GetOrCreateDeviceID returns the stable per-install identifier,
// generating and persisting one on first use.
func (s *identityService) GetOrCreateDeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	device, err := s.deviceRepo.GetDevice(ctx)
	if err == nil {
		s.cached = device.DeviceID

		return s.cached, nil
	}
	if !errors.Is(err, repository.ErrDeviceNotFound) {
		return "", domainerrors.ErrIdentityUnavailable.WrapMessage(err.Error())
	}

	device = &entity.DeviceRecord{
		DeviceID: uuid.New().String(),
		Platform: s.platform,
		State:    entity.RegistrationIdle,
	}
	if err := s.deviceRepo.SaveDevice(ctx, device); err != nil {
		return "", domainerrors.ErrIdentityUnavailable.WrapMessage(err.Error())
	}

	s.cached = device.DeviceID

	return s.cached, nil
}
