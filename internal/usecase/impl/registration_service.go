package impl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/errors"
	"beacon/internal/usecase"
)

// Scheduler task ids owned by the registration coordinator.
const (
	taskRegistrationRetry = "registration.retry"
	taskRegistrationReset = "registration.reset"
)

// registrationService is the retry/backoff state machine around the
// push-token registry. Exponential backoff bounds request volume under
// persistent failure; the hard retry limit plus a long reset keeps
// resource use finite while leaving the user a predictable recovery path.
type registrationService struct {
	cfg         config.RegistrationConfig
	platform    string
	identity    usecase.IdentityUsecase
	deviceRepo  repository.DeviceRepository
	registry    service.TokenRegistry
	permissions service.PermissionGateway
	tokens      service.PushTokenSource
	sched       service.Scheduler
	logger      *slog.Logger
	now         func() time.Time

	denialSurfaced atomic.Bool

	mu             sync.Mutex
	state          entity.RegistrationState
	attempts       int
	lastAttemptAt  time.Time
	resetAt        time.Time
	resetScheduled bool
	deviceID       string
}

// NewRegistrationService creates a new registration coordinator instance.
func NewRegistrationService(
	cfg *config.Config,
	identity usecase.IdentityUsecase,
	deviceRepo repository.DeviceRepository,
	registry service.TokenRegistry,
	permissions service.PermissionGateway,
	tokens service.PushTokenSource,
	scheduler service.Scheduler,
	logger *slog.Logger,
) usecase.RegistrationUsecase {
	return &registrationService{
		cfg:         cfg.Registration,
		platform:    cfg.Registry.Platform,
		identity:    identity,
		deviceRepo:  deviceRepo,
		registry:    registry,
		permissions: permissions,
		tokens:      tokens,
		sched:       scheduler,
		logger:      logger,
		now:         time.Now,
		state:       entity.RegistrationIdle,
	}
}

// cooldown returns the backoff window after the given number of failed
// attempts: backoffBase * 2^min(attempts, capExponent).
func (s *registrationService) cooldown(attempts int) time.Duration {
	exp := attempts
	if exp > s.cfg.BackoffCapExponent {
		exp = s.cfg.BackoffCapExponent
	}

	return s.cfg.BackoffBase * (1 << exp)
}

// Initialize runs one registration attempt, honoring the concurrency,
// cooldown, and retry-limit guards unless forceRetry bypasses them.
func (s *registrationService) Initialize(ctx context.Context, forceRetry bool) (bool, error) {
	s.mu.Lock()
	now := s.now()

	switch {
	case s.state == entity.RegistrationInFlight && !forceRetry:
		s.mu.Unlock()
		s.logger.Debug("registration already in flight, ignoring")

		return false, nil

	case s.state == entity.RegistrationCooldown && !forceRetry:
		remaining := s.cooldown(s.attempts) - now.Sub(s.lastAttemptAt)
		if remaining > 0 {
			s.mu.Unlock()
			s.logger.Debug("registration in cooldown",
				slog.Duration("remaining", remaining),
			)

			return false, nil
		}

	case s.state == entity.RegistrationLimitReached && !forceRetry:
		if !s.resetScheduled {
			s.scheduleLongResetLocked()
		}
		s.mu.Unlock()
		s.logger.Debug("registration retry limit reached, waiting for reset")

		return false, domainerrors.ErrRetryLimitExceeded
	}

	s.state = entity.RegistrationInFlight
	s.mu.Unlock()

	attemptErr := s.attempt(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if attemptErr == nil {
		s.attempts = 0
		s.state = entity.RegistrationIdle
		s.persistLocked(ctx)
		s.logger.Info("device registration succeeded")

		return true, nil
	}

	s.attempts++
	s.lastAttemptAt = s.now()

	if s.attempts < s.cfg.MaxRetries {
		s.state = entity.RegistrationCooldown
		delay := s.cooldown(s.attempts)
		s.sched.Schedule(taskRegistrationRetry, delay, func() {
			_, _ = s.Initialize(context.Background(), false)
		})
		s.logger.Warn("registration attempt failed, backing off",
			slog.Int("attempts", s.attempts),
			slog.Duration("retry_in", delay),
			slog.Any("error", attemptErr),
		)
	} else {
		s.state = entity.RegistrationLimitReached
		s.scheduleLongResetLocked()
		s.logger.Warn("registration retry limit reached",
			slog.Int("attempts", s.attempts),
			slog.Any("error", attemptErr),
		)
	}
	s.persistLocked(ctx)

	return false, attemptErr
}

// attempt performs one end-to-end registration: identity, permission,
// token, registry upsert.
func (s *registrationService) attempt(ctx context.Context) error {
	deviceID, err := s.identity.GetOrCreateDeviceID(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.deviceID = deviceID
	s.mu.Unlock()

	status, err := s.permissions.Status(ctx)
	if err != nil {
		return errors.Wrap(err, "read permission status")
	}
	if status == service.PermissionUndetermined {
		status, err = s.permissions.Request(ctx)
		if err != nil {
			return errors.Wrap(err, "request permission")
		}
	}
	if status != service.PermissionGranted {
		if s.denialSurfaced.CompareAndSwap(false, true) {
			s.logger.Warn("notification permission denied",
				slog.String("hint", domainerrors.ErrPermissionDenied.Details()),
			)
		}

		return domainerrors.ErrPermissionDenied
	}

	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		return err
	}

	return s.registry.Register(ctx, deviceID, s.platform, token)
}

// scheduleLongResetLocked arms the one-shot timer that restores the
// retry budget and re-runs initialization. Caller holds s.mu.
func (s *registrationService) scheduleLongResetLocked() {
	s.resetScheduled = true
	s.resetAt = s.now().Add(s.cfg.LongResetDelay)

	s.sched.Schedule(taskRegistrationReset, s.cfg.LongResetDelay, func() {
		s.mu.Lock()
		s.attempts = 0
		s.state = entity.RegistrationIdle
		s.resetScheduled = false
		s.persistLocked(context.Background())
		s.mu.Unlock()

		s.logger.Info("registration retry budget restored")
		_, _ = s.Initialize(context.Background(), false)
	})
}

// ForceReset clears the attempt count, cancels pending timers, and
// returns the machine to idle.
func (s *registrationService) ForceReset(ctx context.Context) error {
	s.sched.Cancel(taskRegistrationRetry)
	s.sched.Cancel(taskRegistrationReset)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = 0
	s.state = entity.RegistrationIdle
	s.resetScheduled = false
	s.denialSurfaced.Store(false)
	s.persistLocked(ctx)

	s.logger.Info("registration state reset")

	return nil
}

// Status reports the current machine state without mutating it.
func (s *registrationService) Status(ctx context.Context) (*usecase.RegistrationStatus, error) {
	s.mu.Lock()
	state := s.state
	attempts := s.attempts
	lastAttemptAt := s.lastAttemptAt
	resetAt := s.resetAt
	deviceID := s.deviceID
	s.mu.Unlock()

	if deviceID == "" {
		// Read-only: look at the stored record without creating one.
		if device, err := s.deviceRepo.GetDevice(ctx); err == nil {
			deviceID = device.DeviceID
		}
	}

	status := &usecase.RegistrationStatus{
		DeviceID:       deviceID,
		Attempts:       attempts,
		MaxRetries:     s.cfg.MaxRetries,
		IsInitializing: state == entity.RegistrationInFlight,
		InCooldown:     state == entity.RegistrationCooldown,
		ReachedLimit:   state == entity.RegistrationLimitReached,
	}

	now := s.now()
	switch state {
	case entity.RegistrationCooldown:
		if remaining := s.cooldown(attempts) - now.Sub(lastAttemptAt); remaining > 0 {
			status.NextRetryInMS = remaining.Milliseconds()
		}
	case entity.RegistrationLimitReached:
		if remaining := resetAt.Sub(now); remaining > 0 {
			status.NextRetryInMS = remaining.Milliseconds()
		}
	}

	return status, nil
}

// persistLocked writes the current machine state to the device record.
// Best effort: losing a snapshot only degrades observability after a
// restart. Caller holds s.mu.
func (s *registrationService) persistLocked(ctx context.Context) {
	if s.deviceID == "" {
		return
	}

	record := &entity.DeviceRecord{
		DeviceID: s.deviceID,
		Platform: s.platform,
		Attempts: s.attempts,
		State:    s.state,
	}
	if !s.lastAttemptAt.IsZero() {
		at := s.lastAttemptAt
		record.LastAttemptAt = &at
	}

	if err := s.deviceRepo.SaveDevice(ctx, record); err != nil {
		s.logger.Warn("failed to persist registration state", slog.Any("error", err))
	}
}
