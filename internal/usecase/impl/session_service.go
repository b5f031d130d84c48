package impl

import (
	"context"
	"log/slog"
	"sync"

	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

type sessionService struct {
	registration usecase.RegistrationUsecase
	ingest       usecase.IngestUsecase
	unread       usecase.UnreadUsecase
	toasts       usecase.ToastUsecase
	logger       *slog.Logger

	mu     sync.Mutex
	active bool
	userID uuid.UUID
}

// NewSessionService creates a new session orchestrator instance.
func NewSessionService(
	registration usecase.RegistrationUsecase,
	ingest usecase.IngestUsecase,
	unread usecase.UnreadUsecase,
	toasts usecase.ToastUsecase,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		registration: registration,
		ingest:       ingest,
		unread:       unread,
		toasts:       toasts,
		logger:       logger,
	}
}

// Start begins a signed-in session: seed the counter, subscribe the
// feed, and kick off device registration in the background.
func (s *sessionService) Start(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	wasActive := s.active
	s.mu.Unlock()

	if wasActive {
		if err := s.End(ctx); err != nil {
			s.logger.Warn("failed to end previous session", slog.Any("error", err))
		}
	}

	if err := s.unread.Bind(ctx, userID); err != nil {
		return errors.Wrap(err, "bind unread counter")
	}

	if err := s.ingest.Start(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	s.active = true
	s.userID = userID
	s.mu.Unlock()

	// One-shot per launch; failures are retried by the coordinator's own
	// backoff, not by the session.
	go func() {
		if ok, err := s.registration.Initialize(context.Background(), false); err != nil {
			s.logger.Warn("device registration pending", slog.Any("error", err))
		} else if ok {
			s.logger.Debug("device registration completed at session start")
		}
	}()

	s.logger.Info("session started", slog.String("user_id", userID.String()))

	return nil
}

// End tears the session down: hide any toast and unsubscribe the feed.
func (s *sessionService) End(ctx context.Context) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()

		return domainerrors.ErrSessionNotActive
	}
	s.active = false
	userID := s.userID
	s.mu.Unlock()

	s.toasts.Dismiss(ctx)
	if err := s.ingest.Stop(ctx); err != nil {
		return err
	}

	s.logger.Info("session ended", slog.String("user_id", userID.String()))

	return nil
}

// Active returns the signed-in user, if any.
func (s *sessionService) Active() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userID, s.active
}
