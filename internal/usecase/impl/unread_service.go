package impl

import (
	"context"
	"log/slog"
	"sync"

	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

type unreadService struct {
	repo   repository.UnreadRepository
	logger *slog.Logger

	mu     sync.Mutex
	userID uuid.UUID
	bound  bool
	count  int
}

// NewUnreadService creates a new unread counter instance.
func NewUnreadService(repo repository.UnreadRepository, logger *slog.Logger) usecase.UnreadUsecase {
	return &unreadService{
		repo:   repo,
		logger: logger,
	}
}

// Bind attaches the counter to a user and seeds it from the locally
// persisted snapshot. The authoritative resync follows separately.
func (s *unreadService) Bind(ctx context.Context, userID uuid.UUID) error {
	seed := 0
	snapshot, err := s.repo.GetSnapshot(ctx, userID)
	switch {
	case err == nil:
		seed = snapshot.Count
	case errors.Is(err, repository.ErrSnapshotNotFound):
		// First session for this user on this install.
	default:
		s.logger.Warn("failed to load unread snapshot", slog.Any("error", err))
	}
	if seed < 0 {
		seed = 0
	}

	s.mu.Lock()
	s.userID = userID
	s.bound = true
	s.count = seed
	s.mu.Unlock()

	return nil
}

// Increment adds one unseen message.
func (s *unreadService) Increment(ctx context.Context) {
	s.mu.Lock()
	s.count++
	count := s.count
	userID := s.userID
	bound := s.bound
	s.mu.Unlock()

	if bound {
		s.persist(ctx, userID, count)
	}
}

// Set overwrites the count from an authoritative source.
func (s *unreadService) Set(ctx context.Context, count int) {
	if count < 0 {
		count = 0
	}

	s.mu.Lock()
	s.count = count
	userID := s.userID
	bound := s.bound
	s.mu.Unlock()

	if bound {
		s.persist(ctx, userID, count)
	}
}

// Value returns the current count.
func (s *unreadService) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count
}

// persist stores the snapshot best effort; a lost write only costs the
// pre-resync seed of a future session.
func (s *unreadService) persist(ctx context.Context, userID uuid.UUID, count int) {
	snapshot := &entity.UnreadSnapshot{
		UserID: userID,
		Count:  count,
	}
	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Warn("failed to persist unread snapshot", slog.Any("error", err))
	}
}
