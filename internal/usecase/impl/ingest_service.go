package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"
	"beacon/internal/errors"
	"beacon/internal/usecase"

	"github.com/google/uuid"
)

// eventTimeout bounds the lookups done for a single feed event so one
// slow backend call cannot stall the stream.
const eventTimeout = 10 * time.Second

type ingestService struct {
	feed         service.MessageFeed
	memberships  repository.MembershipRepository
	profiles     repository.ProfileRepository
	unreadSource service.UnreadSource
	unread       usecase.UnreadUsecase
	toasts       usecase.ToastUsecase
	appState     service.AppStateSource
	logger       *slog.Logger
	previewLen   int
	toastTTL     time.Duration

	mu      sync.Mutex
	active  bool
	userID  uuid.UUID
	sub     service.FeedSubscription
	members map[uuid.UUID]*entity.ConversationMembership
}

// NewIngestService creates a new feed ingestor instance.
func NewIngestService(
	cfg *config.Config,
	feed service.MessageFeed,
	memberships repository.MembershipRepository,
	profiles repository.ProfileRepository,
	unreadSource service.UnreadSource,
	unread usecase.UnreadUsecase,
	toasts usecase.ToastUsecase,
	appState service.AppStateSource,
	logger *slog.Logger,
) usecase.IngestUsecase {
	return &ingestService{
		feed:         feed,
		memberships:  memberships,
		profiles:     profiles,
		unreadSource: unreadSource,
		unread:       unread,
		toasts:       toasts,
		appState:     appState,
		logger:       logger,
		previewLen:   cfg.Toast.PreviewLength,
		toastTTL:     cfg.Toast.TTL,
	}
}

// Start subscribes to the feed for the user and resyncs the unread
// counter from the authoritative source.
func (s *ingestService) Start(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		if err := s.Stop(ctx); err != nil {
			s.logger.Warn("failed to stop previous ingestion", slog.Any("error", err))
		}
		s.mu.Lock()
	}
	s.active = true
	s.userID = userID
	s.members = make(map[uuid.UUID]*entity.ConversationMembership)
	s.mu.Unlock()

	s.resync(ctx)

	sub, err := s.feed.Subscribe(ctx, userID, s)
	if err != nil {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()

		return errors.Wrap(err, "subscribe to message feed")
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	s.logger.Info("message ingestion started", slog.String("user_id", userID.String()))

	return nil
}

// Stop unsubscribes and clears per-session caches.
func (s *ingestService) Stop(_ context.Context) error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.active = false
	s.members = nil
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		return errors.Wrap(err, "unsubscribe from message feed")
	}

	s.logger.Info("message ingestion stopped")

	return nil
}

// HandleMessage classifies and processes one feed event. It implements
// service.FeedHandler; errors stay local so a bad event cannot break the
// subscription.
func (s *ingestService) HandleMessage(event *entity.MessageEvent) {
	s.mu.Lock()
	active := s.active
	userID := s.userID
	s.mu.Unlock()

	if !active || event == nil {
		return
	}

	// Own messages neither count nor display.
	if event.SenderID == userID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	membership, err := s.membership(ctx, event.ConversationID)
	if err != nil || !membership.HasParticipant(userID) {
		// Fail closed: an event we cannot verify is not counted and not
		// displayed.
		s.logger.Warn("dropping event for unverified conversation",
			slog.String("event_id", event.ID.String()),
			slog.String("conversation_id", event.ConversationID.String()),
			slog.Any("error", err),
		)

		return
	}

	s.unread.Increment(ctx)

	if !s.appState.Foreground() {
		s.logger.Debug("app backgrounded, counted without toast",
			slog.String("event_id", event.ID.String()),
		)

		return
	}

	s.toasts.Show(ctx, s.buildToast(ctx, event))
}

// HandleReconnect resyncs the counter after a feed gap; events may have
// been missed while disconnected.
func (s *ingestService) HandleReconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	s.resync(ctx)
}

// resync overwrites the counter from the authoritative remote count.
// On failure the current (seeded) value is kept.
func (s *ingestService) resync(ctx context.Context) {
	s.mu.Lock()
	active := s.active
	userID := s.userID
	s.mu.Unlock()

	if !active {
		return
	}

	count, err := s.unreadSource.FetchUnreadCount(ctx, userID)
	if err != nil {
		s.logger.Warn("unread resync failed, keeping current count", slog.Any("error", err))

		return
	}
	s.unread.Set(ctx, count)
}

// membership resolves the participant set, cache-or-fetch.
func (s *ingestService) membership(ctx context.Context, conversationID uuid.UUID) (*entity.ConversationMembership, error) {
	s.mu.Lock()
	cached, ok := s.members[conversationID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	membership, err := s.memberships.GetMembership(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.members != nil {
		s.members[conversationID] = membership
	}
	s.mu.Unlock()

	return membership, nil
}

// buildToast derives the displayed notification from the event.
func (s *ingestService) buildToast(ctx context.Context, event *entity.MessageEvent) *entity.NotificationItem {
	title := "New message"
	if profile, err := s.profiles.GetDisplayInfo(ctx, event.SenderID); err == nil && profile.Name != "" {
		title = profile.Name
	} else if err != nil {
		s.logger.Debug("sender display lookup failed",
			slog.String("sender_id", event.SenderID.String()),
			slog.Any("error", err),
		)
	}

	return &entity.NotificationItem{
		ID:             event.ID,
		Title:          title,
		Body:           s.preview(event),
		ConversationID: event.ConversationID,
		Kind:           event.Kind,
		CreatedAt:      event.CreatedAt,
		TTL:            s.toastTTL,
	}
}

// preview renders the human-readable body: text is truncated, the other
// kinds get fixed labels.
func (s *ingestService) preview(event *entity.MessageEvent) string {
	switch event.Kind {
	case entity.MessageKindImage:
		return "📷 Photo"
	case entity.MessageKindLocation:
		return "📍 Location shared"
	case entity.MessageKindSystem:
		return "System notification"
	default:
		return truncate(event.Body, s.previewLen)
	}
}

// truncate shortens a string to max runes, appending an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "…"
}
