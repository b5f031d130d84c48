package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"
)

// taskToastDismiss is the scheduler id of the auto-dismiss timer. A
// single id gives the replace semantics for free: showing a new item
// reschedules the task, which cancels the previous item's timer.
const taskToastDismiss = "toast.dismiss"

type toastService struct {
	sched      service.Scheduler
	nav        service.NavigationBridge
	logger     *slog.Logger
	defaultTTL time.Duration

	mu      sync.Mutex
	current *entity.NotificationItem
	gen     uint64

	watchersMu  sync.Mutex
	watchers    map[uint64]chan usecase.ToastEvent
	nextWatcher uint64
}

// NewToastService creates a new presentation queue instance.
func NewToastService(
	cfg *config.Config,
	scheduler service.Scheduler,
	nav service.NavigationBridge,
	logger *slog.Logger,
) usecase.ToastUsecase {
	return &toastService{
		sched:      scheduler,
		nav:        nav,
		logger:     logger,
		defaultTTL: cfg.Toast.TTL,
		watchers:   make(map[uint64]chan usecase.ToastEvent),
	}
}

// Show replaces the visible item and restarts the auto-dismiss timer.
// The latest shown item always wins.
func (s *toastService) Show(_ context.Context, item *entity.NotificationItem) {
	if item == nil {
		return
	}
	ttl := item.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
		item.TTL = ttl
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.current = item
	// Scheduling stays inside the critical section so that overlapping
	// Show calls arm the timer in slot order: the newest item's timer is
	// always the one left standing.
	s.sched.Schedule(taskToastDismiss, ttl, func() {
		s.expire(gen)
	})
	s.mu.Unlock()

	s.logger.Debug("toast shown",
		slog.String("id", item.ID.String()),
		slog.Duration("ttl", ttl),
	)
	s.notify(usecase.ToastEvent{Type: usecase.ToastShown, Item: item})
}

// expire clears the slot when the auto-dismiss timer fires, unless a
// newer item took the slot in the meantime.
func (s *toastService) expire(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.current == nil {
		s.mu.Unlock()

		return
	}
	s.current = nil
	s.mu.Unlock()

	s.logger.Debug("toast expired")
	s.notify(usecase.ToastEvent{Type: usecase.ToastCleared})
}

// Dismiss clears the slot immediately, whatever the cause.
func (s *toastService) Dismiss(_ context.Context) {
	s.sched.Cancel(taskToastDismiss)

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()

		return
	}
	s.gen++
	s.current = nil
	s.mu.Unlock()

	s.notify(usecase.ToastEvent{Type: usecase.ToastCleared})
}

// Current returns the visible item, or nil.
func (s *toastService) Current() *entity.NotificationItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Tap dismisses the visible item and routes to its conversation.
func (s *toastService) Tap(ctx context.Context) error {
	s.mu.Lock()
	item := s.current
	s.mu.Unlock()

	if item == nil {
		return domainerrors.ErrToastNotVisible
	}

	s.Dismiss(ctx)

	return s.nav.OpenConversation(ctx, item.ConversationID)
}

// Watch returns a channel of queue transitions and a stop function.
func (s *toastService) Watch(buffer int) (<-chan usecase.ToastEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan usecase.ToastEvent, buffer)

	s.watchersMu.Lock()
	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = ch
	s.watchersMu.Unlock()

	stop := func() {
		s.watchersMu.Lock()
		defer s.watchersMu.Unlock()

		if existing, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(existing)
		}
	}

	return ch, stop
}

// notify fans the event out to watchers. Slow watchers miss events
// rather than blocking the queue.
func (s *toastService) notify(event usecase.ToastEvent) {
	s.watchersMu.Lock()
	defer s.watchersMu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- event:
		default:
		}
	}
}
