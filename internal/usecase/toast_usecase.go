package usecase

import (
	"context"

	"beacon/internal/domain/entity"
)

// ToastEventType describes a presentation queue transition.
type ToastEventType string

const (
	// ToastShown means an item became the visible toast.
	ToastShown ToastEventType = "shown"
	// ToastCleared means the slot became empty (timeout, dismiss, or tap).
	ToastCleared ToastEventType = "cleared"
)

// ToastEvent is delivered to watchers on every queue transition.
type ToastEvent struct {
	Type ToastEventType
	Item *entity.NotificationItem // The shown item; nil for ToastCleared.
}

// ToastUsecase is the single-slot presentation queue: at most one
// transient notification is visible at any instant, the latest shown item
// wins, and every item auto-dismisses after its TTL.
type ToastUsecase interface {
	// Show replaces the visible item (canceling its pending auto-dismiss)
	// and starts the new item's auto-dismiss timer.
	Show(ctx context.Context, item *entity.NotificationItem)

	// Dismiss clears the slot immediately, whatever the cause.
	Dismiss(ctx context.Context)

	// Current returns the visible item, or nil.
	Current() *entity.NotificationItem

	// Tap dismisses the visible item and routes the user to its
	// conversation through the navigation bridge.
	Tap(ctx context.Context) error

	// Watch returns a channel of queue transitions and a stop function.
	// Slow watchers miss events rather than blocking the queue.
	Watch(buffer int) (<-chan ToastEvent, func())
}
