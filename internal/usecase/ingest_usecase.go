package usecase

import (
	"context"

	"github.com/google/uuid"
)

// IngestUsecase consumes the real-time message feed for the signed-in
// user: it drops own and foreign-conversation events, feeds the unread
// counter, and raises foreground toasts. A single bad event never breaks
// the stream.
type IngestUsecase interface {
	// Start subscribes to the feed for the user and resyncs the unread
	// counter from the authoritative source.
	Start(ctx context.Context, userID uuid.UUID) error

	// Stop unsubscribes and clears per-session caches.
	Stop(ctx context.Context) error
}
