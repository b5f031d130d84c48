package service

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// FeedHandler receives deliveries from the real-time message feed.
// HandleMessage is invoked once per event in delivery order; it must not
// panic and must not block the feed for long.
type FeedHandler interface {
	HandleMessage(event *entity.MessageEvent)

	// HandleReconnect is invoked after the underlying transport recovered
	// from a gap. Events may have been missed; handlers should resync any
	// derived state from an authoritative source.
	HandleReconnect()
}

// FeedSubscription is a handle to an active feed subscription.
type FeedSubscription interface {
	Unsubscribe() error
}

// MessageFeed is the real-time chat event stream. One subscription per
// signed-in session; reconnection of the transport itself is the
// implementation's responsibility.
type MessageFeed interface {
	Subscribe(ctx context.Context, userID uuid.UUID, handler FeedHandler) (FeedSubscription, error)
}
