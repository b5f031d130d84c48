package service

import (
	"context"

	"github.com/google/uuid"
)

// UnreadSource is the authoritative remote unread count, queried at
// session start and after feed reconnects.
type UnreadSource interface {
	FetchUnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
