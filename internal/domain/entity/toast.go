package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationItem is a transient in-app notification ("toast"). It is
// owned by the presentation queue from Show until it is dismissed,
// expired, or replaced by a newer item.
type NotificationItem struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Body           string        `json:"body"`
	ConversationID uuid.UUID     `json:"conversation_id"`
	Kind           MessageKind   `json:"kind"`
	CreatedAt      time.Time     `json:"created_at"`
	TTL            time.Duration `json:"ttl"` // Lifetime before auto-dismiss; zero means the queue default.
}
