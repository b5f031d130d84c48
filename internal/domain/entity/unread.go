package entity

import (
	"time"

	"github.com/google/uuid"
)

// UnreadSnapshot is the locally persisted last-known unread count for a
// user, used to seed the in-memory counter before the authoritative
// source can be reached.
type UnreadSnapshot struct {
	UserID    uuid.UUID `json:"user_id"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
