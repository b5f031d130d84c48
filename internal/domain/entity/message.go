package entity

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind classifies the payload of a chat message.
type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindImage    MessageKind = "image"
	MessageKindLocation MessageKind = "location"
	MessageKindSystem   MessageKind = "system"
)

// MessageEvent is a single chat message delivered by the real-time feed.
// Events are immutable and consumed exactly once per delivery.
type MessageEvent struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	RecipientIDs   []uuid.UUID `json:"recipient_ids"`
	Body           string      `json:"body"`
	Kind           MessageKind `json:"kind"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ConversationMembership is the read-only participant set of a
// conversation, fetched on demand to validate incoming events.
type ConversationMembership struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

// HasParticipant reports whether the given user belongs to the conversation.
func (m *ConversationMembership) HasParticipant(userID uuid.UUID) bool {
	for _, id := range m.ParticipantIDs {
		if id == userID {
			return true
		}
	}

	return false
}

// SenderProfile is the display metadata of a message sender.
type SenderProfile struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
