package repository

import (
	"context"

	"beacon/internal/domain/entity"

	"github.com/google/uuid"
)

// MembershipRepository resolves the participant set of a conversation.
// Lookups are remote; callers treat any failure as "not a participant".
type MembershipRepository interface {
	GetMembership(ctx context.Context, conversationID uuid.UUID) (*entity.ConversationMembership, error)
}
