package service

import (
	"context"

	"github.com/google/uuid"
)

// NavigationBridge is satisfied by the host application. It is invoked
// when the user acts on a displayed notification; the core never imports
// a concrete router.
type NavigationBridge interface {
	OpenConversation(ctx context.Context, conversationID uuid.UUID) error
}
