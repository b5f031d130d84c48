// Package navigation provides NavigationBridge implementations. The core
// never imports a concrete router; the host either receives a webhook or
// nothing at all.
package navigation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"beacon/config"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// noopBridge is used when no navigation callback is configured.
type noopBridge struct {
	logger *slog.Logger
}

func (b *noopBridge) OpenConversation(_ context.Context, conversationID uuid.UUID) error {
	b.logger.Debug("navigation callback not configured, ignoring tap",
		slog.String("conversation_id", conversationID.String()),
	)

	return nil
}

// webhookBridge posts the tapped conversation id to the host callback URL.
type webhookBridge struct {
	callbackURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewNavigationBridge creates a NavigationBridge based on configuration.
func NewNavigationBridge(cfg *config.Config, logger *slog.Logger) service.NavigationBridge {
	if cfg.Navigation == nil || cfg.Navigation.CallbackURL == "" {
		logger.Info("navigation callback not configured, using no-op bridge")

		return &noopBridge{logger: logger}
	}

	return &webhookBridge{
		callbackURL: cfg.Navigation.CallbackURL,
		httpClient: &http.Client{
			Timeout: cfg.Navigation.Timeout,
		},
		logger: logger,
	}
}

// OpenConversation notifies the host that the user acted on a notification.
func (b *webhookBridge) OpenConversation(ctx context.Context, conversationID uuid.UUID) error {
	body, err := json.Marshal(map[string]string{
		"conversation_id": conversationID.String(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.callbackURL, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "invoke navigation callback")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("navigation callback returned %s", resp.Status)
	}

	return nil
}
