// Package directory implements the backend lookup client for
// conversation membership, sender display info and the authoritative
// unread count.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"beacon/config"
	"beacon/internal/domain/entity"
	"beacon/internal/domain/repository"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Client talks to the backend directory API. It satisfies the membership
// and profile repository ports plus the authoritative unread source.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ repository.MembershipRepository = (*Client)(nil)
	_ repository.ProfileRepository    = (*Client)(nil)
	_ service.UnreadSource            = (*Client)(nil)
)

// NewClient is the constructor for the directory client.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		endpoint: cfg.Directory.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Directory.Timeout,
		},
		logger: logger,
	}
}

// NewMembershipRepository exposes the client as a MembershipRepository.
func NewMembershipRepository(c *Client) repository.MembershipRepository {
	return c
}

// NewProfileRepository exposes the client as a ProfileRepository.
func NewProfileRepository(c *Client) repository.ProfileRepository {
	return c
}

// NewUnreadSource exposes the client as an UnreadSource.
func NewUnreadSource(c *Client) service.UnreadSource {
	return c
}

// GetMembership fetches the participant set of a conversation.
func (c *Client) GetMembership(ctx context.Context, conversationID uuid.UUID) (*entity.ConversationMembership, error) {
	url := fmt.Sprintf("%s/conversations/%s/membership", c.endpoint, conversationID)

	var membership entity.ConversationMembership
	if err := c.getJSON(ctx, url, &membership); err != nil {
		return nil, errors.Wrap(err, "fetch conversation membership")
	}
	membership.ConversationID = conversationID

	return &membership, nil
}

// GetDisplayInfo fetches the display metadata of a user.
func (c *Client) GetDisplayInfo(ctx context.Context, userID uuid.UUID) (*entity.SenderProfile, error) {
	url := fmt.Sprintf("%s/users/%s/display", c.endpoint, userID)

	var profile entity.SenderProfile
	if err := c.getJSON(ctx, url, &profile); err != nil {
		return nil, errors.Wrap(err, "fetch sender display info")
	}
	profile.UserID = userID

	return &profile, nil
}

// FetchUnreadCount fetches the authoritative unread count for a user.
func (c *Client) FetchUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	url := fmt.Sprintf("%s/users/%s/unread-count", c.endpoint, userID)

	var payload struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return 0, errors.Wrap(err, "fetch unread count")
	}

	return payload.Count, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("directory returned %s for %s", resp.Status, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode directory response")
	}

	return nil
}
