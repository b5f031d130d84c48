// Package feed provides MessageFeed implementations over NATS and Google
// Cloud Pub/Sub, selected by configuration.
package feed

import (
	"context"
	"log/slog"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	providerNATS   = "nats"
	providerGoogle = "google"
)

// noopFeed is used when no feed is configured. Subscriptions succeed but
// never deliver.
type noopFeed struct {
	logger *slog.Logger
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() error { return nil }

func (f *noopFeed) Subscribe(_ context.Context, userID uuid.UUID, _ service.FeedHandler) (service.FeedSubscription, error) {
	f.logger.Debug("[NoopFeed] feed disabled, subscription is inert",
		slog.String("user_id", userID.String()),
	)

	return noopSubscription{}, nil
}

// Params holds dependencies for the MessageFeed, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMessageFeed creates a MessageFeed based on configuration.
func NewMessageFeed(params Params) (service.MessageFeed, error) {
	cfg := params.Config.Feed
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("feed not configured, using no-op feed")

		return &noopFeed{logger: logger}, nil
	}

	switch cfg.Provider {
	case providerNATS:
		if cfg.NATS == nil || len(cfg.NATS.Servers) == 0 {
			return nil, errors.New("nats servers are required for nats provider")
		}
		logger.Info("using NATS message feed",
			slog.String("subject_prefix", cfg.NATS.SubjectPrefix),
		)

		natsFeed, err := newNATSFeed(cfg.NATS, logger)
		if err != nil {
			return nil, err
		}

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("closing NATS feed")
				natsFeed.Close()

				return nil
			},
		})

		return natsFeed, nil

	case providerGoogle:
		if cfg.Google == nil || cfg.Google.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.Google.SubscriptionID == "" {
			return nil, errors.New("subscription ID is required for google provider")
		}
		logger.Info("using Google Pub/Sub message feed",
			slog.String("project_id", cfg.Google.ProjectID),
			slog.String("subscription_id", cfg.Google.SubscriptionID),
		)

		googleFeed, err := newGoogleFeed(params.Ctx, cfg.Google, logger)
		if err != nil {
			return nil, err
		}

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("closing Google Pub/Sub feed")

				return googleFeed.Close()
			},
		})

		return googleFeed, nil

	default:
		return nil, errors.Errorf("unknown feed provider: %s", cfg.Provider)
	}
}

// decodeMessageEvent parses a raw feed payload. Malformed payloads fail
// with ErrFeedEventInvalid; the caller logs and skips them.
func decodeMessageEvent(data []byte) (*entity.MessageEvent, error) {
	var event entity.MessageEvent
	if err := unmarshalEvent(data, &event); err != nil {
		return nil, domainerrors.ErrFeedEventInvalid.WrapMessage(err.Error())
	}
	if event.ID == uuid.Nil || event.ConversationID == uuid.Nil {
		return nil, domainerrors.ErrFeedEventInvalid.WrapMessage("event missing id or conversation id")
	}

	return &event, nil
}
