package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// messageReceiver is the receive surface of a Pub/Sub subscriber.
type messageReceiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// googleFeed implements MessageFeed over a Google Pub/Sub subscription.
// All users of the install share one subscription; events for foreign
// users are filtered by subject attribute before dispatch.
type googleFeed struct {
	// ctx is the process context. The receive loop binds to it rather
	// than to the caller of Subscribe: the control request that starts a
	// session returns immediately, while the subscription must live until
	// the session ends.
	ctx            context.Context
	subscriptionID string
	logger         *slog.Logger
	newReceiver    func() messageReceiver
	close          func() error
}

func newGoogleFeed(ctx context.Context, cfg *config.GoogleFeedConfig, logger *slog.Logger) (*googleFeed, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &googleFeed{
		ctx:            ctx,
		subscriptionID: cfg.SubscriptionID,
		logger:         logger,
		newReceiver: func() messageReceiver {
			return client.Subscriber(cfg.SubscriptionID)
		},
		close: client.Close,
	}, nil
}

type googleSubscription struct {
	cancel context.CancelFunc
	done   *sync.WaitGroup
}

func (s *googleSubscription) Unsubscribe() error {
	s.cancel()
	s.done.Wait()

	return nil
}

// Subscribe receives events addressed to the user until unsubscribed.
// The caller's context is deliberately not propagated to the receive
// loop; teardown happens through Unsubscribe or Close.
func (f *googleFeed) Subscribe(_ context.Context, userID uuid.UUID, handler service.FeedHandler) (service.FeedSubscription, error) {
	subscriber := f.newReceiver()

	recvCtx, cancel := context.WithCancel(f.ctx)
	var done sync.WaitGroup
	done.Add(1)

	go func() {
		defer done.Done()

		for {
			err := subscriber.Receive(recvCtx, func(_ context.Context, m *pubsub.Message) {
				defer m.Ack()

				if recipient := m.Attributes["recipient_id"]; recipient != "" && recipient != userID.String() {
					return
				}

				event, err := decodeMessageEvent(m.Data)
				if err != nil {
					f.logger.Warn("dropping undecodable feed message", slog.Any("error", err))

					return
				}
				handler.HandleMessage(event)
			})

			if recvCtx.Err() != nil {
				return
			}
			if err != nil {
				f.logger.Warn("feed receive terminated, restarting", slog.Any("error", err))
			}
			// A restarted stream may have missed events.
			handler.HandleReconnect()

			select {
			case <-recvCtx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()

	f.logger.Info("subscribed to message feed",
		slog.String("subscription_id", f.subscriptionID),
		slog.String("user_id", userID.String()),
	)

	return &googleSubscription{cancel: cancel, done: &done}, nil
}

// Close releases the Pub/Sub client.
func (f *googleFeed) Close() error {
	return errors.WithStack(f.close())
}
