package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/domain/service"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// natsFeed implements MessageFeed over a NATS subject per user. NATS
// handles transport reconnection itself; active handlers are told about
// reconnects so they can resync derived state.
type natsFeed struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *slog.Logger

	mu       sync.Mutex
	handlers map[uint64]service.FeedHandler
	nextID   uint64
}

func newNATSFeed(cfg *config.NATSFeedConfig, logger *slog.Logger) (*natsFeed, error) {
	f := &natsFeed{
		subjectPrefix: cfg.SubjectPrefix,
		logger:        logger,
		handlers:      make(map[uint64]service.FeedHandler),
	}
	if f.subjectPrefix == "" {
		f.subjectPrefix = "chat.messages"
	}

	reconnectWait := cfg.ReconnectWait
	if reconnectWait == 0 {
		reconnectWait = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(timeout),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			f.notifyReconnect()
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("feed disconnected", slog.Any("error", err))
			}
		}),
	}

	conn, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "connect to nats")
	}
	f.conn = conn

	return f, nil
}

type natsSubscription struct {
	feed      *natsFeed
	sub       *nats.Subscription
	handlerID uint64
}

func (s *natsSubscription) Unsubscribe() error {
	s.feed.removeHandler(s.handlerID)

	return errors.WithStack(s.sub.Unsubscribe())
}

// Subscribe delivers the user's conversation events in arrival order.
func (f *natsFeed) Subscribe(_ context.Context, userID uuid.UUID, handler service.FeedHandler) (service.FeedSubscription, error) {
	subject := f.subjectPrefix + "." + userID.String()

	sub, err := f.conn.Subscribe(subject, func(m *nats.Msg) {
		event, err := decodeMessageEvent(m.Data)
		if err != nil {
			f.logger.Warn("dropping undecodable feed message",
				slog.String("subject", m.Subject),
				slog.Any("error", err),
			)

			return
		}
		handler.HandleMessage(event)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe to %s", subject)
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.handlers[id] = handler
	f.mu.Unlock()

	f.logger.Info("subscribed to message feed", slog.String("subject", subject))

	return &natsSubscription{feed: f, sub: sub, handlerID: id}, nil
}

func (f *natsFeed) removeHandler(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.handlers, id)
}

func (f *natsFeed) notifyReconnect() {
	f.mu.Lock()
	handlers := make([]service.FeedHandler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	f.logger.Info("feed reconnected", slog.Int("handlers", len(handlers)))
	for _, h := range handlers {
		h.HandleReconnect()
	}
}

// Close drains the connection.
func (f *natsFeed) Close() {
	if f.conn != nil {
		f.conn.Close()
	}
}

func unmarshalEvent(data []byte, out any) error {
	return errors.WithStack(json.Unmarshal(data, out))
}
