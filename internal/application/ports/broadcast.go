package ports

import (
	"context"

	"github.com/jsmuster/isstrack/internal/domain"
)

// PushPublisher is the raw push channel: topic fan-out for project and
// issue subscribers plus a per-user private queue. The transport behind
// it (Redis pub/sub here) is an infrastructure concern.
type PushPublisher interface {
	PublishTopic(ctx context.Context, topic string, payload any) error
	PublishUser(ctx context.Context, userID domain.UserID, payload any) error
}

// EventDispatcher receives the events drained from a committed
// transaction's outbox and routes them to the push channel. Dispatch
// must not block the request path.
type EventDispatcher interface {
	Dispatch(events []domain.Event)
}
