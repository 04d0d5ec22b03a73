package broadcast

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

// NoopPublisher drops every frame. Used when no Redis is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTopic(context.Context, string, any) error       { return nil }
func (NoopPublisher) PublishUser(context.Context, domain.UserID, any) error { return nil }

// NoopDispatcher drops every event.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch([]domain.Event) {}

var (
	_ ports.PushPublisher   = NoopPublisher{}
	_ ports.EventDispatcher = NoopDispatcher{}
)
