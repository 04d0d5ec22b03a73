// Package broadcast pushes committed domain events to live subscribers
// over Redis pub/sub. Gateway processes subscribe to the channels and
// forward frames to their connected clients.
package broadcast

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

// Channel naming: one channel per project, per issue, and per user.
func ProjectTopic(id domain.ProjectID) string { return "projects." + id.String() }
func IssueTopic(id domain.IssueID) string     { return "issues." + id.String() }
func userChannel(id domain.UserID) string     { return "users." + id.String() + ".notifications" }

// RedisPublisher implements ports.PushPublisher over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) PublishTopic(ctx context.Context, topic string, payload any) error {
	return p.publish(ctx, topic, payload)
}

func (p *RedisPublisher) PublishUser(ctx context.Context, userID domain.UserID, payload any) error {
	return p.publish(ctx, userChannel(userID), payload)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, body).Err()
}

var _ ports.PushPublisher = (*RedisPublisher)(nil)
