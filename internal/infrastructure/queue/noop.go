package queue

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueInviteEmail(ctx context.Context, email, projectName, inviteURL string) error {
	return nil
}

func (q *NoopEnqueuer) EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error {
	return nil
}

var _ ports.TaskEnqueuer = (*NoopEnqueuer)(nil)
