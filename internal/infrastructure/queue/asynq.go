package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/ports"
)

const (
	TypeSendInvite        = "email:project_invite"
	TypeSendPasswordReset = "email:password_reset"
	TypeCleanupResets     = "maintenance:cleanup_resets"
)

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueInviteEmail(ctx context.Context, email, projectName, inviteURL string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":        email,
		"project_name": projectName,
		"invite_url":   inviteURL,
	})
	task := asynq.NewTask(TypeSendInvite, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue invite email failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error {
	payload, _ := json.Marshal(map[string]string{
		"email":     email,
		"reset_url": resetURL,
	})
	task := asynq.NewTask(TypeSendPasswordReset, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue password reset email failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
