package ports

import "context"

// TaskEnqueuer enqueues async tasks (email delivery).
type TaskEnqueuer interface {
	EnqueueInviteEmail(ctx context.Context, email, projectName, inviteURL string) error
	EnqueueSendPasswordReset(ctx context.Context, email, resetURL string) error
}
