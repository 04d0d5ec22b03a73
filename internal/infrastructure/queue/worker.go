package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/ports"
)

// invitePayload matches the JSON enqueued by TaskEnqueuer.EnqueueInviteEmail.
type invitePayload struct {
	Email       string `json:"email"`
	ProjectName string `json:"project_name"`
	InviteURL   string `json:"invite_url"`
}

// passwordResetPayload matches the JSON enqueued by TaskEnqueuer.EnqueueSendPasswordReset.
type passwordResetPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

// Worker runs Asynq task handlers: email delivery plus a periodic sweep
// of expired password reset tokens.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	resets ports.PasswordResetRepository
	log    zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, resets ports.PasswordResetRepository, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, resets: resets, log: log}
	mux.HandleFunc(TypeSendInvite, w.handleSendInvite)
	mux.HandleFunc(TypeSendPasswordReset, w.handleSendPasswordReset)
	mux.HandleFunc(TypeCleanupResets, w.handleCleanupResets)
	return w
}

func (w *Worker) handleSendInvite(ctx context.Context, t *asynq.Task) error {
	var p invitePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("invite task payload invalid")
		return err
	}
	// Dev: log the link; production would send email via SMTP/sendgrid etc.
	w.log.Info().
		Str("email", p.Email).
		Str("project", p.ProjectName).
		Str("invite_url", p.InviteURL).
		Msg("invite email (log only; configure SMTP for real email)")
	return nil
}

func (w *Worker) handleSendPasswordReset(ctx context.Context, t *asynq.Task) error {
	var p passwordResetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("password reset task payload invalid")
		return err
	}
	w.log.Info().
		Str("email", p.Email).
		Str("reset_url", p.ResetURL).
		Msg("password reset email (log only; configure SMTP for real email)")
	return nil
}

func (w *Worker) handleCleanupResets(ctx context.Context, t *asynq.Task) error {
	n, err := w.resets.DeleteExpired(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("reset token cleanup failed")
		return err
	}
	if n > 0 {
		w.log.Info().Int64("removed", n).Msg("expired reset tokens removed")
	}
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

// NewCleanupScheduler enqueues the reset-token sweep on an interval.
func NewCleanupScheduler(redisOpt asynq.RedisClientOpt, every time.Duration, log zerolog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every "+every.String(), asynq.NewTask(TypeCleanupResets, nil)); err != nil {
		return nil, err
	}
	return scheduler, nil
}
