package broadcast

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

const publishTimeout = 5 * time.Second

// Frame is the wire envelope pushed to subscribers.
type Frame struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

// Broadcaster routes committed domain events to push channels. Dispatch
// returns immediately; delivery happens on a goroutine detached from
// the request context so a slow broker never holds a response.
type Broadcaster struct {
	pub ports.PushPublisher
	log zerolog.Logger
}

func NewBroadcaster(pub ports.PushPublisher, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{pub: pub, log: log}
}

func (b *Broadcaster) Dispatch(events []domain.Event) {
	if len(events) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		for _, ev := range events {
			if err := b.route(ctx, ev); err != nil {
				b.log.Warn().Err(err).Type("event", ev).Msg("event publish failed")
			}
		}
	}()
}

// route covers every event kind; adding a kind without a case here is a
// compile-time hole the default branch logs loudly.
func (b *Broadcaster) route(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.IssueCreated:
		return b.pub.PublishTopic(ctx, ProjectTopic(e.ProjectID), Frame{Type: "ISSUE_CREATED", At: e.At, Payload: e.Issue})
	case domain.IssueUpdated:
		if err := b.pub.PublishTopic(ctx, ProjectTopic(e.ProjectID), Frame{Type: "ISSUE_UPDATED", At: e.At, Payload: e.Issue}); err != nil {
			return err
		}
		return b.pub.PublishTopic(ctx, IssueTopic(e.IssueID), Frame{Type: "ISSUE_UPDATED", At: e.At, Payload: e.Issue})
	case domain.MemberAdded:
		return b.pub.PublishTopic(ctx, ProjectTopic(e.ProjectID), Frame{Type: "MEMBER_ADDED", At: e.At, Payload: e.Membership})
	case domain.CommentAdded:
		return b.pub.PublishTopic(ctx, IssueTopic(e.IssueID), Frame{Type: "COMMENT_ADDED", At: e.At, Payload: e.Comment})
	case domain.ActivityLogged:
		return b.pub.PublishTopic(ctx, IssueTopic(e.IssueID), Frame{Type: "ACTIVITY", At: e.At, Payload: e.Activity})
	case domain.IssueAssigned:
		return b.pub.PublishUser(ctx, e.AssigneeID, e.Notification)
	default:
		b.log.Error().Type("event", ev).Msg("unroutable event kind")
		return nil
	}
}

var _ ports.EventDispatcher = (*Broadcaster)(nil)
