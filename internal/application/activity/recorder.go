// Package activity appends immutable audit entries for issue mutations
// and serves the paginated audit log.
package activity

import (
	"context"
	"time"

	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

// Recorder writes audit rows inside the caller's transaction and stages
// an ActivityLogged event on the caller's outbox for each row.
type Recorder struct {
	activities ports.ActivityRepository
}

func NewRecorder(activities ports.ActivityRepository) *Recorder {
	return &Recorder{activities: activities}
}

// Log appends one audit entry. The row commits or rolls back with the
// triggering mutation; the event reaches subscribers only after commit.
func (r *Recorder) Log(ctx context.Context, out *events.Outbox, issueID domain.IssueID, actorID domain.UserID, message string) (domain.ActivityView, error) {
	entry := &domain.Activity{
		IssueID: issueID,
		ActorID: actorID,
		Message: message,
	}
	if err := r.activities.Create(ctx, entry); err != nil {
		return domain.ActivityView{}, err
	}
	view := entry.ToView()
	out.Add(domain.ActivityLogged{IssueID: issueID, Activity: view, At: time.Now()})
	return view, nil
}
