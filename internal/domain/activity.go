package domain

import (
	"strconv"
	"time"
)

// ActivityID is a value object for activity identity.
type ActivityID int64

// String returns the canonical decimal form.
func (a ActivityID) String() string { return strconv.FormatInt(int64(a), 10) }

// Activity is an immutable audit row for one issue mutation. The core
// only ever appends; nothing mutates or deletes these.
type Activity struct {
	ID        ActivityID
	IssueID   IssueID
	ActorID   UserID
	Message   string
	CreatedAt time.Time
}

// ActivityView is the outward JSON shape for an audit entry.
type ActivityView struct {
	ID        ActivityID `json:"id"`
	IssueID   IssueID    `json:"issueId"`
	ActorID   UserID     `json:"actorUserId"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToView maps to the outward shape.
func (a *Activity) ToView() ActivityView {
	return ActivityView{
		ID:        a.ID,
		IssueID:   a.IssueID,
		ActorID:   a.ActorID,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}
