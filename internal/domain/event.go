package domain

import "time"

// Event is the closed set of domain events. Events are transient: they
// exist only for the duration of the publishing transaction and are
// handed to the broadcaster after commit. The unexported marker keeps
// the set closed so the routing switch stays exhaustive.
type Event interface {
	isEvent()
	OccurredAt() time.Time
}

// IssueCreated fires once per created issue, carrying the full view.
type IssueCreated struct {
	ProjectID ProjectID
	IssueID   IssueID
	Issue     IssueView
	At        time.Time
}

// IssueUpdated fires once per patch that changed at least one field.
type IssueUpdated struct {
	ProjectID ProjectID
	IssueID   IssueID
	Issue     IssueView
	At        time.Time
}

// MemberAdded fires when a membership becomes ACTIVE (project creation,
// direct add of an existing user, or invite acceptance).
type MemberAdded struct {
	ProjectID  ProjectID
	Membership MembershipView
	At         time.Time
}

// CommentAdded fires on comment creation.
type CommentAdded struct {
	IssueID IssueID
	Comment CommentView
	At      time.Time
}

// ActivityLogged fires for every appended audit row.
type ActivityLogged struct {
	IssueID  IssueID
	Activity ActivityView
	At       time.Time
}

// IssueAssigned is a private notification to the new assignee.
type IssueAssigned struct {
	AssigneeID   UserID
	Notification Notification
	At           time.Time
}

func (IssueCreated) isEvent()   {}
func (IssueUpdated) isEvent()   {}
func (MemberAdded) isEvent()    {}
func (CommentAdded) isEvent()   {}
func (ActivityLogged) isEvent() {}
func (IssueAssigned) isEvent()  {}

func (e IssueCreated) OccurredAt() time.Time   { return e.At }
func (e IssueUpdated) OccurredAt() time.Time   { return e.At }
func (e MemberAdded) OccurredAt() time.Time    { return e.At }
func (e CommentAdded) OccurredAt() time.Time   { return e.At }
func (e ActivityLogged) OccurredAt() time.Time { return e.At }
func (e IssueAssigned) OccurredAt() time.Time  { return e.At }

// Notification is the payload delivered on a user's private queue.
type Notification struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
	Meta      map[string]any `json:"meta"`
}

// NewIssueAssignedNotification builds the assignment notification.
func NewIssueAssignedNotification(issueID IssueID, projectID ProjectID, title string) Notification {
	return Notification{
		Type:      "ISSUE_ASSIGNED",
		Message:   "You were assigned to issue " + title,
		CreatedAt: time.Now(),
		Meta: map[string]any{
			"issueId":   issueID,
			"projectId": projectID,
		},
	}
}
