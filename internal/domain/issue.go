package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IssueID is a value object for issue identity.
type IssueID int64

// String returns the canonical decimal form.
func (i IssueID) String() string { return strconv.FormatInt(int64(i), 10) }

// Status is one of the fixed issue states. The set is not user-definable.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

var statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

// ResolveStatus looks up a status by case-insensitive name.
func ResolveStatus(name string) (Status, bool) {
	for _, s := range statuses {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// Priority is one of the fixed priority levels.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ResolvePriority looks up a priority by case-insensitive name.
func ResolvePriority(name string) (Priority, bool) {
	for _, p := range priorities {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}

// Issue belongs to exactly one project. IssueNumber is assigned
// monotonically within the project and combines with the project prefix
// to form the display key. ClosedAt is non-nil iff Status is CLOSED.
// Version backs optimistic concurrency on updates.
type Issue struct {
	ID          IssueID
	ProjectID   ProjectID
	IssueNumber int32
	Title       string
	Description string
	Status      Status
	Priority    Priority
	OwnerID     UserID
	AssigneeID  *UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
	Version     int32
}

// IssueKey derives the human-readable key, e.g. "ENG-007".
func IssueKey(prefix string, number int32) string {
	if prefix == "" || number == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%03d", prefix, number)
}

// IssueView is the outward JSON shape for an issue row (list and event
// payloads). Description is omitted; the detail view carries it.
type IssueView struct {
	ID          IssueID   `json:"id"`
	ProjectID   ProjectID `json:"projectId"`
	IssueNumber int32     `json:"issueNumber"`
	IssueKey    string    `json:"issueKey"`
	Title       string    `json:"title"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	OwnerID     UserID    `json:"ownerUserId"`
	AssigneeID  *UserID   `json:"assigneeUserId"`
	Tags        []string  `json:"tags"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToView materializes the list/event shape; prefix comes from the owning
// project, tags from the issue_tags join.
func (i *Issue) ToView(prefix string, tags []string) IssueView {
	if tags == nil {
		tags = []string{}
	}
	return IssueView{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		IssueNumber: i.IssueNumber,
		IssueKey:    IssueKey(prefix, i.IssueNumber),
		Title:       i.Title,
		Status:      i.Status,
		Priority:    i.Priority,
		OwnerID:     i.OwnerID,
		AssigneeID:  i.AssigneeID,
		Tags:        tags,
		UpdatedAt:   i.UpdatedAt,
	}
}

// IssueDetail assembles the read-oriented detail call: the issue row,
// its raw description, and one page each of comments and activity.
type IssueDetail struct {
	Issue       IssueView          `json:"issue"`
	Description string             `json:"description"`
	Comments    Page[CommentView]  `json:"comments"`
	Activity    Page[ActivityView] `json:"activity"`
}
