package domain

import (
	"strconv"
	"time"
)

// CommentID is a value object for comment identity.
type CommentID int64

// String returns the canonical decimal form.
func (c CommentID) String() string { return strconv.FormatInt(int64(c), 10) }

// MaxCommentLength bounds a comment body after trimming.
const MaxCommentLength = 10000

// Comment belongs to one issue. Only its author or the issue owner may
// edit or remove it.
type Comment struct {
	ID        CommentID
	IssueID   IssueID
	AuthorID  UserID
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentView is the outward JSON shape for a comment.
type CommentView struct {
	ID        CommentID `json:"id"`
	IssueID   IssueID   `json:"issueId"`
	AuthorID  UserID    `json:"authorUserId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToView maps to the outward shape.
func (c *Comment) ToView() CommentView {
	return CommentView{
		ID:        c.ID,
		IssueID:   c.IssueID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}
