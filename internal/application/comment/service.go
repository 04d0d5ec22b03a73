// Package comment manages issue comments with ownership rules: a comment
// is edited or removed only by its author or the issue owner.
package comment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/activity"
	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// Service implements the comment manager.
type Service struct {
	tx         ports.Transactor
	comments   ports.CommentRepository
	issues     ports.IssueRepository
	access     *access.Service
	recorder   *activity.Recorder
	dispatcher ports.EventDispatcher
	log        zerolog.Logger
}

func NewService(
	tx ports.Transactor,
	comments ports.CommentRepository,
	issues ports.IssueRepository,
	accessSvc *access.Service,
	recorder *activity.Recorder,
	dispatcher ports.EventDispatcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		tx:         tx,
		comments:   comments,
		issues:     issues,
		access:     accessSvc,
		recorder:   recorder,
		dispatcher: dispatcher,
		log:        log,
	}
}

func normalizeBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", domerrors.BadRequest("Comment body cannot be blank")
	}
	if len(trimmed) > domain.MaxCommentLength {
		return "", domerrors.BadRequest("Comment body is too long")
	}
	return trimmed, nil
}

// Add persists a comment on an issue, appends the "Comment added" audit
// row and emits CommentAdded after commit.
func (s *Service) Add(ctx context.Context, userID domain.UserID, issueID domain.IssueID, body string) (domain.CommentView, error) {
	var view domain.CommentView
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		iss, err := s.issues.GetByID(ctx, issueID)
		if err != nil {
			return err
		}
		if iss == nil {
			return domerrors.NotFound("Issue not found")
		}
		if err := s.access.RequireActiveMember(ctx, userID, iss.ProjectID); err != nil {
			return err
		}
		trimmed, err := normalizeBody(body)
		if err != nil {
			return err
		}
		c := &domain.Comment{IssueID: issueID, AuthorID: userID, Body: trimmed}
		if err := s.comments.Create(ctx, c); err != nil {
			return err
		}
		view = c.ToView()
		out.Add(domain.CommentAdded{IssueID: issueID, Comment: view, At: time.Now()})
		_, err = s.recorder.Log(ctx, &out, issueID, userID, "Comment added")
		return err
	})
	if err != nil {
		return domain.CommentView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	return view, nil
}

// List pages an issue's comments, newest first.
func (s *Service) List(ctx context.Context, userID domain.UserID, issueID domain.IssueID, page, size int) (domain.Page[domain.CommentView], error) {
	var zero domain.Page[domain.CommentView]
	iss, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return zero, err
	}
	if iss == nil {
		return zero, domerrors.NotFound("Issue not found")
	}
	if err := s.access.RequireActiveMember(ctx, userID, iss.ProjectID); err != nil {
		return zero, err
	}
	page, size = domain.ClampPageRequest(page, size, 20)
	rows, total, err := s.comments.ListByIssue(ctx, issueID, page, size)
	if err != nil {
		return zero, err
	}
	items := make([]domain.CommentView, 0, len(rows))
	for _, c := range rows {
		items = append(items, c.ToView())
	}
	return domain.NewPage(items, page, size, total), nil
}

// loadForManage resolves the comment, verifies it belongs to the stated
// issue (mismatch reads as NotFound so comment ids cannot be probed
// across issues) and enforces the author-or-issue-owner rule.
func (s *Service) loadForManage(ctx context.Context, userID domain.UserID, issueID domain.IssueID, commentID domain.CommentID, action string) (*domain.Comment, *domain.Issue, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil || c.IssueID != issueID {
		return nil, nil, domerrors.NotFound("Comment not found")
	}
	iss, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, nil, err
	}
	if iss == nil {
		return nil, nil, domerrors.NotFound("Issue not found")
	}
	if err := s.access.RequireActiveMember(ctx, userID, iss.ProjectID); err != nil {
		return nil, nil, err
	}
	if c.AuthorID != userID && iss.OwnerID != userID {
		return nil, nil, domerrors.Forbidden("Not allowed to " + action + " this comment")
	}
	return c, iss, nil
}

// Update re-trims and saves the body and appends "Comment edited". No
// dedicated push event; the staged ActivityLogged already reaches issue
// subscribers.
func (s *Service) Update(ctx context.Context, userID domain.UserID, issueID domain.IssueID, commentID domain.CommentID, body string) (domain.CommentView, error) {
	var view domain.CommentView
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, _, err := s.loadForManage(ctx, userID, issueID, commentID, "edit")
		if err != nil {
			return err
		}
		trimmed, err := normalizeBody(body)
		if err != nil {
			return err
		}
		c.Body = trimmed
		if err := s.comments.Update(ctx, c); err != nil {
			return err
		}
		view = c.ToView()
		_, err = s.recorder.Log(ctx, &out, issueID, userID, "Comment edited")
		return err
	})
	if err != nil {
		return domain.CommentView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	return view, nil
}

// Delete removes the comment and appends "Comment deleted".
func (s *Service) Delete(ctx context.Context, userID domain.UserID, issueID domain.IssueID, commentID domain.CommentID) error {
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, _, err := s.loadForManage(ctx, userID, issueID, commentID, "delete")
		if err != nil {
			return err
		}
		if err := s.comments.Delete(ctx, c.ID); err != nil {
			return err
		}
		_, err = s.recorder.Log(ctx, &out, issueID, userID, "Comment deleted")
		return err
	})
	if err != nil {
		return err
	}
	s.dispatcher.Dispatch(out.Drain())
	return nil
}
