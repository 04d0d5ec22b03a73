package issue

import (
	"context"
	"strings"
	"time"

	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// PatchInput carries an issue patch. Nil fields are absent; each present
// field is applied independently and individually audited. ClearAssignee
// takes precedence over AssigneeUserID when both are supplied.
type PatchInput struct {
	Title          *string
	Description    *string
	Status         *string
	Priority       *string
	AssigneeUserID *domain.UserID
	ClearAssignee  bool
	Tags           []string
}

func (p PatchInput) empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssigneeUserID == nil && !p.ClearAssignee && p.Tags == nil
}

// Update applies a partial patch to an issue. A patch with no present
// fields is a pure read: no save, no audit row, no event. Otherwise one
// IssueUpdated event fires after save with the re-materialized view. A
// stale Version surfaces as Conflict for the caller to retry.
func (s *Service) Update(ctx context.Context, userID domain.UserID, issueID domain.IssueID, patch PatchInput) (domain.IssueView, error) {
	var view domain.IssueView
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
		project, err := s.projects.GetByID(ctx, iss.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domerrors.NotFound("Project not found")
		}

		if patch.empty() {
			names, err := s.loadTagNames(ctx, issueID)
			if err != nil {
				return err
			}
			view = iss.ToView(project.Prefix, names)
			return nil
		}

		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domerrors.BadRequest("Title cannot be blank")
			}
			iss.Title = title
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Title updated"); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			iss.Description = *patch.Description
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Description updated"); err != nil {
				return err
			}
		}
		if patch.Status != nil {
			status, err := s.resolveStatus(*patch.Status)
			if err != nil {
				return err
			}
			iss.Status = status
			if status == domain.StatusClosed {
				now := time.Now()
				iss.ClosedAt = &now
			} else {
				iss.ClosedAt = nil
			}
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Status changed to "+string(status)); err != nil {
				return err
			}
		}
		if patch.Priority != nil {
			priority, err := s.resolvePriority(*patch.Priority)
			if err != nil {
				return err
			}
			iss.Priority = priority
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Priority changed to "+string(priority)); err != nil {
				return err
			}
		}
		if patch.ClearAssignee {
			iss.AssigneeID = nil
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Assignee cleared"); err != nil {
				return err
			}
		} else if patch.AssigneeUserID != nil {
			assigneeID := *patch.AssigneeUserID
			if err := s.validateAssignee(ctx, iss.ProjectID, assigneeID); err != nil {
				return err
			}
			iss.AssigneeID = &assigneeID
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Assignee changed to userId="+assigneeID.String()); err != nil {
				return err
			}
			out.Add(domain.IssueAssigned{
				AssigneeID:   assigneeID,
				Notification: domain.NewIssueAssignedNotification(issueID, iss.ProjectID, iss.Title),
				At:           time.Now(),
			})
		}
		var names []string
		if patch.Tags != nil {
			tags, err := s.normalizer.NormalizeAndSave(ctx, patch.Tags)
			if err != nil {
				return err
			}
			if err := s.tags.DetachAllFromIssue(ctx, issueID); err != nil {
				return err
			}
			names, err = s.attachTags(ctx, issueID, tags)
			if err != nil {
				return err
			}
			if _, err := s.recorder.Log(ctx, &out, issueID, userID, "Tags updated"); err != nil {
				return err
			}
		}

		if err := s.issues.Update(ctx, iss); err != nil {
			return err
		}
		if names == nil {
			names, err = s.loadTagNames(ctx, issueID)
			if err != nil {
				return err
			}
		}
		view = iss.ToView(project.Prefix, names)
		out.Add(domain.IssueUpdated{ProjectID: iss.ProjectID, IssueID: issueID, Issue: view, At: time.Now()})
		return nil
	})
	if err != nil {
		return domain.IssueView{}, err
	}
	if out.Len() > 0 {
		s.dispatcher.Dispatch(out.Drain())
		s.log.Info().Int64("issue_id", int64(issueID)).Msg("updated issue")
	}
	return view, nil
}
