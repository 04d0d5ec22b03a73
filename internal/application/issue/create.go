package issue

import (
	"context"
	"strings"
	"time"

	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// CreateInput is the payload for creating an issue.
type CreateInput struct {
	Title          string
	Description    string
	Priority       string
	AssigneeUserID *domain.UserID
	Tags           []string
}

// Create files a new issue. Status always starts OPEN, the creator
// becomes the immutable owner, and the issue number is assigned within
// the project. Emits one "Issue created" audit row and one IssueCreated
// event carrying the materialized view.
func (s *Service) Create(ctx context.Context, userID domain.UserID, projectID domain.ProjectID, in CreateInput) (domain.IssueView, error) {
	var view domain.IssueView
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.access.RequireActiveMember(ctx, userID, projectID); err != nil {
			return err
		}
		project, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domerrors.NotFound("Project not found")
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return domerrors.BadRequest("Title is required")
		}
		priority, err := s.resolvePriority(in.Priority)
		if err != nil {
			return err
		}
		iss := &domain.Issue{
			ProjectID:   projectID,
			Title:       title,
			Description: in.Description,
			Status:      domain.StatusOpen,
			Priority:    priority,
			OwnerID:     userID,
		}
		if in.AssigneeUserID != nil {
			if err := s.validateAssignee(ctx, projectID, *in.AssigneeUserID); err != nil {
				return err
			}
			iss.AssigneeID = in.AssigneeUserID
		}
		if err := s.issues.Create(ctx, iss); err != nil {
			return err
		}
		tags, err := s.normalizer.NormalizeAndSave(ctx, in.Tags)
		if err != nil {
			return err
		}
		names, err := s.attachTags(ctx, iss.ID, tags)
		if err != nil {
			return err
		}
		if _, err := s.recorder.Log(ctx, &out, iss.ID, userID, "Issue created"); err != nil {
			return err
		}
		view = iss.ToView(project.Prefix, names)
		out.Add(domain.IssueCreated{ProjectID: projectID, IssueID: iss.ID, Issue: view, At: time.Now()})
		return nil
	})
	if err != nil {
		return domain.IssueView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	s.log.Info().Int64("issue_id", int64(view.ID)).Str("issue_key", view.IssueKey).Msg("created issue")
	return view, nil
}
