package issue

import (
	"context"

	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// DetailInput selects the comment and activity pages for the detail call.
type DetailInput struct {
	CommentsPage int
	CommentsSize int
	ActivityPage int
	ActivitySize int
}

// Detail assembles the issue view, its raw description, one page of
// comments and one page of activity (both newest first) in a single
// read-oriented call.
func (s *Service) Detail(ctx context.Context, userID domain.UserID, issueID domain.IssueID, in DetailInput) (*domain.IssueDetail, error) {
	iss, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if iss == nil {
		return nil, domerrors.NotFound("Issue not found")
	}
	if err := s.access.RequireActiveMember(ctx, userID, iss.ProjectID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, iss.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domerrors.NotFound("Project not found")
	}
	names, err := s.loadTagNames(ctx, issueID)
	if err != nil {
		return nil, err
	}

	commentsPage, commentsSize := domain.ClampPageRequest(in.CommentsPage, in.CommentsSize, 20)
	commentRows, commentTotal, err := s.comments.ListByIssue(ctx, issueID, commentsPage, commentsSize)
	if err != nil {
		return nil, err
	}
	commentItems := make([]domain.CommentView, 0, len(commentRows))
	for _, c := range commentRows {
		commentItems = append(commentItems, c.ToView())
	}

	activityPage, activitySize := domain.ClampPageRequest(in.ActivityPage, in.ActivitySize, 20)
	activityRows, activityTotal, err := s.activities.ListByIssue(ctx, issueID, activityPage, activitySize)
	if err != nil {
		return nil, err
	}
	activityItems := make([]domain.ActivityView, 0, len(activityRows))
	for _, a := range activityRows {
		activityItems = append(activityItems, a.ToView())
	}

	return &domain.IssueDetail{
		Issue:       iss.ToView(project.Prefix, names),
		Description: iss.Description,
		Comments:    domain.NewPage(commentItems, commentsPage, commentsSize, commentTotal),
		Activity:    domain.NewPage(activityItems, activityPage, activitySize, activityTotal),
	}, nil
}
