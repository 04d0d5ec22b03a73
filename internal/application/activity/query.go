package activity

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// QueryService serves the audit log behind the membership gate.
type QueryService struct {
	activities ports.ActivityRepository
	issues     ports.IssueRepository
	access     *access.Service
}

func NewQueryService(activities ports.ActivityRepository, issues ports.IssueRepository, accessSvc *access.Service) *QueryService {
	return &QueryService{activities: activities, issues: issues, access: accessSvc}
}

// ListByIssue pages an issue's audit entries, newest first.
func (s *QueryService) ListByIssue(ctx context.Context, userID domain.UserID, issueID domain.IssueID, page, size int) (domain.Page[domain.ActivityView], error) {
	var zero domain.Page[domain.ActivityView]
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return zero, err
	}
	if issue == nil {
		return zero, domerrors.NotFound("Issue not found")
	}
	if err := s.access.RequireActiveMember(ctx, userID, issue.ProjectID); err != nil {
		return zero, err
	}
	page, size = domain.ClampPageRequest(page, size, 20)
	rows, total, err := s.activities.ListByIssue(ctx, issueID, page, size)
	if err != nil {
		return zero, err
	}
	items := make([]domain.ActivityView, 0, len(rows))
	for _, a := range rows {
		items = append(items, a.ToView())
	}
	return domain.NewPage(items, page, size, total), nil
}
