package issue

import (
	"context"
	"strings"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/application/tag"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// sortColumns is the allow-list of caller-sortable fields mapped to
// storage columns. Anything else silently falls back to the default.
var sortColumns = map[string]string{
	"updatedAt": "updated_at",
	"createdAt": "created_at",
	"title":     "title",
}

// ResolveSort parses a "field,direction" sort request against the
// allow-list. Unrecognized input falls back to updatedAt descending
// rather than erroring.
func ResolveSort(sort string) (column string, asc bool) {
	column, asc = "updated_at", false
	if strings.TrimSpace(sort) == "" {
		return column, asc
	}
	parts := strings.Split(sort, ",")
	field := strings.TrimSpace(parts[0])
	col, ok := sortColumns[field]
	if !ok {
		return column, asc
	}
	column = col
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
		asc = true
	}
	return column, asc
}

// ListInput carries the optional filters and sort for issue listing.
type ListInput struct {
	Status     string
	Priority   string
	AssigneeID *domain.UserID
	Tag        string
	Query      string
	Sort       string
	Page       int
	Size       int
}

// List pages issues in a project under a conjunctive predicate. Tags for
// the whole result set are loaded in one batched lookup.
func (s *Service) List(ctx context.Context, userID domain.UserID, projectID domain.ProjectID, in ListInput) (domain.Page[domain.IssueView], error) {
	var zero domain.Page[domain.IssueView]
	if err := s.access.RequireActiveMember(ctx, userID, projectID); err != nil {
		return zero, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return zero, err
	}
	if project == nil {
		return zero, domerrors.NotFound("Project not found")
	}
	column, asc := ResolveSort(in.Sort)
	var status, priority string
	if strings.TrimSpace(in.Status) != "" {
		st, err := s.resolveStatus(in.Status)
		if err != nil {
			return zero, err
		}
		status = string(st)
	}
	if strings.TrimSpace(in.Priority) != "" {
		pr, err := s.resolvePriority(in.Priority)
		if err != nil {
			return zero, err
		}
		priority = string(pr)
	}
	filter := ports.IssueFilter{
		Status:     status,
		Priority:   priority,
		AssigneeID: in.AssigneeID,
		Tag:        tag.Normalize(in.Tag),
		Query:      strings.TrimSpace(in.Query),
		SortField:  column,
		SortAsc:    asc,
	}
	page, size := domain.ClampPageRequest(in.Page, in.Size, 20)
	rows, total, err := s.issues.List(ctx, projectID, filter, page, size)
	if err != nil {
		return zero, err
	}
	ids := make([]domain.IssueID, 0, len(rows))
	for _, iss := range rows {
		ids = append(ids, iss.ID)
	}
	tagsByIssue, err := s.tags.NamesForIssues(ctx, ids)
	if err != nil {
		return zero, err
	}
	items := make([]domain.IssueView, 0, len(rows))
	for _, iss := range rows {
		items = append(items, iss.ToView(project.Prefix, tagsByIssue[iss.ID]))
	}
	return domain.NewPage(items, page, size, total), nil
}
