// Package issue implements the issue lifecycle engine and the
// filtering/pagination query layer over issues.
package issue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/activity"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/application/tag"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// Service creates, patches and queries issues. Every mutation runs in
// one transaction, passes the access gate, appends audit rows and
// stages domain events that are dispatched only after commit.
type Service struct {
	tx          ports.Transactor
	issues      ports.IssueRepository
	projects    ports.ProjectRepository
	users       ports.UserRepository
	memberships ports.MembershipRepository
	tags        ports.TagRepository
	comments    ports.CommentRepository
	activities  ports.ActivityRepository
	access      *access.Service
	normalizer  *tag.Normalizer
	recorder    *activity.Recorder
	dispatcher  ports.EventDispatcher
	log         zerolog.Logger
}

func NewService(
	tx ports.Transactor,
	issues ports.IssueRepository,
	projects ports.ProjectRepository,
	users ports.UserRepository,
	memberships ports.MembershipRepository,
	tags ports.TagRepository,
	comments ports.CommentRepository,
	activities ports.ActivityRepository,
	accessSvc *access.Service,
	normalizer *tag.Normalizer,
	recorder *activity.Recorder,
	dispatcher ports.EventDispatcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		tx:          tx,
		issues:      issues,
		projects:    projects,
		users:       users,
		memberships: memberships,
		tags:        tags,
		comments:    comments,
		activities:  activities,
		access:      accessSvc,
		normalizer:  normalizer,
		recorder:    recorder,
		dispatcher:  dispatcher,
		log:         log,
	}
}

func (s *Service) resolveStatus(name string) (domain.Status, error) {
	status, ok := domain.ResolveStatus(name)
	if !ok {
		return "", domerrors.BadRequest("Invalid status")
	}
	return status, nil
}

func (s *Service) resolvePriority(name string) (domain.Priority, error) {
	priority, ok := domain.ResolvePriority(name)
	if !ok {
		return "", domerrors.BadRequest("Invalid priority")
	}
	return priority, nil
}

// validateAssignee checks the target exists and is an ACTIVE member of
// the project at assignment time. Later membership revocation is not
// re-validated.
func (s *Service) validateAssignee(ctx context.Context, projectID domain.ProjectID, assigneeID domain.UserID) error {
	exists, err := s.users.Exists(ctx, assigneeID)
	if err != nil {
		return err
	}
	if !exists {
		return domerrors.BadRequest("Assignee user does not exist")
	}
	member, err := s.memberships.ExistsActive(ctx, projectID, assigneeID)
	if err != nil {
		return err
	}
	if !member {
		return domerrors.BadRequest("Assignee must be an active member of the project")
	}
	return nil
}

// loadTagNames fetches the tag names for one issue.
func (s *Service) loadTagNames(ctx context.Context, issueID domain.IssueID) ([]string, error) {
	byIssue, err := s.tags.NamesForIssues(ctx, []domain.IssueID{issueID})
	if err != nil {
		return nil, err
	}
	return byIssue[issueID], nil
}

// attachTags replaces nothing; it links the resolved tags to the issue
// and returns their names in resolution order.
func (s *Service) attachTags(ctx context.Context, issueID domain.IssueID, tags []*domain.Tag) ([]string, error) {
	ids := make([]domain.TagID, 0, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
		names = append(names, t.Name)
	}
	if len(ids) > 0 {
		if err := s.tags.AttachToIssue(ctx, issueID, ids); err != nil {
			return nil, err
		}
	}
	return names, nil
}
