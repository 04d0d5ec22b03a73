// Package project manages projects and their memberships: creation,
// invitation, invite acceptance and the member/project listings.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/access"
	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// Service implements the project and membership manager.
type Service struct {
	tx          ports.Transactor
	projects    ports.ProjectRepository
	memberships ports.MembershipRepository
	users       ports.UserRepository
	access      *access.Service
	dispatcher  ports.EventDispatcher
	enqueuer    ports.TaskEnqueuer
	inviteBase  string
	log         zerolog.Logger
}

func NewService(
	tx ports.Transactor,
	projects ports.ProjectRepository,
	memberships ports.MembershipRepository,
	users ports.UserRepository,
	accessSvc *access.Service,
	dispatcher ports.EventDispatcher,
	enqueuer ports.TaskEnqueuer,
	inviteBaseURL string,
	log zerolog.Logger,
) *Service {
	return &Service{
		tx:          tx,
		projects:    projects,
		memberships: memberships,
		users:       users,
		access:      accessSvc,
		dispatcher:  dispatcher,
		enqueuer:    enqueuer,
		inviteBase:  inviteBaseURL,
		log:         log,
	}
}

// Create creates a project and, in the same transaction, an OWNER/ACTIVE
// membership for the creator. Emits MemberAdded for that membership.
func (s *Service) Create(ctx context.Context, ownerID domain.UserID, name, prefix string) (domain.ProjectView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ProjectView{}, domerrors.BadRequest("Project name is required")
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if !domain.ValidPrefix(prefix) {
		return domain.ProjectView{}, domerrors.BadRequest("Prefix must be 2-10 uppercase letters and digits, starting with a letter")
	}
	var view domain.ProjectView
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		owner, err := s.users.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return domerrors.NotFound("User not found")
		}
		p := &domain.Project{Name: name, Prefix: prefix, OwnerID: ownerID}
		if err := s.projects.Create(ctx, p); err != nil {
			return err
		}
		uid := ownerID
		m := &domain.Membership{
			ProjectID: p.ID,
			UserID:    &uid,
			Role:      domain.ProjectRoleOwner,
			Status:    domain.MembershipActive,
			InviterID: ownerID,
		}
		if err := s.memberships.Create(ctx, m); err != nil {
			return err
		}
		view = toProjectView(p, owner.Email)
		out.Add(domain.MemberAdded{ProjectID: p.ID, Membership: m.ToView(), At: time.Now()})
		return nil
	})
	if err != nil {
		return domain.ProjectView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	s.log.Info().Int64("project_id", int64(view.ID)).Str("prefix", prefix).Msg("created project")
	return view, nil
}

// ListMine pages projects where the caller holds an ACTIVE membership,
// newest-created first.
func (s *Service) ListMine(ctx context.Context, userID domain.UserID, page, size int) (domain.Page[domain.ProjectView], error) {
	var zero domain.Page[domain.ProjectView]
	page, size = domain.ClampPageRequest(page, size, 20)
	rows, total, err := s.projects.ListForMember(ctx, userID, page, size)
	if err != nil {
		return zero, err
	}
	items := make([]domain.ProjectView, 0, len(rows))
	for _, p := range rows {
		owner, err := s.users.GetByID(ctx, p.OwnerID)
		if err != nil {
			return zero, err
		}
		email := ""
		if owner != nil {
			email = owner.Email
		}
		items = append(items, toProjectView(p, email))
	}
	return domain.NewPage(items, page, size, total), nil
}

// Get returns one project behind the membership gate.
func (s *Service) Get(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (domain.ProjectView, error) {
	if err := s.access.RequireActiveMember(ctx, userID, projectID); err != nil {
		return domain.ProjectView{}, err
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return domain.ProjectView{}, err
	}
	if p == nil {
		return domain.ProjectView{}, domerrors.NotFound("Project not found")
	}
	owner, err := s.users.GetByID(ctx, p.OwnerID)
	if err != nil {
		return domain.ProjectView{}, err
	}
	email := ""
	if owner != nil {
		email = owner.Email
	}
	return toProjectView(p, email), nil
}

// ListMembers pages a project's ACTIVE memberships, newest first.
func (s *Service) ListMembers(ctx context.Context, userID domain.UserID, projectID domain.ProjectID, page, size int) (domain.Page[domain.MembershipView], error) {
	var zero domain.Page[domain.MembershipView]
	if err := s.access.RequireActiveMember(ctx, userID, projectID); err != nil {
		return zero, err
	}
	page, size = domain.ClampPageRequest(page, size, 20)
	rows, total, err := s.memberships.ListActiveByProject(ctx, projectID, page, size)
	if err != nil {
		return zero, err
	}
	items := make([]domain.MembershipView, 0, len(rows))
	for _, m := range rows {
		items = append(items, m.ToView())
	}
	return domain.NewPage(items, page, size, total), nil
}

func toProjectView(p *domain.Project, ownerEmail string) domain.ProjectView {
	return domain.ProjectView{
		ID:         p.ID,
		Name:       p.Name,
		Prefix:     p.Prefix,
		OwnerID:    p.OwnerID,
		OwnerEmail: ownerEmail,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
