// Package access is the authorization gate for project-scoped data.
// Every use case calls it before mutating or disclosing anything; the
// checks read fresh inside the caller's transaction, never from a cache.
package access

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// Service answers membership and ownership questions for one project.
type Service struct {
	memberships ports.MembershipRepository
}

func NewService(memberships ports.MembershipRepository) *Service {
	return &Service{memberships: memberships}
}

// RequireActiveMember fails with Forbidden unless the user holds an
// ACTIVE membership on the project.
func (s *Service) RequireActiveMember(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) error {
	ok, err := s.memberships.ExistsActive(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.Forbidden("Not a project member")
	}
	return nil
}

// RequireOwner fails with Forbidden unless the user holds an ACTIVE
// membership with the OWNER role.
func (s *Service) RequireOwner(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) error {
	m, err := s.memberships.GetActive(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return domerrors.Forbidden("Not a project member")
	}
	if m.Role != domain.ProjectRoleOwner {
		return domerrors.Forbidden("Owner role required")
	}
	return nil
}
