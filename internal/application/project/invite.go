package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsmuster/isstrack/internal/application/events"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// inviteTTL is how long an invite token stays valid.
const inviteTTL = 7 * 24 * time.Hour

// Invite adds an email to a project. Owner-only. Behavior by case:
// a live unexpired invite for the email is returned unchanged; an
// already-active member is returned unchanged; a registered user
// without membership is activated directly as MEMBER (MemberAdded
// fires); otherwise an INVITED membership with a fresh token and 7-day
// expiry is created (or an expired invite row is refreshed in place)
// and the invite email is enqueued. No event fires until acceptance.
func (s *Service) Invite(ctx context.Context, userID domain.UserID, projectID domain.ProjectID, email string) (domain.MembershipView, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return domain.MembershipView{}, domerrors.BadRequest("Email is required")
	}
	var view domain.MembershipView
	var out events.Outbox
	var inviteEmail, inviteToken, projectName string
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.access.RequireOwner(ctx, userID, projectID); err != nil {
			return err
		}
		p, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return domerrors.NotFound("Project not found")
		}

		existing, err := s.memberships.FindInvite(ctx, projectID, normalized)
		if err != nil {
			return err
		}
		if existing != nil && existing.InviteExpireAt != nil && existing.InviteExpireAt.After(time.Now()) {
			view = existing.ToView()
			return nil
		}

		user, err := s.users.GetByEmail(ctx, normalized)
		if err != nil {
			return err
		}
		if user != nil {
			active, err := s.memberships.GetActive(ctx, projectID, user.ID)
			if err != nil {
				return err
			}
			if active != nil {
				view = active.ToView()
				return nil
			}
			uid := user.ID
			m := &domain.Membership{
				ProjectID: projectID,
				UserID:    &uid,
				Role:      domain.ProjectRoleMember,
				Status:    domain.MembershipActive,
				InviterID: userID,
			}
			if err := s.memberships.Create(ctx, m); err != nil {
				return err
			}
			view = m.ToView()
			out.Add(domain.MemberAdded{ProjectID: projectID, Membership: view, At: time.Now()})
			return nil
		}

		token := uuid.NewString()
		expires := time.Now().Add(inviteTTL)
		if existing != nil {
			// Lapsed invite: reuse the row with a fresh token.
			existing.InviteToken = token
			existing.InviteExpireAt = &expires
			if err := s.memberships.Update(ctx, existing); err != nil {
				return err
			}
			view = existing.ToView()
		} else {
			m := &domain.Membership{
				ProjectID:      projectID,
				Role:           domain.ProjectRoleMember,
				Status:         domain.MembershipInvited,
				InvitedEmail:   normalized,
				InviteToken:    token,
				InviterID:      userID,
				InviteExpireAt: &expires,
			}
			if err := s.memberships.Create(ctx, m); err != nil {
				return err
			}
			view = m.ToView()
		}
		inviteEmail, inviteToken, projectName = normalized, token, p.Name
		return nil
	})
	if err != nil {
		return domain.MembershipView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	if inviteToken != "" {
		inviteURL := s.inviteBase + "?token=" + inviteToken
		if err := s.enqueuer.EnqueueInviteEmail(ctx, inviteEmail, projectName, inviteURL); err != nil {
			s.log.Warn().Err(err).Str("email", inviteEmail).Msg("enqueue invite email failed")
		}
	}
	return view, nil
}

// AcceptInvite turns an INVITED membership ACTIVE for the accepting
// user. The token is looked up as-is; expiry is deliberately not checked
// here. When the invite names an email, the accepting user's email must
// match case-insensitively. Token and expiry are cleared on acceptance.
func (s *Service) AcceptInvite(ctx context.Context, userID domain.UserID, token string) (domain.MembershipView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.MembershipView{}, domerrors.NotFound("Invite not found")
	}
	var view domain.MembershipView
	var out events.Outbox
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		m, err := s.memberships.GetByInviteToken(ctx, token)
		if err != nil {
			return err
		}
		if m == nil {
			return domerrors.NotFound("Invite not found")
		}
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domerrors.NotFound("User not found")
		}
		if m.InvitedEmail != "" && !strings.EqualFold(m.InvitedEmail, user.Email) {
			return domerrors.BadRequest("Invite email does not match user")
		}
		uid := userID
		m.UserID = &uid
		m.Status = domain.MembershipActive
		m.InviteToken = ""
		m.InviteExpireAt = nil
		if err := s.memberships.Update(ctx, m); err != nil {
			return err
		}
		view = m.ToView()
		out.Add(domain.MemberAdded{ProjectID: m.ProjectID, Membership: view, At: time.Now()})
		return nil
	})
	if err != nil {
		return domain.MembershipView{}, err
	}
	s.dispatcher.Dispatch(out.Drain())
	s.log.Info().Int64("project_id", int64(view.ProjectID)).Int64("user_id", int64(userID)).Msg("invite accepted")
	return view, nil
}
