package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

type MembershipRepository struct {
	db *DB
}

func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Empty email and token are stored as NULL so the partial unique
// indexes on invited_email and invite_token only see real values.
const membershipColumns = `id, project_id, user_id, role, status,
	COALESCE(invited_email, ''), COALESCE(invite_token, ''),
	invited_by_user_id, invite_expires_at, created_at, updated_at, version`

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.Status,
		&m.InvitedEmail, &m.InviteToken, &m.InviterID, &m.InviteExpireAt,
		&m.CreatedAt, &m.UpdatedAt, &m.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO project_memberships
			(project_id, user_id, role, status, invited_email, invite_token, invited_by_user_id, invite_expires_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		RETURNING id, created_at, updated_at, version`,
		m.ProjectID, m.UserID, m.Role, m.Status, m.InvitedEmail, m.InviteToken, m.InviterID, m.InviteExpireAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.Version)
	return asConflict(err, "membership already exists")
}

func (r *MembershipRepository) Update(ctx context.Context, m *domain.Membership) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		UPDATE project_memberships
		SET user_id = $1, role = $2, status = $3,
			invited_email = NULLIF($4, ''), invite_token = NULLIF($5, ''),
			invite_expires_at = $6, updated_at = now(), version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version`,
		m.UserID, m.Role, m.Status, m.InvitedEmail, m.InviteToken, m.InviteExpireAt, m.ID, m.Version,
	).Scan(&m.UpdatedAt, &m.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domerrors.Conflict("Membership was modified concurrently")
	}
	return asConflict(err, "membership already exists")
}

func (r *MembershipRepository) GetActive(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error) {
	return scanMembership(r.db.q(ctx).QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM project_memberships
		WHERE project_id = $1 AND user_id = $2 AND status = 'ACTIVE'`,
		projectID, userID))
}

func (r *MembershipRepository) ExistsActive(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_memberships
			WHERE project_id = $1 AND user_id = $2 AND status = 'ACTIVE'
		)`, projectID, userID).Scan(&exists)
	return exists, err
}

func (r *MembershipRepository) GetByInviteToken(ctx context.Context, token string) (*domain.Membership, error) {
	return scanMembership(r.db.q(ctx).QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM project_memberships
		WHERE invite_token = $1`, token))
}

func (r *MembershipRepository) FindInvite(ctx context.Context, projectID domain.ProjectID, email string) (*domain.Membership, error) {
	return scanMembership(r.db.q(ctx).QueryRow(ctx, `
		SELECT `+membershipColumns+`
		FROM project_memberships
		WHERE project_id = $1 AND lower(invited_email) = lower($2) AND status = 'INVITED'`,
		projectID, email))
}

func (r *MembershipRepository) ListActiveByProject(ctx context.Context, projectID domain.ProjectID, page, size int) ([]*domain.Membership, int64, error) {
	q := r.db.q(ctx)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT count(*) FROM project_memberships
		WHERE project_id = $1 AND status = 'ACTIVE'`, projectID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+membershipColumns+`
		FROM project_memberships
		WHERE project_id = $1 AND status = 'ACTIVE'
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`, projectID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

var _ ports.MembershipRepository = (*MembershipRepository)(nil)
