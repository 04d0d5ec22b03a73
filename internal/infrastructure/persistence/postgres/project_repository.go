package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, prefix, owner_user_id, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Prefix, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO projects (name, prefix, owner_user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		project.Name, project.Prefix, project.OwnerID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	return asConflict(err, "project already exists")
}

func (r *ProjectRepository) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return scanProject(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *ProjectRepository) ListForMember(ctx context.Context, userID domain.UserID, page, size int) ([]*domain.Project, int64, error) {
	q := r.db.q(ctx)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT count(*)
		FROM projects p
		JOIN project_memberships m ON m.project_id = p.id
		WHERE m.user_id = $1 AND m.status = 'ACTIVE'`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+prefixed("p", projectColumns)+`
		FROM projects p
		JOIN project_memberships m ON m.project_id = p.id
		WHERE m.user_id = $1 AND m.status = 'ACTIVE'
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`, userID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

var _ ports.ProjectRepository = (*ProjectRepository)(nil)
