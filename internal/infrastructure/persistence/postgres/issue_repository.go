package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

type IssueRepository struct {
	db *DB
}

func NewIssueRepository(db *DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, project_id, issue_number, title, description, status, priority, owner_user_id, assignee_user_id, created_at, updated_at, closed_at, version`

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var i domain.Issue
	err := row.Scan(&i.ID, &i.ProjectID, &i.IssueNumber, &i.Title, &i.Description,
		&i.Status, &i.Priority, &i.OwnerID, &i.AssigneeID,
		&i.CreatedAt, &i.UpdatedAt, &i.ClosedAt, &i.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

// Create assigns issue_number as max+1 within the project. The unique
// index on (project_id, issue_number) turns a racing insert into a
// Conflict the caller can retry.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO issues
			(project_id, issue_number, title, description, status, priority, owner_user_id, assignee_user_id, closed_at)
		VALUES ($1,
			(SELECT COALESCE(MAX(issue_number), 0) + 1 FROM issues WHERE project_id = $1),
			$2, $3, $4, $5, $6, $7, $8)
		RETURNING id, issue_number, created_at, updated_at, version`,
		issue.ProjectID, issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.OwnerID, issue.AssigneeID, issue.ClosedAt,
	).Scan(&issue.ID, &issue.IssueNumber, &issue.CreatedAt, &issue.UpdatedAt, &issue.Version)
	return asConflict(err, "issue number already taken, retry")
}

func (r *IssueRepository) GetByID(ctx context.Context, id domain.IssueID) (*domain.Issue, error) {
	return scanIssue(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
}

func (r *IssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		UPDATE issues
		SET title = $1, description = $2, status = $3, priority = $4,
			assignee_user_id = $5, closed_at = $6,
			updated_at = now(), version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING updated_at, version`,
		issue.Title, issue.Description, issue.Status, issue.Priority,
		issue.AssigneeID, issue.ClosedAt, issue.ID, issue.Version,
	).Scan(&issue.UpdatedAt, &issue.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domerrors.Conflict("Issue was modified concurrently")
	}
	return err
}

func (r *IssueRepository) List(ctx context.Context, projectID domain.ProjectID, filter ports.IssueFilter, page, size int) ([]*domain.Issue, int64, error) {
	where := []string{"i.project_id = $1"}
	args := []any{projectID}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("i.status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		add("i.priority = $%d", filter.Priority)
	}
	if filter.AssigneeID != nil {
		add("i.assignee_user_id = $%d", *filter.AssigneeID)
	}
	if filter.Tag != "" {
		add(`EXISTS (
			SELECT 1 FROM issue_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE it.issue_id = i.id AND t.name = $%d
		)`, filter.Tag)
	}
	if filter.Query != "" {
		add("i.title ILIKE '%%' || $%d || '%%'", filter.Query)
	}
	cond := strings.Join(where, " AND ")

	q := r.db.q(ctx)
	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM issues i WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// SortField has already been vetted against the sort allow-list.
	dir := "DESC"
	if filter.SortAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM issues i WHERE %s ORDER BY i.%s %s, i.id %s LIMIT $%d OFFSET $%d`,
		prefixed("i", issueColumns), cond, filter.SortField, dir, dir, len(args)+1, len(args)+2)
	args = append(args, size, page*size)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var issues []*domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

var _ ports.IssueRepository = (*IssueRepository)(nil)
