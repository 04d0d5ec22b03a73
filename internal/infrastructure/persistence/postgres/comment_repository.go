package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, issue_id, author_user_id, body, created_at, updated_at`

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO issue_comments (issue_id, author_user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		c.IssueID, c.AuthorID, c.Body,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CommentRepository) GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error) {
	return scanComment(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+commentColumns+` FROM issue_comments WHERE id = $1`, id))
}

func (r *CommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		UPDATE issue_comments
		SET body = $1, updated_at = now()
		WHERE id = $2
		RETURNING updated_at`,
		c.Body, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domerrors.NotFound("Comment not found")
	}
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, id domain.CommentID) error {
	tag, err := r.db.q(ctx).Exec(ctx,
		`DELETE FROM issue_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.NotFound("Comment not found")
	}
	return nil
}

func (r *CommentRepository) ListByIssue(ctx context.Context, issueID domain.IssueID, page, size int) ([]*domain.Comment, int64, error) {
	q := r.db.q(ctx)

	var total int64
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM issue_comments WHERE issue_id = $1`, issueID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+commentColumns+`
		FROM issue_comments
		WHERE issue_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, issueID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

var _ ports.CommentRepository = (*CommentRepository)(nil)
