package postgres

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	return r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO issue_activities (issue_id, actor_user_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		a.IssueID, a.ActorID, a.Message,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *ActivityRepository) ListByIssue(ctx context.Context, issueID domain.IssueID, page, size int) ([]*domain.Activity, int64, error) {
	q := r.db.q(ctx)

	var total int64
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM issue_activities WHERE issue_id = $1`, issueID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, issue_id, actor_user_id, message, created_at
		FROM issue_activities
		WHERE issue_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, issueID, size, page*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.IssueID, &a.ActorID, &a.Message, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)
