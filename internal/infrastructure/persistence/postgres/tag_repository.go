package postgres

import (
	"context"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

type TagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Upsert races are settled by the unique index on name: DO NOTHING and
// re-read so concurrent first-uses both end up with the same row.
func (r *TagRepository) Upsert(ctx context.Context, name string) (*domain.Tag, error) {
	q := r.db.q(ctx)
	if _, err := q.Exec(ctx,
		`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return nil, err
	}
	var t domain.Tag
	if err := q.QueryRow(ctx,
		`SELECT id, name FROM tags WHERE name = $1`, name).Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) AttachToIssue(ctx context.Context, issueID domain.IssueID, tagIDs []domain.TagID) error {
	q := r.db.q(ctx)
	for _, tagID := range tagIDs {
		if _, err := q.Exec(ctx, `
			INSERT INTO issue_tags (issue_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, issueID, tagID); err != nil {
			return err
		}
	}
	return nil
}

func (r *TagRepository) DetachAllFromIssue(ctx context.Context, issueID domain.IssueID) error {
	_, err := r.db.q(ctx).Exec(ctx,
		`DELETE FROM issue_tags WHERE issue_id = $1`, issueID)
	return err
}

func (r *TagRepository) NamesForIssues(ctx context.Context, issueIDs []domain.IssueID) (map[domain.IssueID][]string, error) {
	names := make(map[domain.IssueID][]string, len(issueIDs))
	if len(issueIDs) == 0 {
		return names, nil
	}
	ids := make([]int64, len(issueIDs))
	for i, id := range issueIDs {
		ids[i] = int64(id)
	}
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT it.issue_id, t.name
		FROM issue_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.issue_id = ANY($1)
		ORDER BY t.name ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var issueID domain.IssueID
		var name string
		if err := rows.Scan(&issueID, &name); err != nil {
			return nil, err
		}
		names[issueID] = append(names[issueID], name)
	}
	return names, rows.Err()
}

var _ ports.TagRepository = (*TagRepository)(nil)
