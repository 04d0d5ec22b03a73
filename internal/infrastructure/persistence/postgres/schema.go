package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	email         TEXT NOT NULL,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'USER',
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (lower(username));

CREATE TABLE IF NOT EXISTS projects (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name          TEXT NOT NULL,
	prefix        TEXT NOT NULL,
	owner_user_id BIGINT NOT NULL REFERENCES users(id),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_memberships (
	id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	project_id         BIGINT NOT NULL REFERENCES projects(id),
	user_id            BIGINT REFERENCES users(id),
	role               TEXT NOT NULL,
	status             TEXT NOT NULL,
	invited_email      TEXT,
	invite_token       TEXT,
	invited_by_user_id BIGINT NOT NULL REFERENCES users(id),
	invite_expires_at  TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	version            INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_memberships_active
	ON project_memberships (project_id, user_id) WHERE status = 'ACTIVE';
CREATE UNIQUE INDEX IF NOT EXISTS uq_memberships_invited_email
	ON project_memberships (project_id, lower(invited_email)) WHERE status = 'INVITED';
CREATE UNIQUE INDEX IF NOT EXISTS uq_memberships_invite_token
	ON project_memberships (invite_token) WHERE invite_token IS NOT NULL;

CREATE TABLE IF NOT EXISTS issues (
	id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	project_id       BIGINT NOT NULL REFERENCES projects(id),
	issue_number     INTEGER NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	priority         TEXT NOT NULL,
	owner_user_id    BIGINT NOT NULL REFERENCES users(id),
	assignee_user_id BIGINT REFERENCES users(id),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	closed_at        TIMESTAMPTZ,
	version          INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_issues_project_number
	ON issues (project_id, issue_number);
CREATE INDEX IF NOT EXISTS idx_issues_project_updated
	ON issues (project_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS tags (
	id   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS issue_tags (
	issue_id BIGINT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
	tag_id   BIGINT NOT NULL REFERENCES tags(id),
	PRIMARY KEY (issue_id, tag_id)
);

CREATE TABLE IF NOT EXISTS issue_comments (
	id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	issue_id       BIGINT NOT NULL REFERENCES issues(id),
	author_user_id BIGINT NOT NULL REFERENCES users(id),
	body           TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_comments_issue_created
	ON issue_comments (issue_id, created_at DESC);

CREATE TABLE IF NOT EXISTS issue_activities (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	issue_id      BIGINT NOT NULL REFERENCES issues(id),
	actor_user_id BIGINT NOT NULL REFERENCES users(id),
	message       TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_activities_issue_created
	ON issue_activities (issue_id, created_at DESC);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
	id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	token_hash TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMPTZ NOT NULL,
	used_at    TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
