// Package postgres implements the application ports against PostgreSQL
// via pgx. Transactions are carried in the context so every repository
// participates in the use case's transaction transparently.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsmuster/isstrack/internal/application/ports"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// DBTX is the querier surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// DB wraps the pool and implements ports.Transactor.
type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Pool exposes the underlying pool for health checks.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// InTx runs fn inside one transaction. A nested call joins the
// transaction already in the context instead of opening another.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func txFrom(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// q returns the in-context transaction when present, else the pool.
func (d *DB) q(ctx context.Context) DBTX {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return d.pool
}

// prefixed qualifies every column in a comma-separated list with a
// table alias, for joins that reuse a shared column set.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

// uniqueViolation reports a PostgreSQL unique-constraint failure.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// asConflict maps a unique violation to the domain Conflict kind so the
// caller can retry; other errors pass through.
func asConflict(err error, msg string) error {
	if uniqueViolation(err) {
		return domerrors.Wrap(domerrors.KindConflict, msg, err)
	}
	return err
}

var _ ports.Transactor = (*DB)(nil)
