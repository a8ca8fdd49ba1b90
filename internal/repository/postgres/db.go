// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"errors"

	xerrors "takataka-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Queryer is satisfied by both *pgxpool.Pool and pgx.Tx, so repository
// methods can run the same SQL inside or outside a transaction.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation reports a 23505 from Postgres, i.e. a unique or
// exclusion constraint raced by a concurrent writer.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// mapNoRows converts pgx.ErrNoRows into the application's NotFoundError.
func mapNoRows(err error, entity string, id interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.NotFoundf(entity, id)
	}
	return err
}
