package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement-level database surface. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so repository methods can run inside or outside a
// transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database adds transaction support on top of Querier. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type Database interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
