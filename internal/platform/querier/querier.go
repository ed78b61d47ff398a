package querier

import (
	"context"
	"database/sql"
)

// Querier is satisfied by *db.DB and *db.Tx. Queries use "?" placeholders
// and are passed through Rebind before execution.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Rebind(query string) string
}
