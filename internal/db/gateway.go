package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Gateway executes privileged SQL and surfaces typed results. It is
// stateless between calls: no transaction spans two invocations unless a
// caller composes one explicitly on the underlying connection.
type Gateway struct {
	client *AdminClient
}

// NewGateway wraps an admin client in the execution gateway.
func NewGateway(client *AdminClient) *Gateway {
	return &Gateway{client: client}
}

// Exec runs a statement with no expected result set (DDL, DELETE, GRANT).
// Failures are returned as *SQLError carrying the failing statement; the
// gateway never retries, that policy belongs to the caller.
func (g *Gateway) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := g.client.Conn().Exec(ctx, sql, args...); err != nil {
		return &SQLError{Statement: sql, Err: err}
	}
	return nil
}

// Select runs a query and collects every row into T by column name.
// A query legitimately matching zero rows returns an empty slice, not an
// error.
func Select[T any](ctx context.Context, g *Gateway, sql string, args ...any) ([]T, error) {
	rows, err := g.client.Conn().Query(ctx, sql, args...)
	if err != nil {
		return nil, &SQLError{Statement: sql, Err: err}
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, &SQLError{Statement: sql, Err: err}
	}
	return collected, nil
}

// LookupUserIDByEmail resolves a user identity from the shared auth table.
// Returns nil when no user matches; a multi-row match for a should-be-unique
// email is reported as an error.
func (g *Gateway) LookupUserIDByEmail(ctx context.Context, email string) (*string, error) {
	type row struct {
		ID string `db:"id"`
	}

	matches, err := Select[row](ctx, g, `SELECT id::text AS id FROM auth.users WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0].ID, nil
	default:
		return nil, fmt.Errorf("expected at most one user for email %s, found %d", email, len(matches))
	}
}
