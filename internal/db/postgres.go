package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AdminClient holds the privileged PostgreSQL connection used for schema
// DDL, grants, and data clearing. It is the only place elevated credentials
// are held.
type AdminClient struct {
	conn *pgx.Conn
}

// NewAdminClient connects with the privileged connection string and verifies
// the connection before returning.
func NewAdminClient(ctx context.Context, connString string) (*AdminClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &AdminClient{conn: conn}, nil
}

// Close closes the database connection.
func (c *AdminClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Conn returns the underlying connection.
func (c *AdminClient) Conn() *pgx.Conn {
	return c.conn
}
