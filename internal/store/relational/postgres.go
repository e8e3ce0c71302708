package relational

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgQuerier is satisfied by both *pgx.Conn and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresClient manages the connection to PostgreSQL. Statements are
// prepared server side and executed by name.
type PostgresClient struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

var _ Client = (*PostgresClient)(nil)

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Dialect returns the PostgreSQL dialect.
func (c *PostgresClient) Dialect() *Dialect {
	return Postgres
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

func (c *PostgresClient) querier() pgQuerier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

// Prepare prepares query on the server under name.
func (c *PostgresClient) Prepare(ctx context.Context, name, query string) error {
	if _, err := c.conn.Prepare(ctx, name, query); err != nil {
		return fmt.Errorf("failed to prepare statement %s: %w", name, err)
	}
	return nil
}

// Exec runs a prepared statement.
func (c *PostgresClient) Exec(ctx context.Context, name string, args ...any) (int64, error) {
	tag, err := c.querier().Exec(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query runs a prepared statement and reads every row.
func (c *PostgresClient) Query(ctx context.Context, name string, args ...any) (*Result, error) {
	rows, err := c.querier().Query(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert runs a prepared insert ending in RETURNING id.
func (c *PostgresClient) Insert(ctx context.Context, name string, args ...any) (int64, error) {
	var id int64
	if err := c.querier().QueryRow(ctx, name, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ExecDirect runs query without preparing it.
func (c *PostgresClient) ExecDirect(ctx context.Context, query string) error {
	_, err := c.querier().Exec(ctx, query)
	return err
}

// Begin opens a transaction.
func (c *PostgresClient) Begin(ctx context.Context) error {
	if c.tx != nil {
		return errors.New("transaction already open")
	}
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *PostgresClient) Commit(ctx context.Context) error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit(ctx)
}

// Rollback aborts the open transaction.
func (c *PostgresClient) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback(ctx)
}

// InTransaction reports whether a transaction is open.
func (c *PostgresClient) InTransaction() bool {
	return c.tx != nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	if c.tx != nil {
		_ = c.tx.Rollback(ctx)
		c.tx = nil
	}
	return c.conn.Close(ctx)
}
