package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLClient executes prepared statements through database/sql. It backs
// the SQLite and MySQL clients.
type SQLClient struct {
	db      *sql.DB
	dialect *Dialect
	stmts   map[string]*sql.Stmt
	tx      *sql.Tx
}

var _ Client = (*SQLClient)(nil)

func newSQLClient(db *sql.DB, dialect *Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: dialect, stmts: make(map[string]*sql.Stmt)}
}

// Dialect returns the client's dialect.
func (c *SQLClient) Dialect() *Dialect {
	return c.dialect
}

// GetDB returns the underlying database connection
func (c *SQLClient) GetDB() *sql.DB {
	return c.db
}

// Prepare prepares query under name, rebinding placeholders for the dialect.
func (c *SQLClient) Prepare(ctx context.Context, name, query string) error {
	stmt, err := c.db.PrepareContext(ctx, c.dialect.Rebind(query))
	if err != nil {
		return fmt.Errorf("failed to prepare statement %s: %w", name, err)
	}
	if old, ok := c.stmts[name]; ok {
		_ = old.Close()
	}
	c.stmts[name] = stmt
	return nil
}

func (c *SQLClient) stmt(ctx context.Context, name string) (*sql.Stmt, error) {
	stmt, ok := c.stmts[name]
	if !ok {
		return nil, fmt.Errorf("statement %s is not prepared", name)
	}
	if c.tx != nil {
		return c.tx.StmtContext(ctx, stmt), nil
	}
	return stmt, nil
}

// Exec runs a prepared statement.
func (c *SQLClient) Exec(ctx context.Context, name string, args ...any) (int64, error) {
	stmt, err := c.stmt(ctx, name)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Query runs a prepared statement and reads every row.
func (c *SQLClient) Query(ctx context.Context, name string, args ...any) (*Result, error) {
	stmt, err := c.stmt(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert runs a prepared insert. With RETURNING the id is read from the
// result row, otherwise from the driver's last insert id.
func (c *SQLClient) Insert(ctx context.Context, name string, args ...any) (int64, error) {
	stmt, err := c.stmt(ctx, name)
	if err != nil {
		return 0, err
	}
	if c.dialect.Returning() {
		var id int64
		if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExecDirect runs query without preparing it.
func (c *SQLClient) ExecDirect(ctx context.Context, query string) error {
	var err error
	if c.tx != nil {
		_, err = c.tx.ExecContext(ctx, query)
	} else {
		_, err = c.db.ExecContext(ctx, query)
	}
	return err
}

// Begin opens a transaction.
func (c *SQLClient) Begin(ctx context.Context) error {
	if c.tx != nil {
		return errors.New("transaction already open")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *SQLClient) Commit(_ context.Context) error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit()
}

// Rollback aborts the open transaction.
func (c *SQLClient) Rollback(_ context.Context) error {
	if c.tx == nil {
		return errors.New("no open transaction")
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback()
}

// InTransaction reports whether a transaction is open.
func (c *SQLClient) InTransaction() bool {
	return c.tx != nil
}

// Close closes the prepared statements and the database connection
func (c *SQLClient) Close(_ context.Context) error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	for name, stmt := range c.stmts {
		_ = stmt.Close()
		delete(c.stmts, name)
	}
	return c.db.Close()
}
