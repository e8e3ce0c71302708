package relational

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteClient creates a new SQLite client on the database file at path.
// Foreign keys are off; the catalog keeps parent/child consistency itself.
func NewSQLiteClient(ctx context.Context, path string) (*SQLClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps transactions and :memory: databases on one handle.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newSQLClient(db, SQLite), nil
}
