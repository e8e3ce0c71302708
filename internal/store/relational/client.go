// Package relational implements the metadata store on a relational engine.
//
// Each entity kind owns a fixed catalog of named prepared statements. Rows
// are turned into trees with tree.FromRow and decoded through the same
// codec the document backend uses.
package relational

import "context"

// Result is a fully read query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Client executes named prepared statements on one connection. A client
// runs at most one transaction at a time; statements executed while a
// transaction is open run inside it.
type Client interface {
	Dialect() *Dialect

	// Prepare registers query under name. The query uses $n placeholders.
	Prepare(ctx context.Context, name, query string) error

	// Exec runs a named statement and returns the affected-row count.
	Exec(ctx context.Context, name string, args ...any) (int64, error)

	// Query runs a named statement and reads every row.
	Query(ctx context.Context, name string, args ...any) (*Result, error)

	// Insert runs a named insert and returns the id the engine assigned.
	Insert(ctx context.Context, name string, args ...any) (int64, error)

	// ExecDirect runs an unprepared statement, used for bootstrap DDL.
	ExecDirect(ctx context.Context, query string) error

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	InTransaction() bool

	Close(ctx context.Context) error
}
