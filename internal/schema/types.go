// Package schema describes tables read from a live database before they
// are registered in the catalog.
package schema

// Schema represents the tables of one database schema
type Schema struct {
	Tables []Table
}

// Table represents a database table
type Table struct {
	Name      string
	Namespace string
	// RowEstimate is negative when the source has no estimate.
	RowEstimate float64
	Columns     []Column
	Indexes     []Index
}

// Column represents a table column
type Column struct {
	Name         string
	Position     int64 // 1-based
	Type         string
	Nullable     bool
	DefaultValue *string
}

// Index represents a database index
type Index struct {
	Name      string
	Columns   []string
	IsUnique  bool
	IsPrimary bool
}
