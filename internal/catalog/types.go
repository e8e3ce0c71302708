// Package catalog defines the metadata records stored by the catalog and
// the error values every backend reports.
package catalog

import "github.com/ban-nobuhiro/metadata-manager/internal/tree"

// ObjectID identifies a metadata object within its entity-table namespace.
type ObjectID int64

const (
	// InvalidObjectID marks an absent or unissued object id.
	InvalidObjectID ObjectID = 0

	// InvalidValue marks an absent numeric field.
	InvalidValue int64 = -1

	// FormatVersion is stamped on every object at creation.
	FormatVersion int64 = 1

	// Generation is stamped on every object at creation.
	Generation int64 = 1
)

// Object holds the fields shared by every metadata record
type Object struct {
	ID            ObjectID
	Name          string
	FormatVersion int64
	Generation    int64
}

// Table represents a table and the columns it owns
type Table struct {
	Object
	Namespace string
	Tuples    float64
	Columns   []Column
}

// Column represents a table column
type Column struct {
	Object
	TableID           ObjectID
	OrdinalPosition   int64
	DataTypeID        ObjectID
	Nullable          *bool
	DefaultExpression *string
}

// ColumnStatistic is the statistics payload of one column, keyed by
// (TableID, OrdinalPosition). The payload format belongs to the caller.
type ColumnStatistic struct {
	TableID         ObjectID
	OrdinalPosition int64
	Statistic       *tree.Node
}

// Index represents an index over table columns
type Index struct {
	Object
	TableID            ObjectID
	OwnerID            ObjectID
	AccessMethod       int64
	IsUnique           bool
	IsPrimary          bool
	NumberOfColumns    int64
	NumberOfKeyColumns int64
	Keys               []int64
	KeysID             []int64
	Options            []int64
}

// DataType is read-only reference data consulted during column validation
type DataType struct {
	Object
	PgDataType              int64
	PgDataTypeName          string
	PgDataTypeQualifiedName string
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s, for optional string fields.
func String(s string) *string {
	return &s
}
