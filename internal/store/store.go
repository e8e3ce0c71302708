// Package store defines the capability interface both catalog backends
// implement and the per-entity data access objects they hand out.
//
// A store has at most one open transaction. DAOs obtained from a store run
// inside that transaction when one is open and on their own otherwise.
package store

import (
	"context"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// MetadataStore is implemented by the relational and the document backend.
type MetadataStore interface {
	StartTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Tables() TablesDAO
	Columns() ColumnsDAO
	Statistics() StatisticsDAO
	Indexes() IndexesDAO
	DataTypes() DataTypesDAO

	Close(ctx context.Context) error
}

// TablesDAO accesses table rows. Columns are not part of a table row.
type TablesDAO interface {
	// Insert stores t and returns its new id. A duplicate name fails like
	// a unique-constraint violation; the caller classifies it.
	Insert(ctx context.Context, t *catalog.Table) (catalog.ObjectID, error)
	Select(ctx context.Context, key catalog.Key, value string) (*catalog.Table, error)
	SelectAll(ctx context.Context) ([]*catalog.Table, error)
	UpdateTuples(ctx context.Context, key catalog.Key, value string, tuples float64) (catalog.ObjectID, error)
	Delete(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error)
}

// ColumnsDAO accesses column rows.
type ColumnsDAO interface {
	Insert(ctx context.Context, tableID catalog.ObjectID, c *catalog.Column) (catalog.ObjectID, error)
	// SelectByTableID returns columns ordered by ordinal position. No
	// matching rows is ErrInvalidParameter.
	SelectByTableID(ctx context.Context, tableID catalog.ObjectID) ([]catalog.Column, error)
	// DeleteByTableID removes every column of the table; at least one row
	// must be removed.
	DeleteByTableID(ctx context.Context, tableID catalog.ObjectID) error
}

// StatisticsDAO accesses column statistics keyed by (table id, ordinal position).
type StatisticsDAO interface {
	// Upsert inserts or replaces the statistic; exactly one row is affected.
	Upsert(ctx context.Context, s *catalog.ColumnStatistic) error
	Select(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) (*catalog.ColumnStatistic, error)
	// SelectByTableID returns statistics ordered by ordinal position. No
	// matching rows is ErrInvalidParameter.
	SelectByTableID(ctx context.Context, tableID catalog.ObjectID) ([]*catalog.ColumnStatistic, error)
	Delete(ctx context.Context, tableID catalog.ObjectID, ordinalPosition int64) error
	DeleteByTableID(ctx context.Context, tableID catalog.ObjectID) error
}

// IndexesDAO accesses index rows.
type IndexesDAO interface {
	Insert(ctx context.Context, idx *catalog.Index) (catalog.ObjectID, error)
	Select(ctx context.Context, key catalog.Key, value string) (*catalog.Index, error)
	SelectAll(ctx context.Context) ([]*catalog.Index, error)
	// Update replaces every field except id, format_version and generation.
	Update(ctx context.Context, id catalog.ObjectID, idx *catalog.Index) error
	Delete(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error)
}

// DataTypesDAO reads the reference data types.
type DataTypesDAO interface {
	Select(ctx context.Context, key catalog.Key, value string) (*catalog.DataType, error)
	SelectAll(ctx context.Context) ([]*catalog.DataType, error)
}
