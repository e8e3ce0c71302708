// Package formatter renders catalog contents as text or markdown.
package formatter

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// Source is the read side of the catalog a Snapshot is loaded from
type Source interface {
	GetTables(ctx context.Context) ([]*catalog.Table, error)
	GetIndexes(ctx context.Context) ([]*catalog.Index, error)
	GetDataTypes(ctx context.Context) ([]*catalog.DataType, error)
}

// Snapshot holds the catalog objects one rendering needs
type Snapshot struct {
	Tables    []*catalog.Table
	Indexes   []*catalog.Index
	DataTypes []*catalog.DataType
}

// Load reads every table, index and data type from src. Tables are
// sorted by name.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	tables, err := src.GetTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	indexes, err := src.GetIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	types, err := src.GetDataTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read data types: %w", err)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return &Snapshot{Tables: tables, Indexes: indexes, DataTypes: types}, nil
}

// typeName returns the data type name for id, or its number when the
// id is unknown.
func (s *Snapshot) typeName(id catalog.ObjectID) string {
	for _, dt := range s.DataTypes {
		if dt.ID == id {
			return dt.Name
		}
	}
	return "type#" + strconv.FormatInt(int64(id), 10)
}

// tableIndexes returns the indexes defined on table id.
func (s *Snapshot) tableIndexes(id catalog.ObjectID) []*catalog.Index {
	var out []*catalog.Index
	for _, idx := range s.Indexes {
		if idx.TableID == id {
			out = append(out, idx)
		}
	}
	return out
}

// keyNames resolves index keys (ordinal positions) to column names.
func keyNames(t *catalog.Table, idx *catalog.Index) []string {
	names := make([]string, 0, len(idx.Keys))
	for _, pos := range idx.Keys {
		name := "#" + strconv.FormatInt(pos, 10)
		for _, c := range t.Columns {
			if c.OrdinalPosition == pos {
				name = c.Name
				break
			}
		}
		names = append(names, name)
	}
	return names
}

func indexFlags(idx *catalog.Index) string {
	switch {
	case idx.IsPrimary:
		return " PRIMARY"
	case idx.IsUnique:
		return " UNIQUE"
	}
	return ""
}

func qualifiedName(t *catalog.Table) string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}
