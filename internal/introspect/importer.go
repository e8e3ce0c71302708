package introspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/provider"
	"github.com/ban-nobuhiro/metadata-manager/internal/schema"
)

// Importer registers extracted tables in the catalog
type Importer struct {
	provider *provider.Provider
	logger   *slog.Logger
}

// NewImporter creates an importer writing through p. A nil logger uses
// slog.Default().
func NewImporter(p *provider.Provider, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{provider: p, logger: logger}
}

// Skipped names a table or index that was not imported.
type Skipped struct {
	Name   string
	Reason string
}

// Result reports what an import changed.
type Result struct {
	Tables  []catalog.ObjectID
	Indexes []catalog.ObjectID
	Skipped []Skipped
}

// Import adds every table of s to the catalog, then its row estimate and
// its indexes. Tables already in the catalog, tables with a column type the
// catalog cannot represent, and indexes whose name is taken are skipped and
// reported. Any other error stops the import. The table being imported when
// it fails is removed again together with its indexes; tables finished
// before it stay.
func (im *Importer) Import(ctx context.Context, s *schema.Schema) (*Result, error) {
	typeIDs, err := im.dataTypeIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i := range s.Tables {
		src := &s.Tables[i]

		t, reason := toCatalogTable(src, typeIDs)
		if reason != "" {
			result.skip(im.logger, src.Name, reason)
			continue
		}

		tableID, err := im.provider.AddTable(ctx, t)
		if errors.Is(err, catalog.ErrAlreadyExists) {
			result.skip(im.logger, src.Name, "table already exists")
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to import table %s: %w", src.Name, err)
		}

		indexIDs, err := im.completeTable(ctx, tableID, src, result)
		if err != nil {
			im.discard(ctx, tableID, indexIDs)
			return result, err
		}
		result.Tables = append(result.Tables, tableID)
		result.Indexes = append(result.Indexes, indexIDs...)
	}
	return result, nil
}

// completeTable records the row estimate and indexes of a freshly added
// table. It returns the ids of the indexes added, also on failure.
func (im *Importer) completeTable(ctx context.Context, tableID catalog.ObjectID, src *schema.Table, result *Result) ([]catalog.ObjectID, error) {
	if src.RowEstimate >= 0 {
		stat := &catalog.Table{Object: catalog.Object{ID: tableID}, Tuples: src.RowEstimate}
		if _, err := im.provider.SetTableStatistic(ctx, stat); err != nil {
			return nil, fmt.Errorf("failed to set row estimate of %s: %w", src.Name, err)
		}
	}
	return im.importIndexes(ctx, tableID, src, result)
}

// discard removes a partly imported table and its indexes.
func (im *Importer) discard(ctx context.Context, tableID catalog.ObjectID, indexIDs []catalog.ObjectID) {
	for _, id := range indexIDs {
		if _, err := im.provider.RemoveIndex(ctx, catalog.KeyID, formatID(id)); err != nil {
			im.logger.Warn("failed to remove index of a failed import", "id", id, "error", err)
		}
	}
	if _, err := im.provider.RemoveTable(ctx, catalog.KeyID, formatID(tableID)); err != nil {
		im.logger.Warn("failed to remove table of a failed import", "id", tableID, "error", err)
	}
}

func (im *Importer) importIndexes(ctx context.Context, tableID catalog.ObjectID, src *schema.Table, result *Result) ([]catalog.ObjectID, error) {
	var added []catalog.ObjectID
	if len(src.Indexes) == 0 {
		return added, nil
	}

	stored, err := im.provider.GetTable(ctx, catalog.KeyID, formatID(tableID))
	if err != nil {
		return added, fmt.Errorf("failed to read back table %s: %w", src.Name, err)
	}
	byName := make(map[string]catalog.Column, len(stored.Columns))
	for _, c := range stored.Columns {
		byName[c.Name] = c
	}

	for _, si := range src.Indexes {
		idx := &catalog.Index{
			Object:    catalog.Object{Name: si.Name},
			TableID:   tableID,
			IsUnique:  si.IsUnique,
			IsPrimary: si.IsPrimary,
			Keys:      []int64{},
			KeysID:    []int64{},
			Options:   []int64{},
		}
		for _, name := range si.Columns {
			c, ok := byName[name]
			if !ok {
				return added, fmt.Errorf("index %s references unknown column %s", si.Name, name)
			}
			idx.Keys = append(idx.Keys, c.OrdinalPosition)
			idx.KeysID = append(idx.KeysID, int64(c.ID))
		}
		idx.NumberOfColumns = int64(len(idx.Keys))
		idx.NumberOfKeyColumns = int64(len(idx.Keys))

		id, err := im.provider.AddIndex(ctx, idx)
		if errors.Is(err, catalog.ErrAlreadyExists) {
			result.skip(im.logger, si.Name, "index name already taken")
			continue
		}
		if err != nil {
			return added, fmt.Errorf("failed to import index %s: %w", si.Name, err)
		}
		added = append(added, id)
	}
	return added, nil
}

func formatID(id catalog.ObjectID) string {
	return strconv.FormatInt(int64(id), 10)
}

func (im *Importer) dataTypeIDs(ctx context.Context) (map[string]catalog.ObjectID, error) {
	types, err := im.provider.GetDataTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read data types: %w", err)
	}
	ids := make(map[string]catalog.ObjectID, len(types))
	for _, dt := range types {
		ids[dt.Name] = dt.ID
	}
	return ids, nil
}

// toCatalogTable converts src, or returns why it cannot be represented.
func toCatalogTable(src *schema.Table, typeIDs map[string]catalog.ObjectID) (*catalog.Table, string) {
	t := &catalog.Table{
		Object:    catalog.Object{Name: src.Name},
		Namespace: src.Namespace,
		Columns:   make([]catalog.Column, 0, len(src.Columns)),
	}
	for _, sc := range src.Columns {
		id, ok := typeIDs[MapType(sc.Type)]
		if !ok {
			return nil, fmt.Sprintf("column %s has unsupported type %q", sc.Name, sc.Type)
		}
		c := catalog.Column{
			Object:          catalog.Object{Name: sc.Name},
			OrdinalPosition: sc.Position,
			DataTypeID:      id,
			Nullable:        catalog.Bool(sc.Nullable),
		}
		if sc.DefaultValue != nil {
			c.DefaultExpression = catalog.String(*sc.DefaultValue)
		}
		t.Columns = append(t.Columns, c)
	}
	return t, ""
}

func (r *Result) skip(logger *slog.Logger, name, reason string) {
	logger.Warn("skipped during import", "name", name, "reason", reason)
	r.Skipped = append(r.Skipped, Skipped{Name: name, Reason: reason})
}
