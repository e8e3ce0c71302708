package provider

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
)

// AddTable stores t together with its columns and returns the new table id.
//
// Nothing is written when validation fails. A failing column insert rolls
// back the table row and every column inserted before it. When the table
// insert itself fails and a table with the same name exists afterwards,
// the error is ErrAlreadyExists.
func (p *Provider) AddTable(ctx context.Context, t *catalog.Table) (catalog.ObjectID, error) {
	if err := p.validateTable(ctx, t); err != nil {
		return catalog.InvalidObjectID, err
	}

	tableID := catalog.InvalidObjectID
	tableInsertFailed := false
	err := p.transact(ctx, "add table", func(ctx context.Context) error {
		id, err := p.store.Tables().Insert(ctx, t)
		if err != nil {
			tableInsertFailed = true
			return err
		}
		tableID = id

		for i := range t.Columns {
			if _, err := p.store.Columns().Insert(ctx, id, &t.Columns[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if tableInsertFailed {
			// Tell a duplicate name apart from any other insert failure.
			existing, selectErr := p.store.Tables().Select(ctx, catalog.KeyName, t.Name)
			if selectErr == nil && existing.ID != catalog.InvalidObjectID {
				return catalog.InvalidObjectID, catalog.Errorf(catalog.ErrAlreadyExists, "table %q", t.Name)
			}
		}
		return catalog.InvalidObjectID, err
	}

	p.logger.Info("added table", "id", tableID, "name", t.Name, "columns", len(t.Columns))
	return tableID, nil
}

// GetTable returns the table whose key field equals value, with its
// columns ordered by ordinal position. A table without columns has an
// empty column list.
func (p *Provider) GetTable(ctx context.Context, key catalog.Key, value string) (*catalog.Table, error) {
	t, err := p.store.Tables().Select(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if err := p.attachColumns(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTables returns every table with its columns. The first failing
// column lookup aborts the whole read.
func (p *Provider) GetTables(ctx context.Context) ([]*catalog.Table, error) {
	tables, err := p.store.Tables().SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if err := p.attachColumns(ctx, t); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// GetTableStatistic returns the table row alone, without columns.
func (p *Provider) GetTableStatistic(ctx context.Context, key catalog.Key, value string) (*catalog.Table, error) {
	return p.store.Tables().Select(ctx, key, value)
}

// SetTableStatistic updates the tuple-count estimate of the table named by
// t.ID, or by t.Name when t.ID is unset, and returns the table id.
func (p *Provider) SetTableStatistic(ctx context.Context, t *catalog.Table) (catalog.ObjectID, error) {
	var key catalog.Key
	var value string
	switch {
	case t.ID != catalog.InvalidObjectID:
		key, value = catalog.KeyID, strconv.FormatInt(int64(t.ID), 10)
	case t.Name != "":
		key, value = catalog.KeyName, t.Name
	default:
		return catalog.InvalidObjectID, catalog.Errorf(catalog.ErrInvalidParameter, "table id or name is required")
	}
	if t.Tuples < 0 || math.IsNaN(t.Tuples) || math.IsInf(t.Tuples, 0) {
		return catalog.InvalidObjectID, catalog.Errorf(catalog.ErrInvalidParameter, "tuples must be a non-negative number")
	}

	tableID := catalog.InvalidObjectID
	err := p.transact(ctx, "set table statistic", func(ctx context.Context) error {
		id, err := p.store.Tables().UpdateTuples(ctx, key, value, t.Tuples)
		if err != nil {
			return err
		}
		tableID = id
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return tableID, nil
}

// RemoveTable deletes the table whose key field equals value, its columns
// and its column statistics, and returns the removed table id.
func (p *Provider) RemoveTable(ctx context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	tableID := catalog.InvalidObjectID
	err := p.transact(ctx, "remove table", func(ctx context.Context) error {
		id, err := p.store.Tables().Delete(ctx, key, value)
		if err != nil {
			return err
		}
		tableID = id

		// A table need not have columns or statistics.
		if err := p.store.Columns().DeleteByTableID(ctx, id); err != nil && !errors.Is(err, catalog.ErrInvalidParameter) {
			return err
		}
		if err := p.store.Statistics().DeleteByTableID(ctx, id); err != nil && !errors.Is(err, catalog.ErrInvalidParameter) {
			return err
		}
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}

	p.logger.Info("removed table", "id", tableID)
	return tableID, nil
}

func (p *Provider) attachColumns(ctx context.Context, t *catalog.Table) error {
	columns, err := p.store.Columns().SelectByTableID(ctx, t.ID)
	if errors.Is(err, catalog.ErrInvalidParameter) {
		t.Columns = []catalog.Column{}
		return nil
	}
	if err != nil {
		return err
	}
	t.Columns = columns
	return nil
}

// validateTable checks t and every column before any transaction opens.
func (p *Provider) validateTable(ctx context.Context, t *catalog.Table) error {
	if t.Name == "" {
		return catalog.Errorf(catalog.ErrInvalidParameter, "table name is required")
	}
	names := make(map[string]bool, len(t.Columns))
	positions := make(map[int64]bool, len(t.Columns))
	for i := range t.Columns {
		c := &t.Columns[i]
		if c.Name == "" {
			return catalog.Errorf(catalog.ErrInvalidParameter, "table %q: column %d has no name", t.Name, i)
		}
		if names[c.Name] {
			return catalog.Errorf(catalog.ErrInvalidParameter, "table %q: duplicate column name %q", t.Name, c.Name)
		}
		names[c.Name] = true

		if c.OrdinalPosition <= 0 {
			return catalog.Errorf(catalog.ErrInvalidParameter, "column %q: ordinal position must be positive", c.Name)
		}
		if positions[c.OrdinalPosition] {
			return catalog.Errorf(catalog.ErrInvalidParameter, "column %q: duplicate ordinal position %d", c.Name, c.OrdinalPosition)
		}
		positions[c.OrdinalPosition] = true

		if c.DataTypeID <= catalog.InvalidObjectID {
			return catalog.Errorf(catalog.ErrInvalidParameter, "column %q: data type id is required", c.Name)
		}
		if _, err := p.store.DataTypes().Select(ctx, catalog.KeyID, strconv.FormatInt(int64(c.DataTypeID), 10)); err != nil {
			return catalog.Errorf(catalog.ErrInvalidParameter, "column %q: unknown data type id %d", c.Name, c.DataTypeID)
		}
		if c.Nullable == nil {
			return catalog.Errorf(catalog.ErrInvalidParameter, "column %q: nullable is required", c.Name)
		}
	}
	return nil
}
