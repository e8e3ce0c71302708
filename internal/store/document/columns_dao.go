package document

import (
	"context"
	"sort"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/oid"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// ColumnsDAO stores column objects in columns.json
type ColumnsDAO struct {
	session   *Session
	generator *oid.Generator
}

// Insert appends c as a column of tableID.
func (d *ColumnsDAO) Insert(_ context.Context, tableID catalog.ObjectID, c *catalog.Column) (catalog.ObjectID, error) {
	id := catalog.InvalidObjectID
	err := d.session.Modify(func(coll *tree.Node) error {
		id = d.generator.Generate(catalog.ColumnsTable)
		if id == catalog.InvalidObjectID {
			return catalog.Errorf(catalog.ErrInternal, "failed to generate column id")
		}

		n := codec.EncodeColumn(c)
		n.Set(catalog.FieldTableID, tree.NewInt(int64(tableID)))
		stamp(n, id)
		coll.Append(n)
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return id, nil
}

// SelectByTableID returns the columns of tableID by ordinal position.
func (d *ColumnsDAO) SelectByTableID(_ context.Context, tableID catalog.ObjectID) ([]catalog.Column, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	var columns []catalog.Column
	for _, item := range coll.Items() {
		if !matchesTable(item, tableID) {
			continue
		}
		c, err := codec.DecodeColumn(item)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *c)
	}
	if len(columns) == 0 {
		return nil, catalog.Errorf(catalog.ErrInvalidParameter, "no columns for table id %d", tableID)
	}

	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].OrdinalPosition < columns[j].OrdinalPosition
	})
	return columns, nil
}

// DeleteByTableID removes every column of tableID.
func (d *ColumnsDAO) DeleteByTableID(_ context.Context, tableID catalog.ObjectID) error {
	return d.session.Modify(func(coll *tree.Node) error {
		if removeWhere(coll, func(item *tree.Node) bool { return matchesTable(item, tableID) }) == 0 {
			return catalog.Errorf(catalog.ErrInvalidParameter, "no columns for table id %d", tableID)
		}
		return nil
	})
}

func removeWhere(coll *tree.Node, match func(*tree.Node) bool) int {
	removed := 0
	for i := coll.Len() - 1; i >= 0; i-- {
		if match(coll.Items()[i]) {
			coll.RemoveAt(i)
			removed++
		}
	}
	return removed
}
