package document

import (
	"context"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/oid"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// TablesDAO stores table objects in tables.json
type TablesDAO struct {
	session   *Session
	generator *oid.Generator
}

// Insert appends t without its columns and returns the issued id.
func (d *TablesDAO) Insert(_ context.Context, t *catalog.Table) (catalog.ObjectID, error) {
	id := catalog.InvalidObjectID
	err := d.session.Modify(func(coll *tree.Node) error {
		if nameTaken(coll, t.Name) {
			return catalog.Errorf(catalog.ErrInternal, "unique constraint violated: table name %q", t.Name)
		}

		id = d.generator.Generate(catalog.TablesTable)
		if id == catalog.InvalidObjectID {
			return catalog.Errorf(catalog.ErrInternal, "failed to generate table id")
		}

		n := codec.EncodeTable(t)
		n.Delete(catalog.FieldColumns)
		stamp(n, id)
		coll.Append(n)
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return id, nil
}

// Select returns the table whose key field equals value.
func (d *TablesDAO) Select(_ context.Context, key catalog.Key, value string) (*catalog.Table, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	pos, err := findByKey(coll, key, value)
	if err != nil {
		return nil, err
	}
	if pos < 0 {
		return nil, key.NotFound()
	}
	return codec.DecodeTable(coll.Items()[pos])
}

// SelectAll returns every table in document order.
func (d *TablesDAO) SelectAll(_ context.Context) ([]*catalog.Table, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	tables := make([]*catalog.Table, 0, coll.Len())
	for _, item := range coll.Items() {
		t, err := codec.DecodeTable(item)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// UpdateTuples sets the tuple-count estimate of one table.
func (d *TablesDAO) UpdateTuples(_ context.Context, key catalog.Key, value string, tuples float64) (catalog.ObjectID, error) {
	id := catalog.InvalidObjectID
	err := d.session.Modify(func(coll *tree.Node) error {
		pos, err := findByKey(coll, key, value)
		if err != nil {
			return err
		}
		if pos < 0 {
			return key.NotFound()
		}

		item := coll.Items()[pos]
		item.Set(catalog.FieldTuples, tree.NewFloat(tuples))
		v, _ := item.GetInt(catalog.FieldID)
		id = catalog.ObjectID(v)
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return id, nil
}

// Delete removes one table object and returns its id.
func (d *TablesDAO) Delete(_ context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	return deleteByKey(d.session, key, value)
}

func deleteByKey(session *Session, key catalog.Key, value string) (catalog.ObjectID, error) {
	id := catalog.InvalidObjectID
	err := session.Modify(func(coll *tree.Node) error {
		pos, err := findByKey(coll, key, value)
		if err != nil {
			return err
		}
		if pos < 0 {
			return key.NotFound()
		}

		v, _ := coll.Items()[pos].GetInt(catalog.FieldID)
		id = catalog.ObjectID(v)
		coll.RemoveAt(pos)
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return id, nil
}
