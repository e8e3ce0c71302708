package document

import (
	"context"
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/oid"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// IndexesDAO stores index objects in indexes.json
type IndexesDAO struct {
	session   *Session
	generator *oid.Generator
}

// Insert appends idx and returns the issued id.
func (d *IndexesDAO) Insert(_ context.Context, idx *catalog.Index) (catalog.ObjectID, error) {
	id := catalog.InvalidObjectID
	err := d.session.Modify(func(coll *tree.Node) error {
		if nameTaken(coll, idx.Name) {
			return catalog.Errorf(catalog.ErrInternal, "unique constraint violated: index name %q", idx.Name)
		}

		id = d.generator.Generate(catalog.IndexesTable)
		if id == catalog.InvalidObjectID {
			return catalog.Errorf(catalog.ErrInternal, "failed to generate index id")
		}

		n := codec.EncodeIndex(idx)
		stamp(n, id)
		coll.Append(n)
		return nil
	})
	if err != nil {
		return catalog.InvalidObjectID, err
	}
	return id, nil
}

// Select returns the index whose key field equals value.
func (d *IndexesDAO) Select(_ context.Context, key catalog.Key, value string) (*catalog.Index, error) {
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
	return codec.DecodeIndex(coll.Items()[pos])
}

// SelectAll returns every index in document order.
func (d *IndexesDAO) SelectAll(_ context.Context) ([]*catalog.Index, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	indexes := make([]*catalog.Index, 0, coll.Len())
	for _, item := range coll.Items() {
		idx, err := codec.DecodeIndex(item)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}

// Update replaces the index object, keeping its id and management fields.
func (d *IndexesDAO) Update(_ context.Context, id catalog.ObjectID, idx *catalog.Index) error {
	return d.session.Modify(func(coll *tree.Node) error {
		pos, err := findByKey(coll, catalog.KeyID, strconv.FormatInt(int64(id), 10))
		if err != nil {
			return err
		}
		if pos < 0 {
			return catalog.ErrIDNotFound
		}

		old := coll.Items()[pos]
		if name, _ := old.GetString(catalog.FieldName); name != idx.Name && nameTaken(coll, idx.Name) {
			return catalog.Errorf(catalog.ErrInternal, "unique constraint violated: index name %q", idx.Name)
		}
		n := codec.EncodeIndex(idx)
		for _, k := range []string{catalog.FieldID, catalog.FieldFormatVersion, catalog.FieldGeneration} {
			if v, ok := old.Get(k); ok {
				n.Set(k, v.Clone())
			}
		}
		coll.ReplaceAt(pos, n)
		return nil
	})
}

// Delete removes one index object and returns its id.
func (d *IndexesDAO) Delete(_ context.Context, key catalog.Key, value string) (catalog.ObjectID, error) {
	return deleteByKey(d.session, key, value)
}
