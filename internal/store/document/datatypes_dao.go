package document

import (
	"context"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/codec"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// DataTypesDAO reads data types from datatypes.json
type DataTypesDAO struct {
	session *Session
}

// Select returns the data type whose key field equals value.
func (d *DataTypesDAO) Select(_ context.Context, key catalog.Key, value string) (*catalog.DataType, error) {
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
	return codec.DecodeDataType(coll.Items()[pos])
}

// SelectAll returns every data type.
func (d *DataTypesDAO) SelectAll(_ context.Context) ([]*catalog.DataType, error) {
	coll, err := d.session.Collection()
	if err != nil {
		return nil, err
	}

	types := make([]*catalog.DataType, 0, coll.Len())
	for _, item := range coll.Items() {
		dt, err := codec.DecodeDataType(item)
		if err != nil {
			return nil, err
		}
		types = append(types, dt)
	}
	return types, nil
}

// seed writes the default data types when the document holds none. A
// seeded document is left untouched.
func (d *DataTypesDAO) seed() error {
	existing, err := d.session.Collection()
	if err != nil {
		return err
	}
	if existing.Len() > 0 {
		return nil
	}
	return d.session.Modify(func(coll *tree.Node) error {
		for _, dt := range catalog.DefaultDataTypes() {
			coll.Append(codec.EncodeDataType(&dt))
		}
		return nil
	})
}
