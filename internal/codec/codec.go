// Package codec maps metadata records to and from their generic tree form.
//
// Every field absent from a tree decodes to its sentinel: InvalidObjectID
// for ids, InvalidValue for numbers, empty slices for sequences and nil for
// optional values. A node of the wrong shape is ErrInternal.
package codec

import (
	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// Collection returns the root collection stored under key.
func Collection(root *tree.Node, key string) (*tree.Node, error) {
	if root.Kind() != tree.Object {
		return nil, catalog.Errorf(catalog.ErrInternal, "document root is %s, not an object", root.Kind())
	}
	coll, ok := root.Get(key)
	if !ok {
		return nil, catalog.Errorf(catalog.ErrInternal, "root collection %q is missing", key)
	}
	if coll.Kind() != tree.Array {
		return nil, catalog.Errorf(catalog.ErrInternal, "root collection %q is %s, not an array", key, coll.Kind())
	}
	return coll, nil
}

// EncodeTable converts t and its columns into a tree.
func EncodeTable(t *catalog.Table) *tree.Node {
	n := encodeObject(&t.Object)
	n.Set(catalog.FieldNamespace, tree.NewString(t.Namespace))
	n.Set(catalog.FieldTuples, tree.NewFloat(t.Tuples))

	columns := tree.NewArray()
	for i := range t.Columns {
		columns.Append(EncodeColumn(&t.Columns[i]))
	}
	n.Set(catalog.FieldColumns, columns)
	return n
}

// DecodeTable converts a tree into a table, including any columns subtree.
func DecodeTable(n *tree.Node) (*catalog.Table, error) {
	if err := expectObject(n, "table"); err != nil {
		return nil, err
	}

	t := &catalog.Table{Object: decodeObject(n)}
	t.Namespace, _ = n.GetString(catalog.FieldNamespace)
	t.Tuples = float64(catalog.InvalidValue)
	if v, ok := n.GetFloat(catalog.FieldTuples); ok {
		t.Tuples = v
	}

	t.Columns = []catalog.Column{}
	if columns, ok := n.Get(catalog.FieldColumns); ok && columns.Kind() != tree.Null {
		if columns.Kind() != tree.Array {
			return nil, catalog.Errorf(catalog.ErrInternal, "table %q: columns is %s, not an array", t.Name, columns.Kind())
		}
		for _, item := range columns.Items() {
			c, err := DecodeColumn(item)
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, *c)
		}
	}
	return t, nil
}

// EncodeColumn converts c into a tree.
func EncodeColumn(c *catalog.Column) *tree.Node {
	n := encodeObject(&c.Object)
	n.Set(catalog.FieldTableID, tree.NewInt(int64(c.TableID)))
	n.Set(catalog.FieldOrdinalPosition, tree.NewInt(c.OrdinalPosition))
	n.Set(catalog.FieldDataTypeID, tree.NewInt(int64(c.DataTypeID)))
	if c.Nullable != nil {
		n.Set(catalog.FieldNullable, tree.NewBool(*c.Nullable))
	}
	if c.DefaultExpression != nil {
		n.Set(catalog.FieldDefaultExpression, tree.NewString(*c.DefaultExpression))
	}
	return n
}

// DecodeColumn converts a tree into a column. Nullability is read from a
// boolean or from "YES"/"NO".
func DecodeColumn(n *tree.Node) (*catalog.Column, error) {
	if err := expectObject(n, "column"); err != nil {
		return nil, err
	}

	c := &catalog.Column{Object: decodeObject(n)}
	c.TableID = getID(n, catalog.FieldTableID)
	c.OrdinalPosition = getValue(n, catalog.FieldOrdinalPosition)
	c.DataTypeID = getID(n, catalog.FieldDataTypeID)

	if v, ok := n.Get(catalog.FieldNullable); ok && v.Kind() != tree.Null {
		b, ok := v.AsBool()
		if !ok {
			return nil, catalog.Errorf(catalog.ErrInvalidParameter, "column %q: nullable is not a boolean", c.Name)
		}
		c.Nullable = catalog.Bool(b)
	}
	if v, ok := n.Get(catalog.FieldDefaultExpression); ok && v.Kind() != tree.Null {
		if s, ok := v.AsString(); ok {
			c.DefaultExpression = catalog.String(s)
		}
	}
	return c, nil
}

// EncodeColumnStatistic converts s into a tree.
func EncodeColumnStatistic(s *catalog.ColumnStatistic) *tree.Node {
	n := tree.NewObject()
	n.Set(catalog.FieldTableID, tree.NewInt(int64(s.TableID)))
	n.Set(catalog.FieldOrdinalPosition, tree.NewInt(s.OrdinalPosition))
	if s.Statistic != nil {
		n.Set(catalog.FieldColumnStatistic, s.Statistic.Clone())
	} else {
		n.Set(catalog.FieldColumnStatistic, tree.NewNull())
	}
	return n
}

// DecodeColumnStatistic converts a tree into a column statistic.
func DecodeColumnStatistic(n *tree.Node) (*catalog.ColumnStatistic, error) {
	if err := expectObject(n, "column statistic"); err != nil {
		return nil, err
	}

	s := &catalog.ColumnStatistic{
		TableID:         getID(n, catalog.FieldTableID),
		OrdinalPosition: getValue(n, catalog.FieldOrdinalPosition),
	}
	if v, ok := n.Get(catalog.FieldColumnStatistic); ok && v.Kind() != tree.Null {
		s.Statistic = v.Clone()
	}
	return s, nil
}

// EncodeIndex converts idx into a tree. Key and option sequences keep their order.
func EncodeIndex(idx *catalog.Index) *tree.Node {
	n := encodeObject(&idx.Object)
	n.Set(catalog.FieldTableID, tree.NewInt(int64(idx.TableID)))
	n.Set(catalog.FieldOwnerID, tree.NewInt(int64(idx.OwnerID)))
	n.Set(catalog.FieldAccessMethod, tree.NewInt(idx.AccessMethod))
	n.Set(catalog.FieldIsUnique, tree.NewBool(idx.IsUnique))
	n.Set(catalog.FieldIsPrimary, tree.NewBool(idx.IsPrimary))
	n.Set(catalog.FieldNumberOfColumns, tree.NewInt(idx.NumberOfColumns))
	n.Set(catalog.FieldNumberOfKeyColumns, tree.NewInt(idx.NumberOfKeyColumns))
	n.Set(catalog.FieldKeys, tree.Ints(idx.Keys))
	n.Set(catalog.FieldKeysID, tree.Ints(idx.KeysID))
	n.Set(catalog.FieldOptions, tree.Ints(idx.Options))
	return n
}

// DecodeIndex converts a tree into an index.
func DecodeIndex(n *tree.Node) (*catalog.Index, error) {
	if err := expectObject(n, "index"); err != nil {
		return nil, err
	}

	idx := &catalog.Index{Object: decodeObject(n)}
	idx.TableID = getID(n, catalog.FieldTableID)
	idx.OwnerID = getID(n, catalog.FieldOwnerID)
	idx.AccessMethod = getValue(n, catalog.FieldAccessMethod)
	idx.IsUnique, _ = n.GetBool(catalog.FieldIsUnique)
	idx.IsPrimary, _ = n.GetBool(catalog.FieldIsPrimary)
	idx.NumberOfColumns = getValue(n, catalog.FieldNumberOfColumns)
	idx.NumberOfKeyColumns = getValue(n, catalog.FieldNumberOfKeyColumns)

	var ok bool
	if idx.Keys, ok = n.GetInts(catalog.FieldKeys); !ok {
		return nil, catalog.Errorf(catalog.ErrInternal, "index %q: keys is not an integer array", idx.Name)
	}
	if idx.KeysID, ok = n.GetInts(catalog.FieldKeysID); !ok {
		return nil, catalog.Errorf(catalog.ErrInternal, "index %q: keys_id is not an integer array", idx.Name)
	}
	if idx.Options, ok = n.GetInts(catalog.FieldOptions); !ok {
		return nil, catalog.Errorf(catalog.ErrInternal, "index %q: options is not an integer array", idx.Name)
	}
	return idx, nil
}

// EncodeDataType converts d into a tree.
func EncodeDataType(d *catalog.DataType) *tree.Node {
	n := encodeObject(&d.Object)
	n.Set(catalog.FieldPgDataType, tree.NewInt(d.PgDataType))
	n.Set(catalog.FieldPgDataTypeName, tree.NewString(d.PgDataTypeName))
	n.Set(catalog.FieldPgDataTypeQualifiedName, tree.NewString(d.PgDataTypeQualifiedName))
	return n
}

// DecodeDataType converts a tree into a data type.
func DecodeDataType(n *tree.Node) (*catalog.DataType, error) {
	if err := expectObject(n, "data type"); err != nil {
		return nil, err
	}

	d := &catalog.DataType{Object: decodeObject(n)}
	d.PgDataType = getValue(n, catalog.FieldPgDataType)
	d.PgDataTypeName, _ = n.GetString(catalog.FieldPgDataTypeName)
	d.PgDataTypeQualifiedName, _ = n.GetString(catalog.FieldPgDataTypeQualifiedName)
	return d, nil
}

func encodeObject(o *catalog.Object) *tree.Node {
	n := tree.NewObject()
	n.Set(catalog.FieldID, tree.NewInt(int64(o.ID)))
	n.Set(catalog.FieldName, tree.NewString(o.Name))
	n.Set(catalog.FieldFormatVersion, tree.NewInt(o.FormatVersion))
	n.Set(catalog.FieldGeneration, tree.NewInt(o.Generation))
	return n
}

func decodeObject(n *tree.Node) catalog.Object {
	o := catalog.Object{
		ID:            getID(n, catalog.FieldID),
		FormatVersion: getValue(n, catalog.FieldFormatVersion),
		Generation:    getValue(n, catalog.FieldGeneration),
	}
	o.Name, _ = n.GetString(catalog.FieldName)
	return o
}

func getID(n *tree.Node, key string) catalog.ObjectID {
	if v, ok := n.GetInt(key); ok {
		return catalog.ObjectID(v)
	}
	return catalog.InvalidObjectID
}

func getValue(n *tree.Node, key string) int64 {
	if v, ok := n.GetInt(key); ok {
		return v
	}
	return catalog.InvalidValue
}

func expectObject(n *tree.Node, what string) error {
	if n.Kind() != tree.Object {
		return catalog.Errorf(catalog.ErrInternal, "%s node is %s, not an object", what, n.Kind())
	}
	return nil
}
