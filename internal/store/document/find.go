package document

import (
	"strconv"

	"github.com/ban-nobuhiro/metadata-manager/internal/catalog"
	"github.com/ban-nobuhiro/metadata-manager/internal/tree"
)

// findByKey returns the position of the first object in coll whose key
// field equals value, or -1.
func findByKey(coll *tree.Node, key catalog.Key, value string) (int, error) {
	if err := key.Validate(); err != nil {
		return -1, err
	}

	var wantID int64
	if key == catalog.KeyID {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			// No object carries a non-numeric id.
			return -1, nil
		}
		wantID = id
	}

	for i, item := range coll.Items() {
		id, ok := item.GetInt(catalog.FieldID)
		if !ok {
			return -1, catalog.Errorf(catalog.ErrInternal, "object at position %d has no id", i)
		}
		switch key {
		case catalog.KeyID:
			if id == wantID {
				return i, nil
			}
		case catalog.KeyName:
			if name, ok := item.GetString(catalog.FieldName); ok && name == value {
				return i, nil
			}
		}
	}
	return -1, nil
}

// nameTaken reports whether an object named name exists in coll.
func nameTaken(coll *tree.Node, name string) bool {
	for _, item := range coll.Items() {
		if n, ok := item.GetString(catalog.FieldName); ok && n == name {
			return true
		}
	}
	return false
}

// stamp sets the id and the management fields of a new object.
func stamp(n *tree.Node, id catalog.ObjectID) {
	n.Set(catalog.FieldID, tree.NewInt(int64(id)))
	n.Set(catalog.FieldFormatVersion, tree.NewInt(catalog.FormatVersion))
	n.Set(catalog.FieldGeneration, tree.NewInt(catalog.Generation))
}

func matchesTable(item *tree.Node, tableID catalog.ObjectID) bool {
	id, ok := item.GetInt(catalog.FieldTableID)
	return ok && catalog.ObjectID(id) == tableID
}

func ordinalOf(item *tree.Node) int64 {
	pos, ok := item.GetInt(catalog.FieldOrdinalPosition)
	if !ok {
		return catalog.InvalidValue
	}
	return pos
}
