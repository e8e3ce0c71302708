package tree

import (
	"fmt"
	"math/big"
	"time"
)

// FromRow builds an object node from one relational result row. Columns
// listed in jsonColumns hold serialized JSON text and are parsed into
// subtrees; empty or NULL values there become null nodes.
func FromRow(columns []string, values []any, jsonColumns ...string) (*Node, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("row has %d values for %d columns", len(values), len(columns))
	}

	isJSON := make(map[string]bool, len(jsonColumns))
	for _, c := range jsonColumns {
		isJSON[c] = true
	}

	obj := NewObject()
	for i, col := range columns {
		if isJSON[col] {
			child, err := parseColumn(values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			obj.Set(col, child)
			continue
		}
		child, err := FromValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		obj.Set(col, child)
	}
	return obj, nil
}

// FromValue converts a scalar driver value into a leaf.
func FromValue(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case string:
		return NewString(x), nil
	case []byte:
		return NewString(string(x)), nil
	case bool:
		return NewBool(x), nil
	case int64:
		return NewInt(x), nil
	case int32:
		return NewInt(int64(x)), nil
	case int16:
		return NewInt(int64(x)), nil
	case int8:
		return NewInt(int64(x)), nil
	case int:
		return NewInt(int64(x)), nil
	case uint64:
		return &Node{kind: Number, text: fmt.Sprintf("%d", x)}, nil
	case uint32:
		return NewInt(int64(x)), nil
	case float64:
		return NewFloat(x), nil
	case float32:
		return NewFloat(float64(x)), nil
	case *big.Int:
		return &Node{kind: Number, text: x.String()}, nil
	case time.Time:
		return NewString(x.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func parseColumn(v any) (*Node, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	case map[string]any, []any:
		// pgx decodes json/jsonb columns itself.
		return fromDecoded(x)
	default:
		return nil, fmt.Errorf("unsupported json value type %T", v)
	}
	if len(raw) == 0 {
		return NewNull(), nil
	}
	return Parse(raw)
}

func fromDecoded(v any) (*Node, error) {
	switch x := v.(type) {
	case map[string]any:
		obj := NewObject()
		for k, child := range x {
			c, err := fromDecoded(child)
			if err != nil {
				return nil, err
			}
			obj.Set(k, c)
		}
		return obj, nil
	case []any:
		arr := NewArray()
		for _, child := range x {
			c, err := fromDecoded(child)
			if err != nil {
				return nil, err
			}
			arr.Append(c)
		}
		return arr, nil
	default:
		return FromValue(v)
	}
}
