// Package tree implements the generic, order-preserving key/value tree
// used as the storage-layer form of every metadata entity.
package tree

import (
	"strconv"
	"strings"
)

// Kind identifies what a Node holds
type Kind int

const (
	Null Kind = iota
	Object
	Array
	String
	Number
	Bool
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Object:
		return "object"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is one value of the tree. Objects keep their keys in insertion
// order and arrays keep their items in order.
type Node struct {
	kind  Kind
	text  string // String and Number
	b     bool
	keys  []string
	vals  map[string]*Node
	items []*Node
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: Object, vals: make(map[string]*Node)}
}

// NewArray returns an array node holding items.
func NewArray(items ...*Node) *Node {
	return &Node{kind: Array, items: items}
}

// NewNull returns a null node.
func NewNull() *Node {
	return &Node{kind: Null}
}

// NewString returns a string leaf.
func NewString(s string) *Node {
	return &Node{kind: String, text: s}
}

// NewInt returns a number leaf.
func NewInt(i int64) *Node {
	return &Node{kind: Number, text: strconv.FormatInt(i, 10)}
}

// NewFloat returns a number leaf.
func NewFloat(f float64) *Node {
	return &Node{kind: Number, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// NewBool returns a boolean leaf.
func NewBool(b bool) *Node {
	return &Node{kind: Bool, b: b}
}

// Ints returns an array of number leaves, in order.
func Ints(values []int64) *Node {
	arr := NewArray()
	for _, v := range values {
		arr.Append(NewInt(v))
	}
	return arr
}

// Kind reports the kind of n. A nil node is Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

// Keys returns the object keys in order.
func (n *Node) Keys() []string {
	if n.Kind() != Object {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Get returns the child stored under key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != Object {
		return nil, false
	}
	child, ok := n.vals[key]
	return child, ok
}

// Set stores child under key. An existing key keeps its position.
func (n *Node) Set(key string, child *Node) *Node {
	if n.kind != Object {
		return n
	}
	if child == nil {
		child = NewNull()
	}
	if _, ok := n.vals[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.vals[key] = child
	return n
}

// Delete removes key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if n.Kind() != Object {
		return false
	}
	if _, ok := n.vals[key]; !ok {
		return false
	}
	delete(n.vals, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of keys or items.
func (n *Node) Len() int {
	switch n.Kind() {
	case Object:
		return len(n.keys)
	case Array:
		return len(n.items)
	default:
		return 0
	}
}

// Items returns the array items in order. The nodes are shared with n.
func (n *Node) Items() []*Node {
	if n.Kind() != Array {
		return nil
	}
	return n.items
}

// Append adds child to the end of an array.
func (n *Node) Append(child *Node) {
	if n.Kind() != Array {
		return
	}
	n.items = append(n.items, child)
}

// RemoveAt removes the i-th item of an array.
func (n *Node) RemoveAt(i int) {
	if n.Kind() != Array || i < 0 || i >= len(n.items) {
		return
	}
	n.items = append(n.items[:i], n.items[i+1:]...)
}

// ReplaceAt swaps the i-th item of an array for child.
func (n *Node) ReplaceAt(i int, child *Node) {
	if n.Kind() != Array || i < 0 || i >= len(n.items) {
		return
	}
	n.items[i] = child
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{kind: n.kind, text: n.text, b: n.b}
	switch n.kind {
	case Object:
		c.keys = append([]string(nil), n.keys...)
		c.vals = make(map[string]*Node, len(n.vals))
		for k, v := range n.vals {
			c.vals[k] = v.Clone()
		}
	case Array:
		c.items = make([]*Node, len(n.items))
		for i, v := range n.items {
			c.items[i] = v.Clone()
		}
	}
	return c
}

// AsString returns the text of a string or number leaf.
func (n *Node) AsString() (string, bool) {
	switch n.Kind() {
	case String, Number:
		return n.text, true
	case Bool:
		return strconv.FormatBool(n.b), true
	default:
		return "", false
	}
}

// AsInt returns the integer value of a number leaf or numeric string.
func (n *Node) AsInt() (int64, bool) {
	switch n.Kind() {
	case Number, String:
		if i, err := strconv.ParseInt(strings.TrimSpace(n.text), 10, 64); err == nil {
			return i, true
		}
		// Whole floats such as 3.0 are accepted.
		f, err := strconv.ParseFloat(strings.TrimSpace(n.text), 64)
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// AsFloat returns the value of a number leaf or numeric string.
func (n *Node) AsFloat() (float64, bool) {
	switch n.Kind() {
	case Number, String:
		f, err := strconv.ParseFloat(strings.TrimSpace(n.text), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsBool returns the value of a boolean leaf. Strings and numbers are
// accepted in the forms relational drivers return them.
func (n *Node) AsBool() (bool, bool) {
	switch n.Kind() {
	case Bool:
		return n.b, true
	case String, Number:
		switch strings.ToLower(strings.TrimSpace(n.text)) {
		case "true", "t", "1", "yes":
			return true, true
		case "false", "f", "0", "no":
			return false, true
		}
	}
	return false, false
}

// GetString returns the string stored under key.
func (n *Node) GetString(key string) (string, bool) {
	child, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return child.AsString()
}

// GetInt returns the integer stored under key.
func (n *Node) GetInt(key string) (int64, bool) {
	child, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	return child.AsInt()
}

// GetFloat returns the number stored under key.
func (n *Node) GetFloat(key string) (float64, bool) {
	child, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	return child.AsFloat()
}

// GetBool returns the boolean stored under key.
func (n *Node) GetBool(key string) (bool, bool) {
	child, ok := n.Get(key)
	if !ok {
		return false, false
	}
	return child.AsBool()
}

// GetInts returns the integers of the array stored under key. A missing
// key yields an empty slice.
func (n *Node) GetInts(key string) ([]int64, bool) {
	child, ok := n.Get(key)
	if !ok || child.Kind() == Null {
		return []int64{}, true
	}
	if child.Kind() != Array {
		return nil, false
	}
	values := make([]int64, 0, len(child.items))
	for _, item := range child.items {
		v, ok := item.AsInt()
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// Equal reports whether a and b hold the same tree, including order.
func Equal(a, b *Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case String, Number:
		return a.text == b.text
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if b.keys[i] != k || !Equal(a.vals[k], b.vals[k]) {
				return false
			}
		}
		return true
	}
	return false
}
