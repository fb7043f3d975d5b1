package graph

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Node is one element of a decoded bank.
type Node interface {
	// Name returns the object class (CAkEvent) or field name (ulID).
	Name() string
	// Type returns the field type tag ("sid", "tid", "u32"...), empty for objects.
	Type() string
	// Value returns the scalar value: int64, float64, string, bool or nil.
	Value() any
	// Attr returns a named attribute (hashname, guidname, path, objpath,
	// valuefmt, index) or nil.
	Attr(key string) any
	// Attrs returns the extra attributes in a stable order.
	Attrs() []Attr
	Children() []Node
	Parent() Node
	Root() Bank

	// Find returns the only match below this node, nil when there is none
	// and ErrMultipleMatches when more than one element matches.
	Find(q Query) (Node, error)
	// Find1 returns the first match in outer-first order.
	Find1(q Query) Node
	// Finds returns every match in outer-first order.
	Finds(q Query) []Node
}

// Bank is the root element of one decoded bank.
type Bank interface {
	Node
	ID() uint32
	Filename() string
	Dir() string
	Version() int
}

// Attr is a named attribute attached to an element.
type Attr struct {
	Key   string
	Value string
}

// Attribute keys that identify an object by name rather than by id.
var NameAttrs = []string{"hashname", "guidname", "path", "objpath"}

// Element is the in-memory Node implementation.
type Element struct {
	name     string
	typ      string
	value    any
	index    *int
	attrs    []Attr
	children []Node
	parent   *Element
	root     *BankElement
}

// NewElement creates a detached element. Values are normalised to int64,
// float64, string or bool.
func NewElement(name, typ string, value any) *Element {
	return &Element{name: name, typ: typ, value: normalizeValue(value)}
}

// SetIndex sets the position of an object inside its bank list.
func (e *Element) SetIndex(i int) *Element {
	e.index = &i
	return e
}

// SetAttr adds or replaces an extra attribute.
func (e *Element) SetAttr(key, value string) *Element {
	for i := range e.attrs {
		if e.attrs[i].Key == key {
			e.attrs[i].Value = value
			return e
		}
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
	return e
}

// Append adds children and returns the receiver.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		c.parent = e
		c.setRoot(e.root)
		e.children = append(e.children, c)
	}
	return e
}

func (e *Element) setRoot(root *BankElement) {
	if root == nil {
		return
	}
	e.root = root
	for _, c := range e.children {
		c.(*Element).setRoot(root)
	}
}

func (e *Element) Name() string { return e.name }
func (e *Element) Type() string { return e.typ }
func (e *Element) Value() any   { return e.value }

func (e *Element) Attr(key string) any {
	switch key {
	case "name":
		return e.name
	case "type":
		if e.typ == "" {
			return nil
		}
		return e.typ
	case "value":
		return e.value
	case "index":
		if e.index == nil {
			return nil
		}
		return int64(*e.index)
	}
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return nil
}

func (e *Element) Attrs() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

func (e *Element) Children() []Node { return e.children }

func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Root() Bank {
	if e.root == nil {
		return nil
	}
	return e.root
}

func (e *Element) Find(q Query) (Node, error)  { return find(e, q) }
func (e *Element) Find1(q Query) Node         { return find1(e, q) }
func (e *Element) Finds(q Query) []Node       { return finds(e, q) }
func (e *Element) String() string             { return fmt.Sprintf("%s=%v", e.name, e.value) }

// BankElement is the root element of a bank.
type BankElement struct {
	Element
	id       uint32
	filename string
	dir      string
	version  int
}

// NewBank creates an empty bank root.
func NewBank(id uint32, filename string, version int) *BankElement {
	b := &BankElement{id: id, filename: filename, version: version}
	b.name = "root"
	b.root = b
	return b
}

// Append adds top-level children to the bank.
func (b *BankElement) Append(children ...*Element) *BankElement {
	for _, c := range children {
		c.parent = &b.Element
		c.setRoot(b)
		b.children = append(b.children, c)
	}
	return b
}

// SetDir records the directory the bank was loaded from.
func (b *BankElement) SetDir(dir string) *BankElement {
	b.dir = dir
	return b
}

func (b *BankElement) ID() uint32       { return b.id }
func (b *BankElement) Filename() string { return b.filename }
func (b *BankElement) Dir() string      { return b.dir }
func (b *BankElement) Version() int     { return b.version }
func (b *BankElement) Root() Bank       { return b }

func (b *BankElement) Attr(key string) any {
	switch key {
	case "filename":
		return b.filename
	case "path":
		return b.dir
	case "version":
		return int64(b.version)
	}
	return b.Element.Attr(key)
}

func (b *BankElement) Find(q Query) (Node, error) { return find(b, q) }
func (b *BankElement) Find1(q Query) Node        { return find1(b, q) }
func (b *BankElement) Finds(q Query) []Node      { return finds(b, q) }

// BankName returns the bank filename without directory or extension.
func BankName(b Bank) string {
	if b == nil {
		return ""
	}
	base := filepath.Base(b.Filename())
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Int returns the node value as an integer; nil nodes and non-numeric values
// return 0.
func Int(n Node) int64 {
	if n == nil {
		return 0
	}
	switch v := n.Value().(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Uint returns the node value as an unsigned 32-bit id.
func Uint(n Node) uint32 {
	return uint32(Int(n))
}

// Float returns the node value as a float.
func Float(n Node) float64 {
	if n == nil {
		return 0
	}
	switch v := n.Value().(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// Str returns a printable attribute, falling back to the formatted value.
func Str(n Node, key string) string {
	if n == nil {
		return ""
	}
	v := n.Attr(key)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case string, bool:
		return x
	}
	return fmt.Sprint(v)
}

func valuesEqual(a, b any) bool {
	a, b = normalizeValue(a), normalizeValue(b)
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
	}
	return a == b
}
