package graph

import (
	"encoding/json"
	"math/big"
	"sort"
)

// Dump is the serialisable form of one bank.
type Dump struct {
	Filename string     `yaml:"filename" json:"filename" cbor:"filename"`
	ID       uint32     `yaml:"id" json:"id" cbor:"id"`
	Version  int        `yaml:"version" json:"version" cbor:"version"`
	Nodes    []DumpNode `yaml:"nodes" json:"nodes" cbor:"nodes"`
}

// DumpNode is the serialisable form of one element.
type DumpNode struct {
	Name     string            `yaml:"name" json:"name" cbor:"name"`
	Type     string            `yaml:"type,omitempty" json:"type,omitempty" cbor:"type,omitempty"`
	Value    any               `yaml:"value,omitempty" json:"value,omitempty" cbor:"value,omitempty"`
	Index    *int              `yaml:"index,omitempty" json:"index,omitempty" cbor:"index,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty" cbor:"attrs,omitempty"`
	Children []DumpNode        `yaml:"children,omitempty" json:"children,omitempty" cbor:"children,omitempty"`
}

// FromDump builds the element tree of a bank.
func FromDump(d Dump) *BankElement {
	b := NewBank(d.ID, d.Filename, d.Version)
	for _, n := range d.Nodes {
		b.Append(fromDumpNode(n))
	}
	return b
}

func fromDumpNode(d DumpNode) *Element {
	e := NewElement(d.Name, d.Type, decodedValue(d.Value))
	if d.Index != nil {
		e.SetIndex(*d.Index)
	}
	for _, k := range sortedAttrKeys(d.Attrs) {
		e.SetAttr(k, d.Attrs[k])
	}
	for _, c := range d.Children {
		e.Append(fromDumpNode(c))
	}
	return e
}

// ToDump converts a bank back into its serialisable form.
func ToDump(b Bank) Dump {
	d := Dump{Filename: b.Filename(), ID: b.ID(), Version: b.Version()}
	for _, c := range b.Children() {
		d.Nodes = append(d.Nodes, toDumpNode(c))
	}
	return d
}

func toDumpNode(n Node) DumpNode {
	d := DumpNode{Name: n.Name(), Type: n.Type(), Value: n.Value()}
	if idx, ok := n.Attr("index").(int64); ok {
		i := int(idx)
		d.Index = &i
	}
	if attrs := n.Attrs(); len(attrs) > 0 {
		d.Attrs = make(map[string]string, len(attrs))
		for _, a := range attrs {
			d.Attrs[a.Key] = a.Value
		}
	}
	for _, c := range n.Children() {
		d.Children = append(d.Children, toDumpNode(c))
	}
	return d
}

// sortedAttrKeys puts the naming attributes first, in their usual order.
func sortedAttrKeys(attrs map[string]string) []string {
	rank := func(k string) int {
		for i, name := range NameAttrs {
			if name == k {
				return i
			}
		}
		return len(NameAttrs)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// decodedValue maps decoder-specific number types onto plain scalars.
func decodedValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		if x.IsUint64() {
			return int64(x.Uint64())
		}
	case *big.Float:
		f, _ := x.Float64()
		return f
	}
	return v
}
