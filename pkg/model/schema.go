package model

import (
	"fmt"
	"slices"
	"sort"
)

// FieldKind is the binding kind of a declared field.
type FieldKind uint8

const (
	// AttributeField binds to a node attribute.
	AttributeField FieldKind = iota
	// ElementField binds to at most one child element.
	ElementField
	// ElementListField binds to a repeated child element.
	ElementListField
)

// String returns the binding kind name.
func (k FieldKind) String() string {
	switch k {
	case AttributeField:
		return "ATTRIBUTE"
	case ElementField:
		return "ELEMENT"
	case ElementListField:
		return "ELEMENT_LIST"
	default:
		return "UNKNOWN"
	}
}

// Field is one declared attribute or owned sub-element of a variant.
type Field struct {
	Name     string
	Kind     FieldKind
	Optional bool

	// Decimal marks fields compared with tolerance.
	Decimal bool

	// Default is the textual value applied when an attribute is absent.
	Default string

	format func(e Entity) (string, bool)
	parse  func(e Entity, s string) error
	encode func(e Entity) []*Node
	decode func(e Entity, nodes []*Node) error
	equal  func(a, b Entity) bool
	copy   func(dst, src Entity)
}

// ChildGroup is a group of child descriptors with a shared element tag.
type ChildGroup struct {
	Tag     string
	Accepts []NodeType
}

// accepts reports whether t may be placed in the group.
func (g ChildGroup) accepts(t NodeType) bool {
	return slices.Contains(g.Accepts, t)
}

// Schema is the declarative binding of one variant.
type Schema struct {
	Type   NodeType
	Fields []Field
	Groups []ChildGroup

	// order lists all element tags (owned elements and groups) in declaration order.
	order []string
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// GroupFor returns the child group accepting t.
func (s *Schema) GroupFor(t NodeType) (ChildGroup, bool) {
	for _, g := range s.Groups {
		if g.accepts(t) {
			return g, true
		}
	}
	return ChildGroup{}, false
}

// ElementOrder returns the declared element tags in order.
func (s *Schema) ElementOrder() []string {
	return slices.Clone(s.order)
}

// OrderChildren sorts nodes by declared element order. Nodes sharing a tag keep
// their relative order. A node with an undeclared tag is an error.
func (s *Schema) OrderChildren(nodes []*Node) ([]*Node, error) {
	rank := make(map[string]int, len(s.order))
	for i, tag := range s.order {
		rank[tag] = i
	}
	for _, n := range nodes {
		if _, ok := rank[n.Tag]; !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrUndeclaredChild, n.Tag, s.Type)
		}
	}
	out := slices.Clone(nodes)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Tag] < rank[out[j].Tag]
	})
	return out, nil
}

// schemaBuilder assembles a Schema in declaration order.
type schemaBuilder struct {
	s *Schema
}

func newSchema(t NodeType) *schemaBuilder {
	return &schemaBuilder{s: &Schema{Type: t}}
}

func (b *schemaBuilder) fields(fs ...Field) *schemaBuilder {
	for _, f := range fs {
		b.s.Fields = append(b.s.Fields, f)
		if f.Kind != AttributeField {
			b.s.order = append(b.s.order, f.Name)
		}
	}
	return b
}

func (b *schemaBuilder) group(tag string, accepts ...NodeType) *schemaBuilder {
	b.s.Groups = append(b.s.Groups, ChildGroup{Tag: tag, Accepts: accepts})
	b.s.order = append(b.s.order, tag)
	return b
}

func (b *schemaBuilder) build() *Schema {
	return b.s
}

// attrCodec converts an attribute value to and from text.
type attrCodec[V any] struct {
	format  func(V) string
	parse   func(string) (V, error)
	equal   func(a, b V) bool
	clone   func(V) V
	decimal bool
}

// fieldOption adjusts a field at construction.
type fieldOption func(*Field)

func optional() fieldOption {
	return func(f *Field) { f.Optional = true }
}

func withDefault(text string) fieldOption {
	return func(f *Field) { f.Default = text }
}

// attribute binds a value attribute. Optional attributes are omitted while
// they hold the zero value.
func attribute[V comparable](name string, c attrCodec[V], get func(Entity) *V, opts ...fieldOption) Field {
	f := Field{Name: name, Kind: AttributeField, Decimal: c.decimal}
	for _, o := range opts {
		o(&f)
	}
	var zero V
	omitZero := f.Optional
	f.format = func(e Entity) (string, bool) {
		v := *get(e)
		if omitZero && v == zero {
			return "", false
		}
		return c.format(v), true
	}
	f.parse = func(e Entity, s string) error {
		v, err := c.parse(s)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidAttribute, name, s, err)
		}
		*get(e) = v
		return nil
	}
	f.equal = func(a, b Entity) bool {
		return c.equal(*get(a), *get(b))
	}
	f.copy = func(dst, src Entity) {
		v := *get(src)
		if c.clone != nil {
			v = c.clone(v)
		}
		*get(dst) = v
	}
	return f
}

// elemCodec converts a value to and from a child element.
type elemCodec[V any] struct {
	encode func(tag string, v V) *Node
	decode func(n *Node) (V, error)
	equal  func(a, b V) bool
	clone  func(V) V
}

// element binds an optional single sub-element. V is a pointer type and nil
// means absent.
func element[V comparable](tag string, c elemCodec[V], get func(Entity) *V, opts ...fieldOption) Field {
	f := Field{Name: tag, Kind: ElementField, Optional: true}
	for _, o := range opts {
		o(&f)
	}
	var zero V
	f.encode = func(e Entity) []*Node {
		v := *get(e)
		if v == zero {
			return nil
		}
		return []*Node{c.encode(tag, v)}
	}
	f.decode = func(e Entity, nodes []*Node) error {
		if len(nodes) == 0 {
			*get(e) = zero
			return nil
		}
		if len(nodes) > 1 {
			return fmt.Errorf("%w: %s occurs %d times", ErrInvalidAttribute, tag, len(nodes))
		}
		v, err := c.decode(nodes[0])
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
		*get(e) = v
		return nil
	}
	f.equal = func(a, b Entity) bool {
		return c.equal(*get(a), *get(b))
	}
	f.copy = func(dst, src Entity) {
		*get(dst) = c.clone(*get(src))
	}
	return f
}

// elementList binds a repeated sub-element.
func elementList[V any](tag string, c elemCodec[V], get func(Entity) *[]V) Field {
	f := Field{Name: tag, Kind: ElementListField, Optional: true}
	f.encode = func(e Entity) []*Node {
		vs := *get(e)
		out := make([]*Node, 0, len(vs))
		for _, v := range vs {
			out = append(out, c.encode(tag, v))
		}
		return out
	}
	f.decode = func(e Entity, nodes []*Node) error {
		var vs []V
		for _, n := range nodes {
			v, err := c.decode(n)
			if err != nil {
				return fmt.Errorf("%s: %w", tag, err)
			}
			vs = append(vs, v)
		}
		*get(e) = vs
		return nil
	}
	f.equal = func(a, b Entity) bool {
		return slices.EqualFunc(*get(a), *get(b), c.equal)
	}
	f.copy = func(dst, src Entity) {
		vs := *get(src)
		if vs == nil {
			*get(dst) = nil
			return
		}
		out := make([]V, len(vs))
		for i, v := range vs {
			out[i] = c.clone(v)
		}
		*get(dst) = out
	}
	return f
}
