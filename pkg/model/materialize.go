package model

import (
	"fmt"
	"slices"
)

// Resolver looks up descriptors by handle while materializing a tree.
type Resolver interface {
	Descriptor(handle string) (Descriptor, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(handle string) (Descriptor, bool)

// Descriptor calls f.
func (f ResolverFunc) Descriptor(handle string) (Descriptor, bool) { return f(handle) }

// Materialize converts e into a node named tag (the node type when empty).
// With a non-nil resolver the descendants of a descriptor are included.
// Child elements are emitted in declared element order.
func (r *Registry) Materialize(e Entity, tag string, res Resolver) (*Node, error) {
	s, err := r.Schema(e.NodeType())
	if err != nil {
		return nil, err
	}
	if tag == "" {
		tag = string(e.NodeType())
	}
	n := &Node{Tag: tag, Type: string(e.NodeType())}

	var elems []*Node
	for _, f := range s.Fields {
		if f.Kind == AttributeField {
			if v, ok := f.format(e); ok {
				n.SetAttr(f.Name, v)
			}
			continue
		}
		elems = append(elems, f.encode(e)...)
	}

	if d, ok := e.(Descriptor); ok && res != nil {
		for _, ref := range d.Base().children {
			child, ok := res.Descriptor(ref.Handle)
			if !ok {
				return nil, fmt.Errorf("%w: child %s of %s", ErrUnknownHandle, ref.Handle, d.Base().Handle)
			}
			childTag := string(child.NodeType())
			if g, ok := s.GroupFor(child.NodeType()); ok {
				childTag = g.Tag
			}
			cn, err := r.Materialize(child, childTag, res)
			if err != nil {
				return nil, err
			}
			elems = append(elems, cn)
		}
	}

	n.Children, err = s.OrderChildren(elems)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ParseDescriptor is the inverse of Materialize. The first element of the
// result is the descriptor for n, followed by its descendants in document order.
func (r *Registry) ParseDescriptor(n *Node, parentHandle string) ([]Descriptor, error) {
	v, ok := r.descriptors[nodeTypeOf(n)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeTypeOf(n))
	}
	d := v.new()
	if err := decodeFields(v.Schema, d, n); err != nil {
		return nil, fmt.Errorf("%s: %w", v.Type, err)
	}
	b := d.Base()
	b.ParentHandle = parentHandle

	out := []Descriptor{d}
	for _, c := range n.Children {
		if _, isField := v.Schema.Field(c.Tag); isField {
			continue
		}
		gi := slices.IndexFunc(v.Schema.Groups, func(g ChildGroup) bool { return g.Tag == c.Tag })
		if gi < 0 {
			return nil, fmt.Errorf("%w: %s in %s", ErrUndeclaredChild, c.Tag, v.Type)
		}
		kids, err := r.ParseDescriptor(c, b.Handle)
		if err != nil {
			return nil, err
		}
		child := kids[0]
		if !v.Schema.Groups[gi].accepts(child.NodeType()) {
			return nil, fmt.Errorf("%w: %s in %s", ErrUnsupportedChild, child.NodeType(), v.Type)
		}
		b.children = append(b.children, ChildRef{Handle: child.Base().Handle, Type: child.NodeType()})
		out = append(out, kids...)
	}
	return out, nil
}

// ParseState is the inverse of Materialize for states.
func (r *Registry) ParseState(n *Node) (State, error) {
	v, ok := r.states[nodeTypeOf(n)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeTypeOf(n))
	}
	s := v.new()
	if err := decodeFields(v.Schema, s, n); err != nil {
		return nil, fmt.Errorf("%s: %w", v.Type, err)
	}
	for _, c := range n.Children {
		if _, ok := v.Schema.Field(c.Tag); !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrUndeclaredChild, c.Tag, v.Type)
		}
	}
	return s, nil
}

func nodeTypeOf(n *Node) NodeType {
	if n.Type != "" {
		return NodeType(n.Type)
	}
	return NodeType(n.Tag)
}

func decodeFields(s *Schema, e Entity, n *Node) error {
	for _, f := range s.Fields {
		if f.Kind != AttributeField {
			if err := f.decode(e, n.ChildrenByTag(f.Name)); err != nil {
				return err
			}
			continue
		}
		text, ok := n.Attr(f.Name)
		switch {
		case ok:
		case f.Default != "":
			text = f.Default
		case f.Optional:
			continue
		default:
			return fmt.Errorf("%w: %s", ErrMissingAttribute, f.Name)
		}
		if err := f.parse(e, text); err != nil {
			return err
		}
	}
	return nil
}
