package model

// Node is one element of a materialized entity tree.
// Attributes and children keep their order.
type Node struct {
	// Tag is the element name, e.g. "Metric" or "MetricValue".
	Tag string `json:"tag" cbor:"1,keyasint"`

	// Type is the concrete entity variant for entity nodes, empty for value nodes.
	Type string `json:"type,omitempty" cbor:"2,keyasint,omitempty"`

	Attrs    []Attr  `json:"attrs,omitempty" cbor:"3,keyasint,omitempty"`
	Text     string  `json:"text,omitempty" cbor:"4,keyasint,omitempty"`
	Children []*Node `json:"children,omitempty" cbor:"5,keyasint,omitempty"`
}

// Attr is a name/value attribute pair.
type Attr struct {
	Name  string `json:"name" cbor:"1,keyasint"`
	Value string `json:"value" cbor:"2,keyasint"`
}

// NewNode creates a node with the given tag.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Append adds children.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Child returns the first child with the given tag.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns all children with the given tag.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and all descendants depth first.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func textNode(tag, text string) *Node {
	return &Node{Tag: tag, Text: text}
}
