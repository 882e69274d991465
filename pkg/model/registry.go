package model

import (
	"fmt"
	"slices"
)

// DescriptorVariant is the registration of one descriptor node type.
type DescriptorVariant struct {
	Type      NodeType
	StateType NodeType
	Category  Category
	Schema    *Schema

	new func() Descriptor
}

// StateVariant is the registration of one state node type.
type StateVariant struct {
	Type           NodeType
	DescriptorType NodeType
	Category       Category
	Multi          bool
	Schema         *Schema

	new func() State
}

// Registry maps node types to their variants and schemas.
// It is immutable after NewRegistry returns and safe for concurrent use.
type Registry struct {
	descriptors map[NodeType]*DescriptorVariant
	states      map[NodeType]*StateVariant
}

// NewRegistry creates a registry holding every participant model variant.
func NewRegistry() *Registry {
	r := &Registry{
		descriptors: make(map[NodeType]*DescriptorVariant),
		states:      make(map[NodeType]*StateVariant),
	}
	registerDescriptors(r)
	registerStates(r)
	r.verify()
	return r
}

func (r *Registry) addDescriptor(newFn func() Descriptor, stateType NodeType, s *Schema) {
	if _, ok := r.descriptors[s.Type]; ok {
		panic(fmt.Errorf("%w: %s", ErrDuplicateVariant, s.Type))
	}
	r.descriptors[s.Type] = &DescriptorVariant{
		Type:      s.Type,
		StateType: stateType,
		Category:  categorize(newFn()),
		Schema:    s,
		new:       newFn,
	}
}

func (r *Registry) addState(newFn func() State, multi bool, s *Schema) {
	if _, ok := r.states[s.Type]; ok {
		panic(fmt.Errorf("%w: %s", ErrDuplicateVariant, s.Type))
	}
	r.states[s.Type] = &StateVariant{Type: s.Type, Multi: multi, Schema: s, new: newFn}
}

// verify links states to descriptors and panics on an incomplete table.
func (r *Registry) verify() {
	for _, t := range DescriptorTypes() {
		dv, ok := r.descriptors[t]
		if !ok {
			panic(fmt.Sprintf("model: descriptor %s not registered", t))
		}
		sv, ok := r.states[dv.StateType]
		if !ok {
			panic(fmt.Sprintf("model: state %s of %s not registered", dv.StateType, t))
		}
		if dv.new().NodeType() != t || sv.new().NodeType() != sv.Type {
			panic(fmt.Sprintf("model: constructor of %s returns wrong variant", t))
		}
		sv.DescriptorType = t
		sv.Category = dv.Category
	}
	if len(r.descriptors) != len(r.states) {
		panic("model: descriptor and state tables differ in size")
	}
}

func categorize(d Descriptor) Category {
	switch d.(type) {
	case ComponentDescriptor:
		return CategoryComponent
	case MetricDescriptor:
		return CategoryMetric
	case OperationDescriptor:
		return CategoryOperation
	case ContextDescriptor:
		return CategoryContext
	default:
		return CategoryAlert
	}
}

// DescriptorVariant returns the registration of a descriptor node type.
func (r *Registry) DescriptorVariant(t NodeType) (*DescriptorVariant, bool) {
	v, ok := r.descriptors[t]
	return v, ok
}

// StateVariant returns the registration of a state node type.
func (r *Registry) StateVariant(t NodeType) (*StateVariant, bool) {
	v, ok := r.states[t]
	return v, ok
}

// Schema returns the schema of a descriptor or state node type.
func (r *Registry) Schema(t NodeType) (*Schema, error) {
	if v, ok := r.descriptors[t]; ok {
		return v.Schema, nil
	}
	if v, ok := r.states[t]; ok {
		return v.Schema, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, t)
}

// Category returns the category of a descriptor or state node type.
func (r *Registry) Category(t NodeType) (Category, bool) {
	if v, ok := r.descriptors[t]; ok {
		return v.Category, true
	}
	if v, ok := r.states[t]; ok {
		return v.Category, true
	}
	return 0, false
}

// IsMultiState reports whether states of the descriptor type t are multi-states.
func (r *Registry) IsMultiState(t NodeType) bool {
	dv, ok := r.descriptors[t]
	if !ok {
		return false
	}
	return r.states[dv.StateType].Multi
}

// CreateDescriptor creates an empty descriptor with defaults applied.
func (r *Registry) CreateDescriptor(t NodeType, handle, parentHandle string) (Descriptor, error) {
	v, ok := r.descriptors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, t)
	}
	d := v.new()
	d.Base().init(handle, parentHandle)
	if err := applyDefaults(v.Schema, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateState creates an empty state with defaults applied.
func (r *Registry) CreateState(t NodeType) (State, error) {
	v, ok := r.states[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, t)
	}
	s := v.new()
	if err := applyDefaults(v.Schema, s); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStateFor creates the state matching d. Multi-states get the descriptor
// handle as a placeholder state handle.
func (r *Registry) NewStateFor(d Descriptor) (State, error) {
	dv, ok := r.descriptors[d.NodeType()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, d.NodeType())
	}
	s, err := r.CreateState(dv.StateType)
	if err != nil {
		return nil, err
	}
	b := d.Base()
	s.Base().DescriptorHandle = b.Handle
	s.Base().DescriptorVersion = b.DescriptorVersion
	if m, ok := s.(MultiState); ok {
		m.Multi().Handle = b.Handle
	}
	return s, nil
}

func applyDefaults(s *Schema, e Entity) error {
	for _, f := range s.Fields {
		if f.Kind == AttributeField && f.Default != "" {
			if err := f.parse(e, f.Default); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddChild registers child in the group of parent accepting its type.
func (r *Registry) AddChild(parent, child Descriptor) error {
	if _, err := r.groupFor(parent, child); err != nil {
		return err
	}
	b := parent.Base()
	if b.HasChild(child.Base().Handle) {
		return nil
	}
	b.children = append(b.children, ChildRef{Handle: child.Base().Handle, Type: child.NodeType()})
	return nil
}

// RemoveChild unregisters child from parent.
func (r *Registry) RemoveChild(parent, child Descriptor) error {
	if _, err := r.groupFor(parent, child); err != nil {
		return err
	}
	b := parent.Base()
	h := child.Base().Handle
	i := slices.IndexFunc(b.children, func(c ChildRef) bool { return c.Handle == h })
	if i < 0 {
		return fmt.Errorf("%w: %s in %s", ErrChildNotFound, h, b.Handle)
	}
	b.children = slices.Delete(b.children, i, i+1)
	return nil
}

func (r *Registry) groupFor(parent, child Descriptor) (ChildGroup, error) {
	s, err := r.Schema(parent.NodeType())
	if err != nil {
		return ChildGroup{}, err
	}
	g, ok := s.GroupFor(child.NodeType())
	if !ok {
		return ChildGroup{}, fmt.Errorf("%w: %s in %s", ErrUnsupportedChild, child.NodeType(), parent.NodeType())
	}
	return g, nil
}

func (r *Registry) newLike(e Entity) (Entity, *Schema, error) {
	if v, ok := r.descriptors[e.NodeType()]; ok {
		return v.new(), v.Schema, nil
	}
	if v, ok := r.states[e.NodeType()]; ok {
		return v.new(), v.Schema, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, e.NodeType())
}

// Clone returns a deep copy of e.
func (r *Registry) Clone(e Entity) (Entity, error) {
	out, s, err := r.newLike(e)
	if err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		f.copy(out, e)
	}
	if d, ok := e.(Descriptor); ok {
		dst := out.(Descriptor).Base()
		dst.ParentHandle = d.Base().ParentHandle
		dst.children = slices.Clone(d.Base().children)
	}
	return out, nil
}

// CloneDescriptor is Clone for descriptors.
func (r *Registry) CloneDescriptor(d Descriptor) (Descriptor, error) {
	e, err := r.Clone(d)
	if err != nil {
		return nil, err
	}
	return e.(Descriptor), nil
}

// CloneState is Clone for states.
func (r *Registry) CloneState(s State) (State, error) {
	e, err := r.Clone(s)
	if err != nil {
		return nil, err
	}
	return e.(State), nil
}

// Merge copies every declared field of src into dst except the skipped ones.
func (r *Registry) Merge(dst, src Entity, skip ...string) error {
	if dst.NodeType() != src.NodeType() {
		return fmt.Errorf("%w: %s into %s", ErrTypeMismatch, src.NodeType(), dst.NodeType())
	}
	s, err := r.Schema(dst.NodeType())
	if err != nil {
		return err
	}
	for _, f := range s.Fields {
		if slices.Contains(skip, f.Name) {
			continue
		}
		f.copy(dst, src)
	}
	return nil
}

// Diff returns the names of the fields in which a and b differ.
func (r *Registry) Diff(a, b Entity) []string {
	if a.NodeType() != b.NodeType() {
		return []string{"NodeType"}
	}
	s, err := r.Schema(a.NodeType())
	if err != nil {
		return []string{"NodeType"}
	}
	var diff []string
	for _, f := range s.Fields {
		if !f.equal(a, b) {
			diff = append(diff, f.Name)
		}
	}
	if da, ok := a.(Descriptor); ok {
		if da.Base().ParentHandle != b.(Descriptor).Base().ParentHandle {
			diff = append(diff, "ParentHandle")
		}
	}
	return diff
}

// Equal reports whether a and b have no differences.
func (r *Registry) Equal(a, b Entity) bool {
	return len(r.Diff(a, b)) == 0
}
