package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// Inspector errors.
var (
	ErrEmptyMdib          = errors.New("mdib has no mds")
	ErrDescriptorNotFound = errors.New("descriptor not found")
	ErrStateNotFound      = errors.New("state not found")
	ErrFieldNotFound      = errors.New("field not found")
)

// Inspector provides read access to a local MDIB for display.
type Inspector struct {
	mdib *mdib.Mdib
}

// NewInspector creates a new Inspector for the given MDIB.
func NewInspector(m *mdib.Mdib) *Inspector {
	return &Inspector{mdib: m}
}

// Mdib returns the inspected MDIB.
func (i *Inspector) Mdib() *mdib.Mdib {
	return i.mdib
}

// DescriptorInfo represents one descriptor and its subtree for display.
type DescriptorInfo struct {
	Handle            string
	Type              model.NodeType
	Category          model.Category
	DescriptorVersion uint64

	// Target is the operation target of operation descriptors.
	Target string

	// Summary condenses the single state, empty when there is nothing to show.
	Summary string

	// Contexts lists the context states of a context descriptor.
	Contexts []ContextInfo

	Children []*DescriptorInfo
}

// ContextInfo represents one context state for display.
type ContextInfo struct {
	Handle       string
	Association  string
	StateVersion uint64
	Summary      string
}

// OperationInfo represents an operation descriptor and its state.
type OperationInfo struct {
	Handle        string
	Type          model.NodeType
	Target        string
	OperatingMode string
}

// Tree returns the full descriptor tree starting at the Mds.
func (i *Inspector) Tree() (*DescriptorInfo, error) {
	root, ok := i.mdib.Root()
	if !ok {
		return nil, ErrEmptyMdib
	}
	return i.describe(root), nil
}

// Describe returns the subtree rooted at handle.
func (i *Inspector) Describe(handle string) (*DescriptorInfo, error) {
	d, ok := i.mdib.Descriptor(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDescriptorNotFound, handle)
	}
	return i.describe(d), nil
}

func (i *Inspector) describe(d model.Descriptor) *DescriptorInfo {
	b := d.Base()
	info := &DescriptorInfo{
		Handle:            b.Handle,
		Type:              d.NodeType(),
		DescriptorVersion: b.DescriptorVersion,
	}
	info.Category, _ = i.mdib.Registry().Category(d.NodeType())
	if od, ok := d.(model.OperationDescriptor); ok {
		info.Target = od.Operation().OperationTarget
	}

	if i.mdib.Registry().IsMultiState(d.NodeType()) {
		for _, cs := range i.mdib.ContextStates(b.Handle) {
			info.Contexts = append(info.Contexts, ContextInfo{
				Handle:       cs.Multi().Handle,
				Association:  string(cs.Context().ContextAssociation),
				StateVersion: cs.Base().StateVersion,
				Summary:      Summarize(cs),
			})
		}
	} else if s, ok := i.mdib.State(b.Handle); ok {
		info.Summary = Summarize(s)
	}

	for _, c := range i.mdib.Children(b.Handle) {
		info.Children = append(info.Children, i.describe(c))
	}
	return info
}

type operationState interface {
	OperationState() *model.OperationStateBase
}

type componentState interface {
	ComponentState() *model.ComponentStateBase
}

// Operations lists all operation descriptors in tree order.
func (i *Inspector) Operations() []OperationInfo {
	var out []OperationInfo
	for _, d := range i.mdib.Descriptors() {
		od, ok := d.(model.OperationDescriptor)
		if !ok {
			continue
		}
		info := OperationInfo{
			Handle: od.Base().Handle,
			Type:   od.NodeType(),
			Target: od.Operation().OperationTarget,
		}
		if s, ok := i.mdib.State(info.Handle); ok {
			if ops, ok := s.(operationState); ok {
				info.OperatingMode = string(ops.OperationState().OperatingMode)
			}
		}
		out = append(out, info)
	}
	return out
}

// Read returns the materialized node selected by p. Descriptor nodes do not
// include their children.
func (i *Inspector) Read(p *Path) (*model.Node, error) {
	reg := i.mdib.Registry()
	d, ok := i.mdib.Descriptor(p.Handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDescriptorNotFound, p.Handle)
	}

	var entity model.Entity = d
	if p.State {
		s, err := i.state(d, p.ContextHandle)
		if err != nil {
			return nil, err
		}
		entity = s
	}

	n, err := reg.Materialize(entity, "", nil)
	if err != nil {
		return nil, err
	}
	return selectField(n, p.Fields)
}

func (i *Inspector) state(d model.Descriptor, contextHandle string) (model.State, error) {
	h := d.Base().Handle
	if !i.mdib.Registry().IsMultiState(d.NodeType()) {
		if contextHandle != "" {
			return nil, fmt.Errorf("%w: %s has a single state", ErrInvalidPath, h)
		}
		s, ok := i.mdib.State(h)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, h)
		}
		return s, nil
	}

	states := i.mdib.ContextStates(h)
	if contextHandle == "" {
		if len(states) == 1 {
			return states[0], nil
		}
		return nil, fmt.Errorf("%w: %s has %d context states, name one", ErrInvalidPath, h, len(states))
	}
	for _, s := range states {
		if s.Multi().Handle == contextHandle {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStateNotFound, contextHandle)
}

// selectField descends by child tag; the last name may also be an attribute,
// which is returned as a text node.
func selectField(n *model.Node, fields []string) (*model.Node, error) {
	cur := n
	for idx, f := range fields {
		if c := cur.Child(f); c != nil {
			cur = c
			continue
		}
		if v, ok := cur.Attr(f); ok && idx == len(fields)-1 {
			return &model.Node{Tag: f, Text: v}, nil
		}
		return nil, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, f, cur.Tag)
	}
	return cur, nil
}

// Summarize condenses the interesting part of a state into one line.
func Summarize(s model.State) string {
	var parts []string
	switch st := s.(type) {
	case *model.NumericMetricState:
		if v := st.MetricValue; v != nil {
			if v.Value != nil {
				parts = append(parts, strconv.FormatFloat(*v.Value, 'g', -1, 64))
			} else {
				parts = append(parts, "-")
			}
			parts = appendNonEmpty(parts, string(v.MetricQuality.Validity))
		}
	case *model.StringMetricState:
		parts = appendStringValue(parts, st.MetricValue)
	case *model.EnumStringMetricState:
		parts = appendStringValue(parts, st.MetricValue)
	case *model.LimitAlertConditionState:
		parts = appendCondition(parts, &st.AlertConditionState)
	case *model.AlertConditionState:
		parts = appendCondition(parts, st)
	case *model.AlertSignalState:
		parts = appendNonEmpty(parts, string(st.ActivationState))
		parts = appendNonEmpty(parts, string(st.Presence))
	case *model.AlertSystemState:
		parts = appendNonEmpty(parts, string(st.ActivationState))
	case model.ContextState:
		if id := st.Context().Identification; len(id) > 0 && id[0] != nil {
			parts = append(parts, id[0].Root+"/"+id[0].Extension)
		}
	case operationState:
		parts = appendNonEmpty(parts, string(st.OperationState().OperatingMode))
	case componentState:
		parts = appendNonEmpty(parts, string(st.ComponentState().ActivationState))
	}
	return strings.Join(parts, " ")
}

func appendNonEmpty(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}

func appendCondition(parts []string, c *model.AlertConditionState) []string {
	parts = appendNonEmpty(parts, string(c.ActivationState))
	if c.Presence {
		parts = append(parts, "present")
	}
	return parts
}

func appendStringValue(parts []string, v *pmtypes.StringMetricValue) []string {
	if v == nil {
		return parts
	}
	if v.Value != nil {
		parts = append(parts, strconv.Quote(*v.Value))
	} else {
		parts = append(parts, "-")
	}
	return appendNonEmpty(parts, string(v.MetricQuality.Validity))
}
