package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// Argument errors.
var (
	ErrMissingArgument = errors.New("argument is required")
	ErrArgumentShape   = errors.New("argument has the wrong shape for the action")
)

// Argument encoding per action:
//
//	SetValue                       float64
//	SetString                      text string
//	Activate                       array of text strings
//	SetContextState                array of state nodes
//	SetMetricState, SetComponentState  array of state nodes
//	SetAlertState                  one state node
//
// State nodes are the materialized form of model states (model.Node).

// EncodeArgument encodes a decoded request argument for kind.
func EncodeArgument(reg *model.Registry, kind sco.Kind, arg any) (cbor.RawMessage, error) {
	if arg == nil {
		return nil, nil
	}
	var v any
	switch kind {
	case sco.KindSetValue:
		f, ok := arg.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants float64, got %T", ErrArgumentShape, kind, arg)
		}
		v = f
	case sco.KindSetString:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants string, got %T", ErrArgumentShape, kind, arg)
		}
		v = s
	case sco.KindActivate:
		a, ok := arg.([]string)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants []string, got %T", ErrArgumentShape, kind, arg)
		}
		v = a
	case sco.KindSetContextState:
		states, ok := arg.([]model.ContextState)
		if !ok {
			return nil, fmt.Errorf("%w: %s wants []model.ContextState, got %T", ErrArgumentShape, kind, arg)
		}
		nodes := make([]*model.Node, 0, len(states))
		for _, s := range states {
			n, err := reg.Materialize(s, "", nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		v = nodes
	case sco.KindSetMetricState, sco.KindSetComponentState, sco.KindSetAlertState:
		var states []model.State
		switch a := arg.(type) {
		case model.State:
			states = []model.State{a}
		case []model.State:
			states = a
		default:
			return nil, fmt.Errorf("%w: %s wants model states, got %T", ErrArgumentShape, kind, arg)
		}
		nodes := make([]*model.Node, 0, len(states))
		for _, s := range states {
			n, err := reg.Materialize(s, "", nil)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		if kind == sco.KindSetAlertState {
			if len(nodes) != 1 {
				return nil, fmt.Errorf("%w: %s wants one state, got %d", ErrArgumentShape, kind, len(nodes))
			}
			v = nodes[0]
		} else {
			v = nodes
		}
	default:
		return nil, fmt.Errorf("%w: %d", sco.ErrUnknownKind, kind)
	}

	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	return cbor.RawMessage(data), nil
}

// DecodeArgument decodes the raw argument of a request for kind into the
// form the operation effects expect.
func DecodeArgument(reg *model.Registry, kind sco.Kind, raw cbor.RawMessage) (any, error) {
	if len(raw) == 0 {
		if kind == sco.KindActivate {
			return []string(nil), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingArgument, kind)
	}

	switch kind {
	case sco.KindSetValue:
		var f float64
		if err := Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return f, nil
	case sco.KindSetString:
		var s string
		if err := Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return s, nil
	case sco.KindActivate:
		var a []string
		if err := Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return a, nil
	case sco.KindSetAlertState:
		var n model.Node
		if err := Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return reg.ParseState(&n)
	case sco.KindSetContextState, sco.KindSetMetricState, sco.KindSetComponentState:
		var nodes []*model.Node
		if err := Unmarshal(raw, &nodes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return statesFromNodes(reg, kind, nodes)
	default:
		return nil, fmt.Errorf("%w: %d", sco.ErrUnknownKind, kind)
	}
}

// ArgumentFromValue converts a generic value, typically decoded from JSON,
// into the argument form of kind. Scalars are converted weakly, so "42"
// is accepted for SetValue. State arguments are node objects in their JSON
// form; a single object is accepted where a list is expected.
func ArgumentFromValue(reg *model.Registry, kind sco.Kind, v any) (any, error) {
	if v == nil {
		if kind == sco.KindActivate {
			return []string(nil), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingArgument, kind)
	}

	switch kind {
	case sco.KindSetValue:
		var f float64
		if err := mapstructure.WeakDecode(v, &f); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return f, nil
	case sco.KindSetString:
		var s string
		if err := mapstructure.WeakDecode(v, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return s, nil
	case sco.KindActivate:
		var a []string
		if err := mapstructure.WeakDecode(v, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		return a, nil
	case sco.KindSetContextState, sco.KindSetMetricState, sco.KindSetComponentState, sco.KindSetAlertState:
		var nodes []*model.Node
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &nodes,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArgumentShape, err)
		}
		if kind == sco.KindSetAlertState {
			if len(nodes) != 1 {
				return nil, fmt.Errorf("%w: %s wants one state, got %d", ErrArgumentShape, kind, len(nodes))
			}
			if nodes[0] == nil {
				return nil, fmt.Errorf("%w: nil state", ErrArgumentShape)
			}
			return reg.ParseState(nodes[0])
		}
		return statesFromNodes(reg, kind, nodes)
	default:
		return nil, fmt.Errorf("%w: %d", sco.ErrUnknownKind, kind)
	}
}

func statesFromNodes(reg *model.Registry, kind sco.Kind, nodes []*model.Node) (any, error) {
	if kind == sco.KindSetContextState {
		out := make([]model.ContextState, 0, len(nodes))
		for _, n := range nodes {
			if n == nil {
				return nil, fmt.Errorf("%w: nil state", ErrArgumentShape)
			}
			s, err := reg.ParseState(n)
			if err != nil {
				return nil, err
			}
			cs, ok := s.(model.ContextState)
			if !ok {
				return nil, fmt.Errorf("%w: %s is not a context state", ErrArgumentShape, s.NodeType())
			}
			out = append(out, cs)
		}
		return out, nil
	}

	out := make([]model.State, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: nil state", ErrArgumentShape)
		}
		s, err := reg.ParseState(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
