package sco

import (
	"fmt"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// Kind identifies the request type of an operation.
type Kind uint8

// Operation kinds.
const (
	KindSetValue Kind = iota + 1
	KindSetString
	KindSetContextState
	KindSetMetricState
	KindSetComponentState
	KindSetAlertState
	KindActivate
)

type kindBinding struct {
	name       string
	descriptor model.NodeType
	state      model.NodeType
}

// kindTable binds every kind to its request name, descriptor and state.
var kindTable = map[Kind]kindBinding{
	KindSetValue:          {"SetValue", model.SetValueOperationDescriptorType, model.SetValueOperationStateType},
	KindSetString:         {"SetString", model.SetStringOperationDescriptorType, model.SetStringOperationStateType},
	KindSetContextState:   {"SetContextState", model.SetContextStateOperationDescriptorType, model.SetContextStateOperationStateType},
	KindSetMetricState:    {"SetMetricState", model.SetMetricStateOperationDescriptorType, model.SetMetricStateOperationStateType},
	KindSetComponentState: {"SetComponentState", model.SetComponentStateOperationDescriptorType, model.SetComponentStateOperationStateType},
	KindSetAlertState:     {"SetAlertState", model.SetAlertStateOperationDescriptorType, model.SetAlertStateOperationStateType},
	KindActivate:          {"Activate", model.ActivateOperationDescriptorType, model.ActivateOperationStateType},
}

// Kinds returns all operation kinds in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindSetValue, KindSetString, KindSetContextState, KindSetMetricState,
		KindSetComponentState, KindSetAlertState, KindActivate,
	}
}

// String returns the request name of the kind, e.g. "SetValue".
func (k Kind) String() string {
	if b, ok := kindTable[k]; ok {
		return b.name
	}
	return "UNKNOWN"
}

// DescriptorType returns the operation descriptor type of the kind.
func (k Kind) DescriptorType() model.NodeType {
	return kindTable[k].descriptor
}

// StateType returns the operation state type of the kind.
func (k Kind) StateType() model.NodeType {
	return kindTable[k].state
}

// ParseKind resolves a request name.
func ParseKind(name string) (Kind, error) {
	for k, b := range kindTable {
		if b.name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindForDescriptor returns the kind of an operation descriptor type.
func KindForDescriptor(t model.NodeType) (Kind, bool) {
	for k, b := range kindTable {
		if b.descriptor == t {
			return k, true
		}
	}
	return 0, false
}
