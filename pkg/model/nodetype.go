package model

// NodeType selects the concrete variant of a descriptor or state.
type NodeType string

// Descriptor node types.
const (
	MdsDescriptorType           NodeType = "MdsDescriptor"
	VmdDescriptorType           NodeType = "VmdDescriptor"
	ChannelDescriptorType       NodeType = "ChannelDescriptor"
	ClockDescriptorType         NodeType = "ClockDescriptor"
	BatteryDescriptorType       NodeType = "BatteryDescriptor"
	ScoDescriptorType           NodeType = "ScoDescriptor"
	SystemContextDescriptorType NodeType = "SystemContextDescriptor"

	NumericMetricDescriptorType                 NodeType = "NumericMetricDescriptor"
	StringMetricDescriptorType                  NodeType = "StringMetricDescriptor"
	EnumStringMetricDescriptorType              NodeType = "EnumStringMetricDescriptor"
	RealTimeSampleArrayMetricDescriptorType     NodeType = "RealTimeSampleArrayMetricDescriptor"
	DistributionSampleArrayMetricDescriptorType NodeType = "DistributionSampleArrayMetricDescriptor"

	SetValueOperationDescriptorType          NodeType = "SetValueOperationDescriptor"
	SetStringOperationDescriptorType         NodeType = "SetStringOperationDescriptor"
	SetContextStateOperationDescriptorType   NodeType = "SetContextStateOperationDescriptor"
	SetMetricStateOperationDescriptorType    NodeType = "SetMetricStateOperationDescriptor"
	SetComponentStateOperationDescriptorType NodeType = "SetComponentStateOperationDescriptor"
	SetAlertStateOperationDescriptorType     NodeType = "SetAlertStateOperationDescriptor"
	ActivateOperationDescriptorType          NodeType = "ActivateOperationDescriptor"

	AlertSystemDescriptorType         NodeType = "AlertSystemDescriptor"
	AlertConditionDescriptorType      NodeType = "AlertConditionDescriptor"
	LimitAlertConditionDescriptorType NodeType = "LimitAlertConditionDescriptor"
	AlertSignalDescriptorType         NodeType = "AlertSignalDescriptor"

	PatientContextDescriptorType  NodeType = "PatientContextDescriptor"
	LocationContextDescriptorType NodeType = "LocationContextDescriptor"
	WorkflowContextDescriptorType NodeType = "WorkflowContextDescriptor"
	OperatorContextDescriptorType NodeType = "OperatorContextDescriptor"
	MeansContextDescriptorType    NodeType = "MeansContextDescriptor"
	EnsembleContextDescriptorType NodeType = "EnsembleContextDescriptor"
)

// State node types.
const (
	MdsStateType           NodeType = "MdsState"
	VmdStateType           NodeType = "VmdState"
	ChannelStateType       NodeType = "ChannelState"
	ClockStateType         NodeType = "ClockState"
	BatteryStateType       NodeType = "BatteryState"
	ScoStateType           NodeType = "ScoState"
	SystemContextStateType NodeType = "SystemContextState"

	NumericMetricStateType                 NodeType = "NumericMetricState"
	StringMetricStateType                  NodeType = "StringMetricState"
	EnumStringMetricStateType              NodeType = "EnumStringMetricState"
	RealTimeSampleArrayMetricStateType     NodeType = "RealTimeSampleArrayMetricState"
	DistributionSampleArrayMetricStateType NodeType = "DistributionSampleArrayMetricState"

	SetValueOperationStateType          NodeType = "SetValueOperationState"
	SetStringOperationStateType         NodeType = "SetStringOperationState"
	SetContextStateOperationStateType   NodeType = "SetContextStateOperationState"
	SetMetricStateOperationStateType    NodeType = "SetMetricStateOperationState"
	SetComponentStateOperationStateType NodeType = "SetComponentStateOperationState"
	SetAlertStateOperationStateType     NodeType = "SetAlertStateOperationState"
	ActivateOperationStateType          NodeType = "ActivateOperationState"

	AlertSystemStateType         NodeType = "AlertSystemState"
	AlertConditionStateType      NodeType = "AlertConditionState"
	LimitAlertConditionStateType NodeType = "LimitAlertConditionState"
	AlertSignalStateType         NodeType = "AlertSignalState"

	PatientContextStateType  NodeType = "PatientContextState"
	LocationContextStateType NodeType = "LocationContextState"
	WorkflowContextStateType NodeType = "WorkflowContextState"
	OperatorContextStateType NodeType = "OperatorContextState"
	MeansContextStateType    NodeType = "MeansContextState"
	EnsembleContextStateType NodeType = "EnsembleContextState"
)

// Category groups node types for reporting.
type Category uint8

const (
	CategoryComponent Category = iota
	CategoryMetric
	CategoryOperation
	CategoryAlert
	CategoryContext
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryComponent:
		return "COMPONENT"
	case CategoryMetric:
		return "METRIC"
	case CategoryOperation:
		return "OPERATION"
	case CategoryAlert:
		return "ALERT"
	case CategoryContext:
		return "CONTEXT"
	default:
		return "UNKNOWN"
	}
}

// DescriptorTypes lists every descriptor variant.
func DescriptorTypes() []NodeType {
	return []NodeType{
		MdsDescriptorType, VmdDescriptorType, ChannelDescriptorType, ClockDescriptorType,
		BatteryDescriptorType, ScoDescriptorType, SystemContextDescriptorType,
		NumericMetricDescriptorType, StringMetricDescriptorType, EnumStringMetricDescriptorType,
		RealTimeSampleArrayMetricDescriptorType, DistributionSampleArrayMetricDescriptorType,
		SetValueOperationDescriptorType, SetStringOperationDescriptorType,
		SetContextStateOperationDescriptorType, SetMetricStateOperationDescriptorType,
		SetComponentStateOperationDescriptorType, SetAlertStateOperationDescriptorType,
		ActivateOperationDescriptorType,
		AlertSystemDescriptorType, AlertConditionDescriptorType, LimitAlertConditionDescriptorType,
		AlertSignalDescriptorType,
		PatientContextDescriptorType, LocationContextDescriptorType, WorkflowContextDescriptorType,
		OperatorContextDescriptorType, MeansContextDescriptorType, EnsembleContextDescriptorType,
	}
}

// metricTypes and operationTypes are the accepted variants of
// the corresponding container groups.
var (
	metricTypes = []NodeType{
		NumericMetricDescriptorType, StringMetricDescriptorType, EnumStringMetricDescriptorType,
		RealTimeSampleArrayMetricDescriptorType, DistributionSampleArrayMetricDescriptorType,
	}
	operationTypes = []NodeType{
		SetValueOperationDescriptorType, SetStringOperationDescriptorType,
		SetContextStateOperationDescriptorType, SetMetricStateOperationDescriptorType,
		SetComponentStateOperationDescriptorType, SetAlertStateOperationDescriptorType,
		ActivateOperationDescriptorType,
	}
)
