package model

import (
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// State is the runtime status correlated to one descriptor.
type State interface {
	Entity
	Base() *StateBase
}

// StateBase holds the data shared by all states.
type StateBase struct {
	DescriptorHandle  string
	DescriptorVersion uint64
	StateVersion      uint64
}

// Base returns s itself; it is promoted to every state variant.
func (s *StateBase) Base() *StateBase { return s }

// MultiState is a state that is one of several for its descriptor.
type MultiState interface {
	State
	Multi() *MultiStateBase
}

// MultiStateBase adds the state's own handle.
type MultiStateBase struct {
	StateBase
	Handle string
}

// Multi returns the multi-state part of the state.
func (m *MultiStateBase) Multi() *MultiStateBase { return m }

// ContextState is implemented by all context state variants.
type ContextState interface {
	MultiState
	Context() *ContextStateBase
}

// ContextStateBase carries association and binding information.
type ContextStateBase struct {
	MultiStateBase
	ContextAssociation   pmtypes.ContextAssociation
	BindingMdibVersion   *uint64
	UnbindingMdibVersion *uint64
	BindingStartTime     pmtypes.Timestamp
	BindingEndTime       pmtypes.Timestamp
	Identification       []*pmtypes.InstanceIdentifier
}

// Context returns the context part of the state.
func (c *ContextStateBase) Context() *ContextStateBase { return c }

// ComponentStateBase is shared by component states.
type ComponentStateBase struct {
	StateBase
	ActivationState pmtypes.ComponentActivation
	OperatingHours  *uint64
	OperatingCycles *uint64
}

// ComponentState returns the component part of the state.
func (c *ComponentStateBase) ComponentState() *ComponentStateBase { return c }

// MdsState is the state of an Mds.
type MdsState struct{ ComponentStateBase }

// VmdState is the state of a Vmd.
type VmdState struct{ ComponentStateBase }

// ChannelState is the state of a channel.
type ChannelState struct{ ComponentStateBase }

// ScoState is the state of a Sco.
type ScoState struct{ ComponentStateBase }

// SystemContextState is the state of the system context.
type SystemContextState struct{ ComponentStateBase }

// ClockState is the state of a clock.
type ClockState struct {
	ComponentStateBase
	RemoteSync  bool
	DateAndTime pmtypes.Timestamp
	LastSet     pmtypes.Timestamp
}

// BatteryState is the state of a battery.
type BatteryState struct {
	ComponentStateBase
	CapacityRemaining    *pmtypes.Measurement
	Voltage              *pmtypes.Measurement
	RemainingBatteryTime time.Duration
}

// MetricStateBase is shared by metric states.
type MetricStateBase struct {
	StateBase
	ActivationState           pmtypes.ComponentActivation
	ActiveDeterminationPeriod time.Duration
}

// MetricState returns the metric part of the state.
func (m *MetricStateBase) MetricState() *MetricStateBase { return m }

// NumericMetricState is the state of a numeric metric.
type NumericMetricState struct {
	MetricStateBase
	MetricValue        *pmtypes.NumericMetricValue
	PhysiologicalRange []*pmtypes.Range
}

// StringMetricState is the state of a string metric.
type StringMetricState struct {
	MetricStateBase
	MetricValue *pmtypes.StringMetricValue
}

// EnumStringMetricState is the state of an enum string metric.
type EnumStringMetricState struct {
	MetricStateBase
	MetricValue *pmtypes.StringMetricValue
}

// RealTimeSampleArrayMetricState is the state of a waveform.
type RealTimeSampleArrayMetricState struct {
	MetricStateBase
	MetricValue *pmtypes.SampleArrayValue
}

// DistributionSampleArrayMetricState is the state of a distribution.
type DistributionSampleArrayMetricState struct {
	MetricStateBase
	MetricValue *pmtypes.SampleArrayValue
}

// OperationStateBase is shared by operation states.
type OperationStateBase struct {
	StateBase
	OperatingMode pmtypes.OperatingMode
}

// OperationState returns the operation part of the state.
func (o *OperationStateBase) OperationState() *OperationStateBase { return o }

// OperationStateEntity is implemented by all operation states.
type OperationStateEntity interface {
	State
	OperationState() *OperationStateBase
}

// SetValueOperationState is the state of a SetValue operation.
type SetValueOperationState struct{ OperationStateBase }

// SetStringOperationState is the state of a SetString operation.
type SetStringOperationState struct{ OperationStateBase }

// SetContextStateOperationState is the state of a SetContextState operation.
type SetContextStateOperationState struct{ OperationStateBase }

// SetMetricStateOperationState is the state of a SetMetricState operation.
type SetMetricStateOperationState struct{ OperationStateBase }

// SetComponentStateOperationState is the state of a SetComponentState operation.
type SetComponentStateOperationState struct{ OperationStateBase }

// SetAlertStateOperationState is the state of a SetAlertState operation.
type SetAlertStateOperationState struct{ OperationStateBase }

// ActivateOperationState is the state of an Activate operation.
type ActivateOperationState struct{ OperationStateBase }

// AlertSystemState is the state of an alert system.
type AlertSystemState struct {
	StateBase
	ActivationState pmtypes.AlertActivation
	LastSelfCheck   pmtypes.Timestamp
	SelfCheckCount  *uint64
}

// AlertConditionState is the state of an alert condition.
type AlertConditionState struct {
	StateBase
	ActivationState                pmtypes.AlertActivation
	ActualConditionGenerationDelay time.Duration
	ActualPriority                 pmtypes.AlertConditionPriority
	Presence                       bool
	DeterminationTime              pmtypes.Timestamp
}

// ConditionState returns the condition part of the state.
func (a *AlertConditionState) ConditionState() *AlertConditionState { return a }

// LimitAlertConditionState is the state of a limit alert condition.
type LimitAlertConditionState struct {
	AlertConditionState
	Limits                   *pmtypes.Range
	MonitoredAlertLimits     pmtypes.AlertConditionMonitoredLimits
	AutoLimitActivationState pmtypes.AlertActivation
}

// AlertSignalState is the state of an alert signal.
type AlertSignalState struct {
	StateBase
	ActivationState             pmtypes.AlertActivation
	ActualSignalGenerationDelay time.Duration
	Presence                    pmtypes.AlertSignalPresence
	Slot                        *uint64
}

// PatientContextState is a patient association.
type PatientContextState struct {
	ContextStateBase
	CoreData *pmtypes.PatientDemographics
}

// LocationContextState is a location association.
type LocationContextState struct {
	ContextStateBase
	LocationDetail *pmtypes.LocationDetail
}

// WorkflowContextState is a workflow association.
type WorkflowContextState struct{ ContextStateBase }

// OperatorContextState is an operator association.
type OperatorContextState struct{ ContextStateBase }

// MeansContextState is a means association.
type MeansContextState struct{ ContextStateBase }

// EnsembleContextState is an ensemble association.
type EnsembleContextState struct{ ContextStateBase }

func (*MdsState) NodeType() NodeType { return MdsStateType }
func (*VmdState) NodeType() NodeType { return VmdStateType }
func (*ChannelState) NodeType() NodeType { return ChannelStateType }
func (*ClockState) NodeType() NodeType { return ClockStateType }
func (*BatteryState) NodeType() NodeType { return BatteryStateType }
func (*ScoState) NodeType() NodeType { return ScoStateType }
func (*SystemContextState) NodeType() NodeType { return SystemContextStateType }

func (*NumericMetricState) NodeType() NodeType { return NumericMetricStateType }
func (*StringMetricState) NodeType() NodeType { return StringMetricStateType }
func (*EnumStringMetricState) NodeType() NodeType { return EnumStringMetricStateType }
func (*RealTimeSampleArrayMetricState) NodeType() NodeType {
	return RealTimeSampleArrayMetricStateType
}
func (*DistributionSampleArrayMetricState) NodeType() NodeType {
	return DistributionSampleArrayMetricStateType
}

func (*SetValueOperationState) NodeType() NodeType { return SetValueOperationStateType }
func (*SetStringOperationState) NodeType() NodeType { return SetStringOperationStateType }
func (*SetContextStateOperationState) NodeType() NodeType {
	return SetContextStateOperationStateType
}
func (*SetMetricStateOperationState) NodeType() NodeType { return SetMetricStateOperationStateType }
func (*SetComponentStateOperationState) NodeType() NodeType {
	return SetComponentStateOperationStateType
}
func (*SetAlertStateOperationState) NodeType() NodeType { return SetAlertStateOperationStateType }
func (*ActivateOperationState) NodeType() NodeType { return ActivateOperationStateType }

func (*AlertSystemState) NodeType() NodeType { return AlertSystemStateType }
func (*AlertConditionState) NodeType() NodeType { return AlertConditionStateType }
func (*LimitAlertConditionState) NodeType() NodeType { return LimitAlertConditionStateType }
func (*AlertSignalState) NodeType() NodeType { return AlertSignalStateType }

func (*PatientContextState) NodeType() NodeType { return PatientContextStateType }
func (*LocationContextState) NodeType() NodeType { return LocationContextStateType }
func (*WorkflowContextState) NodeType() NodeType { return WorkflowContextStateType }
func (*OperatorContextState) NodeType() NodeType { return OperatorContextStateType }
func (*MeansContextState) NodeType() NodeType { return MeansContextStateType }
func (*EnsembleContextState) NodeType() NodeType { return EnsembleContextStateType }

// Compile-time interface satisfaction checks.
var (
	_ ContextState         = (*PatientContextState)(nil)
	_ ContextState         = (*EnsembleContextState)(nil)
	_ OperationStateEntity = (*ActivateOperationState)(nil)
	_ State                = (*LimitAlertConditionState)(nil)
	_ State                = (*NumericMetricState)(nil)
)
