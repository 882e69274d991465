package model

import (
	"slices"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// Entity is implemented by every descriptor and state variant.
type Entity interface {
	NodeType() NodeType
}

// Descriptor is a structural node of the device tree.
type Descriptor interface {
	Entity
	Base() *DescriptorBase
}

// ChildRef references a child descriptor by handle.
type ChildRef struct {
	Handle string
	Type   NodeType
}

// DescriptorBase holds the data shared by all descriptors.
type DescriptorBase struct {
	Handle string

	// ParentHandle is empty only for the root Mds.
	ParentHandle string

	DescriptorVersion    uint64
	SafetyClassification pmtypes.SafetyClassification
	Type                 *pmtypes.CodedValue

	children []ChildRef
}

// Base returns d itself; it is promoted to every descriptor variant.
func (d *DescriptorBase) Base() *DescriptorBase { return d }

// IncrementVersion bumps DescriptorVersion by one.
func (d *DescriptorBase) IncrementVersion() {
	d.DescriptorVersion++
}

// Children returns the child references in insertion order.
func (d *DescriptorBase) Children() []ChildRef {
	return slices.Clone(d.children)
}

// HasChild reports whether handle is a registered child.
func (d *DescriptorBase) HasChild(handle string) bool {
	return slices.ContainsFunc(d.children, func(c ChildRef) bool { return c.Handle == handle })
}

func (d *DescriptorBase) init(handle, parent string) {
	d.Handle = handle
	d.ParentHandle = parent
	d.SafetyClassification = pmtypes.SafetyInformational
}

// ComponentBase is shared by device components (Mds, Vmd, Channel, ...).
type ComponentBase struct {
	DescriptorBase
	ProductionSpecification []*pmtypes.ProductionSpecification
}

// Component returns the component part of the descriptor.
func (c *ComponentBase) Component() *ComponentBase { return c }

// ComponentDescriptor is implemented by all component variants.
type ComponentDescriptor interface {
	Descriptor
	Component() *ComponentBase
}

// MdsDescriptor is the root of a device tree.
type MdsDescriptor struct {
	ComponentBase
	MetaData *pmtypes.MetaData
}

// VmdDescriptor is a virtual medical device.
type VmdDescriptor struct {
	ComponentBase
}

// ChannelDescriptor groups metrics.
type ChannelDescriptor struct {
	ComponentBase
}

// ClockDescriptor describes the device clock.
type ClockDescriptor struct {
	ComponentBase
	TimeProtocol []*pmtypes.CodedValue
	Resolution   time.Duration
}

// BatteryDescriptor describes a battery.
type BatteryDescriptor struct {
	ComponentBase
	CapacityFullCharge *pmtypes.Measurement
	CapacitySpecified  *pmtypes.Measurement
	VoltageSpecified   *pmtypes.Measurement
}

// ScoDescriptor is the container of operations.
type ScoDescriptor struct {
	ComponentBase
}

// SystemContextDescriptor is the container of context descriptors.
type SystemContextDescriptor struct {
	ComponentBase
}

// MetricBase is shared by all metric descriptors.
type MetricBase struct {
	DescriptorBase
	Unit                *pmtypes.CodedValue
	BodySite            []*pmtypes.CodedValue
	MetricCategory      pmtypes.MetricCategory
	DerivationMethod    pmtypes.DerivationMethod
	MetricAvailability  pmtypes.MetricAvailability
	MaxMeasurementTime  time.Duration
	MaxDelayTime        time.Duration
	DeterminationPeriod time.Duration
	LifeTimePeriod      time.Duration
	ActivationDuration  time.Duration
}

// Metric returns the metric part of the descriptor.
func (m *MetricBase) Metric() *MetricBase { return m }

// MetricDescriptor is implemented by all metric variants.
type MetricDescriptor interface {
	Descriptor
	Metric() *MetricBase
}

// NumericMetricDescriptor describes a numeric metric.
type NumericMetricDescriptor struct {
	MetricBase
	TechnicalRange  []*pmtypes.Range
	Resolution      float64
	AveragingPeriod time.Duration
}

// StringMetricDescriptor describes a free text metric.
type StringMetricDescriptor struct {
	MetricBase
}

// EnumStringMetricDescriptor describes a string metric with a closed value set.
type EnumStringMetricDescriptor struct {
	MetricBase
	AllowedValue []*pmtypes.AllowedValue
}

// RealTimeSampleArrayMetricDescriptor describes a waveform.
type RealTimeSampleArrayMetricDescriptor struct {
	MetricBase
	TechnicalRange []*pmtypes.Range
	Resolution     float64
	SamplePeriod   time.Duration
}

// DistributionSampleArrayMetricDescriptor describes a distribution.
type DistributionSampleArrayMetricDescriptor struct {
	MetricBase
	TechnicalRange    []*pmtypes.Range
	DomainUnit        *pmtypes.CodedValue
	DistributionRange *pmtypes.Range
	Resolution        float64
}

// OperationBase is shared by all operation descriptors.
type OperationBase struct {
	DescriptorBase
	OperationTarget            string
	MaxTimeToFinish            time.Duration
	InvocationEffectiveTimeout time.Duration

	// Retriggerable is implied true when nil.
	Retriggerable *bool
	AccessLevel   pmtypes.AccessLevel
}

// Operation returns the operation part of the descriptor.
func (o *OperationBase) Operation() *OperationBase { return o }

// IsRetriggerable applies the implied value.
func (o *OperationBase) IsRetriggerable() bool {
	return o.Retriggerable == nil || *o.Retriggerable
}

// OperationDescriptor is implemented by all operation variants.
type OperationDescriptor interface {
	Descriptor
	Operation() *OperationBase
}

// SetStateOperationBase adds the list of modifiable state members.
type SetStateOperationBase struct {
	OperationBase
	ModifiableData []string
}

// SetState returns the set-state part of the descriptor.
func (s *SetStateOperationBase) SetState() *SetStateOperationBase { return s }

// SetStateOperationDescriptor is implemented by operations that propose
// states.
type SetStateOperationDescriptor interface {
	OperationDescriptor
	SetState() *SetStateOperationBase
}

// SetValueOperationDescriptor sets a numeric metric.
type SetValueOperationDescriptor struct {
	OperationBase
}

// SetStringOperationDescriptor sets a string metric.
type SetStringOperationDescriptor struct {
	OperationBase
	MaxLength *uint64
}

// SetContextStateOperationDescriptor proposes context states.
type SetContextStateOperationDescriptor struct {
	SetStateOperationBase
}

// SetMetricStateOperationDescriptor proposes metric states.
type SetMetricStateOperationDescriptor struct {
	SetStateOperationBase
}

// SetComponentStateOperationDescriptor proposes component states.
type SetComponentStateOperationDescriptor struct {
	SetStateOperationBase
}

// SetAlertStateOperationDescriptor proposes an alert state.
type SetAlertStateOperationDescriptor struct {
	SetStateOperationBase
}

// ActivateOperationDescriptor triggers a device function.
type ActivateOperationDescriptor struct {
	SetStateOperationBase
	Argument []*pmtypes.ActivateArgument
}

// AlertSystemDescriptor is the container of alert conditions and signals.
type AlertSystemDescriptor struct {
	DescriptorBase
	MaxPhysiologicalParallelAlarms *uint64
	MaxTechnicalParallelAlarms     *uint64
	SelfCheckPeriod                time.Duration
}

// AlertConditionDescriptor describes an alert condition.
type AlertConditionDescriptor struct {
	DescriptorBase
	Source                          []string
	Kind                            pmtypes.AlertConditionKind
	Priority                        pmtypes.AlertConditionPriority
	DefaultConditionGenerationDelay time.Duration
	CanEscalate                     pmtypes.AlertConditionPriority
	CanDeescalate                   pmtypes.AlertConditionPriority
}

// Condition returns the condition part of the descriptor.
func (a *AlertConditionDescriptor) Condition() *AlertConditionDescriptor { return a }

// LimitAlertConditionDescriptor is a condition raised by crossing limits.
type LimitAlertConditionDescriptor struct {
	AlertConditionDescriptor
	MaxLimits          *pmtypes.Range
	AutoLimitSupported bool
}

// AlertSignalDescriptor describes how an alert condition is signalled.
type AlertSignalDescriptor struct {
	DescriptorBase
	ConditionSignaled            string
	Manifestation                pmtypes.AlertSignalManifestation
	Latching                     bool
	DefaultSignalGenerationDelay time.Duration
	MinSignalGenerationDelay     time.Duration
	MaxSignalGenerationDelay     time.Duration
	SignalDelegationSupported    bool
	AcknowledgementSupported     bool
	AcknowledgeTimeout           time.Duration
}

// ContextBase is shared by context descriptors.
type ContextBase struct {
	DescriptorBase
}

// Context returns the context part of the descriptor.
func (c *ContextBase) Context() *ContextBase { return c }

// ContextDescriptor is implemented by all context variants.
type ContextDescriptor interface {
	Descriptor
	Context() *ContextBase
}

// PatientContextDescriptor describes the patient context.
type PatientContextDescriptor struct{ ContextBase }

// LocationContextDescriptor describes the location context.
type LocationContextDescriptor struct{ ContextBase }

// WorkflowContextDescriptor describes the workflow context.
type WorkflowContextDescriptor struct{ ContextBase }

// OperatorContextDescriptor describes the operator context.
type OperatorContextDescriptor struct{ ContextBase }

// MeansContextDescriptor describes the means context.
type MeansContextDescriptor struct{ ContextBase }

// EnsembleContextDescriptor describes the ensemble context.
type EnsembleContextDescriptor struct{ ContextBase }

func (*MdsDescriptor) NodeType() NodeType { return MdsDescriptorType }
func (*VmdDescriptor) NodeType() NodeType { return VmdDescriptorType }
func (*ChannelDescriptor) NodeType() NodeType { return ChannelDescriptorType }
func (*ClockDescriptor) NodeType() NodeType { return ClockDescriptorType }
func (*BatteryDescriptor) NodeType() NodeType { return BatteryDescriptorType }
func (*ScoDescriptor) NodeType() NodeType { return ScoDescriptorType }
func (*SystemContextDescriptor) NodeType() NodeType { return SystemContextDescriptorType }

func (*NumericMetricDescriptor) NodeType() NodeType { return NumericMetricDescriptorType }
func (*StringMetricDescriptor) NodeType() NodeType { return StringMetricDescriptorType }
func (*EnumStringMetricDescriptor) NodeType() NodeType { return EnumStringMetricDescriptorType }
func (*RealTimeSampleArrayMetricDescriptor) NodeType() NodeType {
	return RealTimeSampleArrayMetricDescriptorType
}
func (*DistributionSampleArrayMetricDescriptor) NodeType() NodeType {
	return DistributionSampleArrayMetricDescriptorType
}

func (*SetValueOperationDescriptor) NodeType() NodeType { return SetValueOperationDescriptorType }
func (*SetStringOperationDescriptor) NodeType() NodeType { return SetStringOperationDescriptorType }
func (*SetContextStateOperationDescriptor) NodeType() NodeType {
	return SetContextStateOperationDescriptorType
}
func (*SetMetricStateOperationDescriptor) NodeType() NodeType {
	return SetMetricStateOperationDescriptorType
}
func (*SetComponentStateOperationDescriptor) NodeType() NodeType {
	return SetComponentStateOperationDescriptorType
}
func (*SetAlertStateOperationDescriptor) NodeType() NodeType {
	return SetAlertStateOperationDescriptorType
}
func (*ActivateOperationDescriptor) NodeType() NodeType { return ActivateOperationDescriptorType }

func (*AlertSystemDescriptor) NodeType() NodeType { return AlertSystemDescriptorType }
func (*AlertConditionDescriptor) NodeType() NodeType { return AlertConditionDescriptorType }
func (*LimitAlertConditionDescriptor) NodeType() NodeType { return LimitAlertConditionDescriptorType }
func (*AlertSignalDescriptor) NodeType() NodeType { return AlertSignalDescriptorType }

func (*PatientContextDescriptor) NodeType() NodeType { return PatientContextDescriptorType }
func (*LocationContextDescriptor) NodeType() NodeType { return LocationContextDescriptorType }
func (*WorkflowContextDescriptor) NodeType() NodeType { return WorkflowContextDescriptorType }
func (*OperatorContextDescriptor) NodeType() NodeType { return OperatorContextDescriptorType }
func (*MeansContextDescriptor) NodeType() NodeType { return MeansContextDescriptorType }
func (*EnsembleContextDescriptor) NodeType() NodeType { return EnsembleContextDescriptorType }

// Compile-time interface satisfaction checks.
var (
	_ ComponentDescriptor = (*MdsDescriptor)(nil)
	_ ComponentDescriptor = (*SystemContextDescriptor)(nil)
	_ MetricDescriptor    = (*NumericMetricDescriptor)(nil)
	_ MetricDescriptor    = (*DistributionSampleArrayMetricDescriptor)(nil)
	_ OperationDescriptor = (*ActivateOperationDescriptor)(nil)
	_ OperationDescriptor = (*SetValueOperationDescriptor)(nil)
	_ Descriptor          = (*LimitAlertConditionDescriptor)(nil)
	_ ContextDescriptor   = (*EnsembleContextDescriptor)(nil)
)
