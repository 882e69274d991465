package model

import (
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// on adapts a typed field accessor to the Entity based accessor used by schemas.
func on[T Entity, V any](f func(T) *V) func(Entity) *V {
	return func(e Entity) *V { return f(e.(T)) }
}

// Descriptor fields, in inheritance order.

func descriptorFields() []Field {
	return []Field{
		attribute("Handle", stringAttr, on(func(d Descriptor) *string { return &d.Base().Handle })),
		attribute("DescriptorVersion", uintAttr,
			on(func(d Descriptor) *uint64 { return &d.Base().DescriptorVersion }), optional()),
		attribute("SafetyClassification", enumAttr[pmtypes.SafetyClassification](),
			on(func(d Descriptor) *pmtypes.SafetyClassification { return &d.Base().SafetyClassification }),
			optional(), withDefault(string(pmtypes.SafetyInformational))),
		element("Type", codedValueElem, on(func(d Descriptor) **pmtypes.CodedValue { return &d.Base().Type })),
	}
}

func componentFields() []Field {
	return append(descriptorFields(),
		elementList("ProductionSpecification", productionSpecElem,
			on(func(d ComponentDescriptor) *[]*pmtypes.ProductionSpecification {
				return &d.Component().ProductionSpecification
			})),
	)
}

func durationField(name string, get func(Entity) *time.Duration) Field {
	return attribute(name, durationAttr, get, optional())
}

func metricFields() []Field {
	m := func(d MetricDescriptor) *MetricBase { return d.Metric() }
	return append(descriptorFields(),
		element("Unit", codedValueElem, on(func(d MetricDescriptor) **pmtypes.CodedValue { return &m(d).Unit })),
		elementList("BodySite", codedValueElem,
			on(func(d MetricDescriptor) *[]*pmtypes.CodedValue { return &m(d).BodySite })),
		attribute("MetricCategory", enumAttr[pmtypes.MetricCategory](),
			on(func(d MetricDescriptor) *pmtypes.MetricCategory { return &m(d).MetricCategory }),
			withDefault(string(pmtypes.MetricCategoryUnspecified))),
		attribute("DerivationMethod", enumAttr[pmtypes.DerivationMethod](),
			on(func(d MetricDescriptor) *pmtypes.DerivationMethod { return &m(d).DerivationMethod }), optional()),
		attribute("MetricAvailability", enumAttr[pmtypes.MetricAvailability](),
			on(func(d MetricDescriptor) *pmtypes.MetricAvailability { return &m(d).MetricAvailability }),
			withDefault(string(pmtypes.AvailabilityContinuous))),
		durationField("MaxMeasurementTime",
			on(func(d MetricDescriptor) *time.Duration { return &m(d).MaxMeasurementTime })),
		durationField("MaxDelayTime", on(func(d MetricDescriptor) *time.Duration { return &m(d).MaxDelayTime })),
		durationField("DeterminationPeriod",
			on(func(d MetricDescriptor) *time.Duration { return &m(d).DeterminationPeriod })),
		durationField("LifeTimePeriod", on(func(d MetricDescriptor) *time.Duration { return &m(d).LifeTimePeriod })),
		durationField("ActivationDuration",
			on(func(d MetricDescriptor) *time.Duration { return &m(d).ActivationDuration })),
	)
}

func operationFields() []Field {
	o := func(d OperationDescriptor) *OperationBase { return d.Operation() }
	return append(descriptorFields(),
		attribute("OperationTarget", stringAttr, on(func(d OperationDescriptor) *string { return &o(d).OperationTarget })),
		durationField("MaxTimeToFinish", on(func(d OperationDescriptor) *time.Duration { return &o(d).MaxTimeToFinish })),
		durationField("InvocationEffectiveTimeout",
			on(func(d OperationDescriptor) *time.Duration { return &o(d).InvocationEffectiveTimeout })),
		attribute("Retriggerable", optBoolAttr, on(func(d OperationDescriptor) **bool { return &o(d).Retriggerable }),
			optional()),
		attribute("AccessLevel", enumAttr[pmtypes.AccessLevel](),
			on(func(d OperationDescriptor) *pmtypes.AccessLevel { return &o(d).AccessLevel }), optional()),
	)
}

func setStateOperationFields() []Field {
	return append(operationFields(),
		elementList("ModifiableData", textElem,
			on(func(d SetStateOperationDescriptor) *[]string { return &d.SetState().ModifiableData })),
	)
}

type alertCondition interface {
	Descriptor
	Condition() *AlertConditionDescriptor
}

func alertConditionFields() []Field {
	c := func(d alertCondition) *AlertConditionDescriptor { return d.Condition() }
	return append(descriptorFields(),
		elementList("Source", textElem, on(func(d alertCondition) *[]string { return &c(d).Source })),
		attribute("Kind", enumAttr[pmtypes.AlertConditionKind](),
			on(func(d alertCondition) *pmtypes.AlertConditionKind { return &c(d).Kind }),
			withDefault(string(pmtypes.AlertKindOther))),
		attribute("Priority", enumAttr[pmtypes.AlertConditionPriority](),
			on(func(d alertCondition) *pmtypes.AlertConditionPriority { return &c(d).Priority }),
			withDefault(string(pmtypes.AlertPriorityNone))),
		durationField("DefaultConditionGenerationDelay",
			on(func(d alertCondition) *time.Duration { return &c(d).DefaultConditionGenerationDelay })),
		attribute("CanEscalate", enumAttr[pmtypes.AlertConditionPriority](),
			on(func(d alertCondition) *pmtypes.AlertConditionPriority { return &c(d).CanEscalate }), optional()),
		attribute("CanDeescalate", enumAttr[pmtypes.AlertConditionPriority](),
			on(func(d alertCondition) *pmtypes.AlertConditionPriority { return &c(d).CanDeescalate }), optional()),
	)
}

// complexComponent declares the groups of AbstractComplexDeviceComponent.
func complexComponent(b *schemaBuilder) *schemaBuilder {
	return b.fields(componentFields()...).
		group("AlertSystem", AlertSystemDescriptorType).
		group("Sco", ScoDescriptorType)
}

func registerDescriptors(r *Registry) {
	r.addDescriptor(func() Descriptor { return &MdsDescriptor{} }, MdsStateType,
		complexComponent(newSchema(MdsDescriptorType)).
			fields(element("MetaData", metaDataElem,
				on(func(d *MdsDescriptor) **pmtypes.MetaData { return &d.MetaData }))).
			group("SystemContext", SystemContextDescriptorType).
			group("Clock", ClockDescriptorType).
			group("Battery", BatteryDescriptorType).
			group("Vmd", VmdDescriptorType).
			build())

	r.addDescriptor(func() Descriptor { return &VmdDescriptor{} }, VmdStateType,
		complexComponent(newSchema(VmdDescriptorType)).
			group("Channel", ChannelDescriptorType).
			build())

	r.addDescriptor(func() Descriptor { return &ChannelDescriptor{} }, ChannelStateType,
		newSchema(ChannelDescriptorType).
			fields(componentFields()...).
			group("Metric", metricTypes...).
			build())

	r.addDescriptor(func() Descriptor { return &ClockDescriptor{} }, ClockStateType,
		newSchema(ClockDescriptorType).
			fields(componentFields()...).
			fields(
				elementList("TimeProtocol", codedValueElem,
					on(func(d *ClockDescriptor) *[]*pmtypes.CodedValue { return &d.TimeProtocol })),
				durationField("Resolution", on(func(d *ClockDescriptor) *time.Duration { return &d.Resolution })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &BatteryDescriptor{} }, BatteryStateType,
		newSchema(BatteryDescriptorType).
			fields(componentFields()...).
			fields(
				element("CapacityFullCharge", measurementElem,
					on(func(d *BatteryDescriptor) **pmtypes.Measurement { return &d.CapacityFullCharge })),
				element("CapacitySpecified", measurementElem,
					on(func(d *BatteryDescriptor) **pmtypes.Measurement { return &d.CapacitySpecified })),
				element("VoltageSpecified", measurementElem,
					on(func(d *BatteryDescriptor) **pmtypes.Measurement { return &d.VoltageSpecified })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &ScoDescriptor{} }, ScoStateType,
		newSchema(ScoDescriptorType).
			fields(componentFields()...).
			group("Operation", operationTypes...).
			build())

	r.addDescriptor(func() Descriptor { return &SystemContextDescriptor{} }, SystemContextStateType,
		newSchema(SystemContextDescriptorType).
			fields(componentFields()...).
			group("PatientContext", PatientContextDescriptorType).
			group("LocationContext", LocationContextDescriptorType).
			group("EnsembleContext", EnsembleContextDescriptorType).
			group("OperatorContext", OperatorContextDescriptorType).
			group("WorkflowContext", WorkflowContextDescriptorType).
			group("MeansContext", MeansContextDescriptorType).
			build())

	// Metrics are leaves.
	r.addDescriptor(func() Descriptor { return &NumericMetricDescriptor{} }, NumericMetricStateType,
		newSchema(NumericMetricDescriptorType).
			fields(metricFields()...).
			fields(
				elementList("TechnicalRange", rangeElem,
					on(func(d *NumericMetricDescriptor) *[]*pmtypes.Range { return &d.TechnicalRange })),
				attribute("Resolution", decimalAttr,
					on(func(d *NumericMetricDescriptor) *float64 { return &d.Resolution })),
				durationField("AveragingPeriod",
					on(func(d *NumericMetricDescriptor) *time.Duration { return &d.AveragingPeriod })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &StringMetricDescriptor{} }, StringMetricStateType,
		newSchema(StringMetricDescriptorType).fields(metricFields()...).build())

	r.addDescriptor(func() Descriptor { return &EnumStringMetricDescriptor{} }, EnumStringMetricStateType,
		newSchema(EnumStringMetricDescriptorType).
			fields(metricFields()...).
			fields(elementList("AllowedValue", allowedValueElem,
				on(func(d *EnumStringMetricDescriptor) *[]*pmtypes.AllowedValue { return &d.AllowedValue }))).
			build())

	r.addDescriptor(func() Descriptor { return &RealTimeSampleArrayMetricDescriptor{} },
		RealTimeSampleArrayMetricStateType,
		newSchema(RealTimeSampleArrayMetricDescriptorType).
			fields(metricFields()...).
			fields(
				elementList("TechnicalRange", rangeElem,
					on(func(d *RealTimeSampleArrayMetricDescriptor) *[]*pmtypes.Range { return &d.TechnicalRange })),
				attribute("Resolution", decimalAttr,
					on(func(d *RealTimeSampleArrayMetricDescriptor) *float64 { return &d.Resolution })),
				durationField("SamplePeriod",
					on(func(d *RealTimeSampleArrayMetricDescriptor) *time.Duration { return &d.SamplePeriod })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &DistributionSampleArrayMetricDescriptor{} },
		DistributionSampleArrayMetricStateType,
		newSchema(DistributionSampleArrayMetricDescriptorType).
			fields(metricFields()...).
			fields(
				elementList("TechnicalRange", rangeElem,
					on(func(d *DistributionSampleArrayMetricDescriptor) *[]*pmtypes.Range { return &d.TechnicalRange })),
				element("DomainUnit", codedValueElem,
					on(func(d *DistributionSampleArrayMetricDescriptor) **pmtypes.CodedValue { return &d.DomainUnit })),
				element("DistributionRange", rangeElem,
					on(func(d *DistributionSampleArrayMetricDescriptor) **pmtypes.Range { return &d.DistributionRange })),
				attribute("Resolution", decimalAttr,
					on(func(d *DistributionSampleArrayMetricDescriptor) *float64 { return &d.Resolution })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &SetValueOperationDescriptor{} }, SetValueOperationStateType,
		newSchema(SetValueOperationDescriptorType).fields(operationFields()...).build())

	r.addDescriptor(func() Descriptor { return &SetStringOperationDescriptor{} }, SetStringOperationStateType,
		newSchema(SetStringOperationDescriptorType).
			fields(operationFields()...).
			fields(attribute("MaxLength", optUintAttr,
				on(func(d *SetStringOperationDescriptor) **uint64 { return &d.MaxLength }), optional())).
			build())

	r.addDescriptor(func() Descriptor { return &SetContextStateOperationDescriptor{} },
		SetContextStateOperationStateType,
		newSchema(SetContextStateOperationDescriptorType).fields(setStateOperationFields()...).build())
	r.addDescriptor(func() Descriptor { return &SetMetricStateOperationDescriptor{} },
		SetMetricStateOperationStateType,
		newSchema(SetMetricStateOperationDescriptorType).fields(setStateOperationFields()...).build())
	r.addDescriptor(func() Descriptor { return &SetComponentStateOperationDescriptor{} },
		SetComponentStateOperationStateType,
		newSchema(SetComponentStateOperationDescriptorType).fields(setStateOperationFields()...).build())
	r.addDescriptor(func() Descriptor { return &SetAlertStateOperationDescriptor{} },
		SetAlertStateOperationStateType,
		newSchema(SetAlertStateOperationDescriptorType).fields(setStateOperationFields()...).build())

	r.addDescriptor(func() Descriptor { return &ActivateOperationDescriptor{} }, ActivateOperationStateType,
		newSchema(ActivateOperationDescriptorType).
			fields(setStateOperationFields()...).
			fields(elementList("Argument", activateArgumentElem,
				on(func(d *ActivateOperationDescriptor) *[]*pmtypes.ActivateArgument { return &d.Argument }))).
			build())

	r.addDescriptor(func() Descriptor { return &AlertSystemDescriptor{} }, AlertSystemStateType,
		newSchema(AlertSystemDescriptorType).
			fields(descriptorFields()...).
			group("AlertCondition", AlertConditionDescriptorType, LimitAlertConditionDescriptorType).
			group("AlertSignal", AlertSignalDescriptorType).
			fields(
				attribute("MaxPhysiologicalParallelAlarms", optUintAttr,
					on(func(d *AlertSystemDescriptor) **uint64 { return &d.MaxPhysiologicalParallelAlarms }), optional()),
				attribute("MaxTechnicalParallelAlarms", optUintAttr,
					on(func(d *AlertSystemDescriptor) **uint64 { return &d.MaxTechnicalParallelAlarms }), optional()),
				durationField("SelfCheckPeriod",
					on(func(d *AlertSystemDescriptor) *time.Duration { return &d.SelfCheckPeriod })),
			).
			build())

	r.addDescriptor(func() Descriptor { return &AlertConditionDescriptor{} }, AlertConditionStateType,
		newSchema(AlertConditionDescriptorType).fields(alertConditionFields()...).build())

	r.addDescriptor(func() Descriptor { return &LimitAlertConditionDescriptor{} }, LimitAlertConditionStateType,
		newSchema(LimitAlertConditionDescriptorType).
			fields(alertConditionFields()...).
			fields(
				element("MaxLimits", rangeElem,
					on(func(d *LimitAlertConditionDescriptor) **pmtypes.Range { return &d.MaxLimits })),
				attribute("AutoLimitSupported", boolAttr,
					on(func(d *LimitAlertConditionDescriptor) *bool { return &d.AutoLimitSupported }), optional()),
			).
			build())

	r.addDescriptor(func() Descriptor { return &AlertSignalDescriptor{} }, AlertSignalStateType,
		newSchema(AlertSignalDescriptorType).
			fields(descriptorFields()...).
			fields(
				attribute("ConditionSignaled", stringAttr,
					on(func(d *AlertSignalDescriptor) *string { return &d.ConditionSignaled }), optional()),
				attribute("Manifestation", enumAttr[pmtypes.AlertSignalManifestation](),
					on(func(d *AlertSignalDescriptor) *pmtypes.AlertSignalManifestation { return &d.Manifestation }),
					withDefault(string(pmtypes.ManifestationOther))),
				attribute("Latching", boolAttr, on(func(d *AlertSignalDescriptor) *bool { return &d.Latching })),
				durationField("DefaultSignalGenerationDelay",
					on(func(d *AlertSignalDescriptor) *time.Duration { return &d.DefaultSignalGenerationDelay })),
				durationField("MinSignalGenerationDelay",
					on(func(d *AlertSignalDescriptor) *time.Duration { return &d.MinSignalGenerationDelay })),
				durationField("MaxSignalGenerationDelay",
					on(func(d *AlertSignalDescriptor) *time.Duration { return &d.MaxSignalGenerationDelay })),
				attribute("SignalDelegationSupported", boolAttr,
					on(func(d *AlertSignalDescriptor) *bool { return &d.SignalDelegationSupported }), optional()),
				attribute("AcknowledgementSupported", boolAttr,
					on(func(d *AlertSignalDescriptor) *bool { return &d.AcknowledgementSupported }), optional()),
				durationField("AcknowledgeTimeout",
					on(func(d *AlertSignalDescriptor) *time.Duration { return &d.AcknowledgeTimeout })),
			).
			build())

	contexts := []struct {
		t     NodeType
		state NodeType
		new   func() Descriptor
	}{
		{PatientContextDescriptorType, PatientContextStateType, func() Descriptor { return &PatientContextDescriptor{} }},
		{LocationContextDescriptorType, LocationContextStateType, func() Descriptor { return &LocationContextDescriptor{} }},
		{WorkflowContextDescriptorType, WorkflowContextStateType, func() Descriptor { return &WorkflowContextDescriptor{} }},
		{OperatorContextDescriptorType, OperatorContextStateType, func() Descriptor { return &OperatorContextDescriptor{} }},
		{MeansContextDescriptorType, MeansContextStateType, func() Descriptor { return &MeansContextDescriptor{} }},
		{EnsembleContextDescriptorType, EnsembleContextStateType, func() Descriptor { return &EnsembleContextDescriptor{} }},
	}
	for _, c := range contexts {
		r.addDescriptor(c.new, c.state, newSchema(c.t).fields(descriptorFields()...).build())
	}
}

// State fields, in inheritance order.

func stateFields() []Field {
	return []Field{
		attribute("DescriptorHandle", stringAttr, on(func(s State) *string { return &s.Base().DescriptorHandle })),
		attribute("DescriptorVersion", uintAttr, on(func(s State) *uint64 { return &s.Base().DescriptorVersion }),
			optional()),
		attribute("StateVersion", uintAttr, on(func(s State) *uint64 { return &s.Base().StateVersion }), optional()),
	}
}

type componentState interface {
	State
	ComponentState() *ComponentStateBase
}

func componentStateFields() []Field {
	c := func(s componentState) *ComponentStateBase { return s.ComponentState() }
	return append(stateFields(),
		attribute("ActivationState", enumAttr[pmtypes.ComponentActivation](),
			on(func(s componentState) *pmtypes.ComponentActivation { return &c(s).ActivationState }), optional()),
		attribute("OperatingHours", optUintAttr, on(func(s componentState) **uint64 { return &c(s).OperatingHours }),
			optional()),
		attribute("OperatingCycles", optUintAttr, on(func(s componentState) **uint64 { return &c(s).OperatingCycles }),
			optional()),
	)
}

type metricState interface {
	State
	MetricState() *MetricStateBase
}

func metricStateFields() []Field {
	return append(stateFields(),
		attribute("ActivationState", enumAttr[pmtypes.ComponentActivation](),
			on(func(s metricState) *pmtypes.ComponentActivation { return &s.MetricState().ActivationState }),
			optional()),
		durationField("ActiveDeterminationPeriod",
			on(func(s metricState) *time.Duration { return &s.MetricState().ActiveDeterminationPeriod })),
	)
}

func contextStateFields() []Field {
	c := func(s ContextState) *ContextStateBase { return s.Context() }
	return append(stateFields(),
		attribute("Handle", stringAttr, on(func(s ContextState) *string { return &c(s).Handle })),
		attribute("ContextAssociation", enumAttr[pmtypes.ContextAssociation](),
			on(func(s ContextState) *pmtypes.ContextAssociation { return &c(s).ContextAssociation }), optional()),
		attribute("BindingMdibVersion", optUintAttr,
			on(func(s ContextState) **uint64 { return &c(s).BindingMdibVersion }), optional()),
		attribute("UnbindingMdibVersion", optUintAttr,
			on(func(s ContextState) **uint64 { return &c(s).UnbindingMdibVersion }), optional()),
		attribute("BindingStartTime", timestampAttr,
			on(func(s ContextState) *pmtypes.Timestamp { return &c(s).BindingStartTime }), optional()),
		attribute("BindingEndTime", timestampAttr,
			on(func(s ContextState) *pmtypes.Timestamp { return &c(s).BindingEndTime }), optional()),
		elementList("Identification", instanceIdentifierElem,
			on(func(s ContextState) *[]*pmtypes.InstanceIdentifier { return &c(s).Identification })),
	)
}

type conditionState interface {
	State
	ConditionState() *AlertConditionState
}

func alertConditionStateFields() []Field {
	c := func(s conditionState) *AlertConditionState { return s.ConditionState() }
	return append(stateFields(),
		attribute("ActivationState", enumAttr[pmtypes.AlertActivation](),
			on(func(s conditionState) *pmtypes.AlertActivation { return &c(s).ActivationState }),
			withDefault(string(pmtypes.AlertOn))),
		durationField("ActualConditionGenerationDelay",
			on(func(s conditionState) *time.Duration { return &c(s).ActualConditionGenerationDelay })),
		attribute("ActualPriority", enumAttr[pmtypes.AlertConditionPriority](),
			on(func(s conditionState) *pmtypes.AlertConditionPriority { return &c(s).ActualPriority }), optional()),
		attribute("Presence", boolAttr, on(func(s conditionState) *bool { return &c(s).Presence }), optional()),
		attribute("DeterminationTime", timestampAttr,
			on(func(s conditionState) *pmtypes.Timestamp { return &c(s).DeterminationTime }), optional()),
	)
}

func registerStates(r *Registry) {
	components := []struct {
		t   NodeType
		new func() State
	}{
		{MdsStateType, func() State { return &MdsState{} }},
		{VmdStateType, func() State { return &VmdState{} }},
		{ChannelStateType, func() State { return &ChannelState{} }},
		{ScoStateType, func() State { return &ScoState{} }},
		{SystemContextStateType, func() State { return &SystemContextState{} }},
	}
	for _, c := range components {
		r.addState(c.new, false, newSchema(c.t).fields(componentStateFields()...).build())
	}

	r.addState(func() State { return &ClockState{} }, false,
		newSchema(ClockStateType).
			fields(componentStateFields()...).
			fields(
				attribute("RemoteSync", boolAttr, on(func(s *ClockState) *bool { return &s.RemoteSync })),
				attribute("DateAndTime", timestampAttr,
					on(func(s *ClockState) *pmtypes.Timestamp { return &s.DateAndTime }), optional()),
				attribute("LastSet", timestampAttr,
					on(func(s *ClockState) *pmtypes.Timestamp { return &s.LastSet }), optional()),
			).
			build())

	r.addState(func() State { return &BatteryState{} }, false,
		newSchema(BatteryStateType).
			fields(componentStateFields()...).
			fields(
				element("CapacityRemaining", measurementElem,
					on(func(s *BatteryState) **pmtypes.Measurement { return &s.CapacityRemaining })),
				element("Voltage", measurementElem,
					on(func(s *BatteryState) **pmtypes.Measurement { return &s.Voltage })),
				durationField("RemainingBatteryTime",
					on(func(s *BatteryState) *time.Duration { return &s.RemainingBatteryTime })),
			).
			build())

	r.addState(func() State { return &NumericMetricState{} }, false,
		newSchema(NumericMetricStateType).
			fields(metricStateFields()...).
			fields(
				element("MetricValue", numericValueElem,
					on(func(s *NumericMetricState) **pmtypes.NumericMetricValue { return &s.MetricValue })),
				elementList("PhysiologicalRange", rangeElem,
					on(func(s *NumericMetricState) *[]*pmtypes.Range { return &s.PhysiologicalRange })),
			).
			build())

	r.addState(func() State { return &StringMetricState{} }, false,
		newSchema(StringMetricStateType).
			fields(metricStateFields()...).
			fields(element("MetricValue", stringValueElem,
				on(func(s *StringMetricState) **pmtypes.StringMetricValue { return &s.MetricValue }))).
			build())

	r.addState(func() State { return &EnumStringMetricState{} }, false,
		newSchema(EnumStringMetricStateType).
			fields(metricStateFields()...).
			fields(element("MetricValue", stringValueElem,
				on(func(s *EnumStringMetricState) **pmtypes.StringMetricValue { return &s.MetricValue }))).
			build())

	r.addState(func() State { return &RealTimeSampleArrayMetricState{} }, false,
		newSchema(RealTimeSampleArrayMetricStateType).
			fields(metricStateFields()...).
			fields(element("MetricValue", sampleArrayElem,
				on(func(s *RealTimeSampleArrayMetricState) **pmtypes.SampleArrayValue { return &s.MetricValue }))).
			build())

	r.addState(func() State { return &DistributionSampleArrayMetricState{} }, false,
		newSchema(DistributionSampleArrayMetricStateType).
			fields(metricStateFields()...).
			fields(element("MetricValue", sampleArrayElem,
				on(func(s *DistributionSampleArrayMetricState) **pmtypes.SampleArrayValue { return &s.MetricValue }))).
			build())

	operationMode := attribute("OperatingMode", enumAttr[pmtypes.OperatingMode](),
		on(func(s OperationStateEntity) *pmtypes.OperatingMode { return &s.OperationState().OperatingMode }),
		withDefault(string(pmtypes.OperatingEnabled)))
	operations := []struct {
		t   NodeType
		new func() State
	}{
		{SetValueOperationStateType, func() State { return &SetValueOperationState{} }},
		{SetStringOperationStateType, func() State { return &SetStringOperationState{} }},
		{SetContextStateOperationStateType, func() State { return &SetContextStateOperationState{} }},
		{SetMetricStateOperationStateType, func() State { return &SetMetricStateOperationState{} }},
		{SetComponentStateOperationStateType, func() State { return &SetComponentStateOperationState{} }},
		{SetAlertStateOperationStateType, func() State { return &SetAlertStateOperationState{} }},
		{ActivateOperationStateType, func() State { return &ActivateOperationState{} }},
	}
	for _, o := range operations {
		r.addState(o.new, false, newSchema(o.t).fields(stateFields()...).fields(operationMode).build())
	}

	r.addState(func() State { return &AlertSystemState{} }, false,
		newSchema(AlertSystemStateType).
			fields(stateFields()...).
			fields(
				attribute("ActivationState", enumAttr[pmtypes.AlertActivation](),
					on(func(s *AlertSystemState) *pmtypes.AlertActivation { return &s.ActivationState }),
					withDefault(string(pmtypes.AlertOn))),
				attribute("LastSelfCheck", timestampAttr,
					on(func(s *AlertSystemState) *pmtypes.Timestamp { return &s.LastSelfCheck }), optional()),
				attribute("SelfCheckCount", optUintAttr,
					on(func(s *AlertSystemState) **uint64 { return &s.SelfCheckCount }), optional()),
			).
			build())

	r.addState(func() State { return &AlertConditionState{} }, false,
		newSchema(AlertConditionStateType).fields(alertConditionStateFields()...).build())

	r.addState(func() State { return &LimitAlertConditionState{} }, false,
		newSchema(LimitAlertConditionStateType).
			fields(alertConditionStateFields()...).
			fields(
				element("Limits", rangeElem, on(func(s *LimitAlertConditionState) **pmtypes.Range { return &s.Limits })),
				attribute("MonitoredAlertLimits", enumAttr[pmtypes.AlertConditionMonitoredLimits](),
					on(func(s *LimitAlertConditionState) *pmtypes.AlertConditionMonitoredLimits {
						return &s.MonitoredAlertLimits
					}),
					withDefault(string(pmtypes.MonitoredLimitsAll))),
				attribute("AutoLimitActivationState", enumAttr[pmtypes.AlertActivation](),
					on(func(s *LimitAlertConditionState) *pmtypes.AlertActivation { return &s.AutoLimitActivationState }),
					optional()),
			).
			build())

	r.addState(func() State { return &AlertSignalState{} }, false,
		newSchema(AlertSignalStateType).
			fields(stateFields()...).
			fields(
				attribute("ActivationState", enumAttr[pmtypes.AlertActivation](),
					on(func(s *AlertSignalState) *pmtypes.AlertActivation { return &s.ActivationState }),
					withDefault(string(pmtypes.AlertOn))),
				durationField("ActualSignalGenerationDelay",
					on(func(s *AlertSignalState) *time.Duration { return &s.ActualSignalGenerationDelay })),
				attribute("Presence", enumAttr[pmtypes.AlertSignalPresence](),
					on(func(s *AlertSignalState) *pmtypes.AlertSignalPresence { return &s.Presence }), optional()),
				attribute("Slot", optUintAttr, on(func(s *AlertSignalState) **uint64 { return &s.Slot }), optional()),
			).
			build())

	r.addState(func() State { return &PatientContextState{} }, true,
		newSchema(PatientContextStateType).
			fields(contextStateFields()...).
			fields(element("CoreData", demographicsElem,
				on(func(s *PatientContextState) **pmtypes.PatientDemographics { return &s.CoreData }))).
			build())

	r.addState(func() State { return &LocationContextState{} }, true,
		newSchema(LocationContextStateType).
			fields(contextStateFields()...).
			fields(element("LocationDetail", locationDetailElem,
				on(func(s *LocationContextState) **pmtypes.LocationDetail { return &s.LocationDetail }))).
			build())

	contexts := []struct {
		t   NodeType
		new func() State
	}{
		{WorkflowContextStateType, func() State { return &WorkflowContextState{} }},
		{OperatorContextStateType, func() State { return &OperatorContextState{} }},
		{MeansContextStateType, func() State { return &MeansContextState{} }},
		{EnsembleContextStateType, func() State { return &EnsembleContextState{} }},
	}
	for _, c := range contexts {
		r.addState(c.new, true, newSchema(c.t).fields(contextStateFields()...).build())
	}
}
