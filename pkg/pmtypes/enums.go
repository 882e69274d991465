package pmtypes

import (
	"errors"
	"fmt"
)

// ErrInvalidEnum is returned when a token is not a member of an enumeration.
var ErrInvalidEnum = errors.New("invalid enumeration value")

// Enum is implemented by every enumeration type in this package.
type Enum interface {
	~string
	Valid() bool
}

// ParseEnum converts s into the enumeration T, rejecting unknown tokens.
func ParseEnum[T Enum](s string) (T, error) {
	v := T(s)
	if !v.Valid() {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrInvalidEnum, s)
	}
	return v, nil
}

// SafetyClassification qualifies the medical safety relevance of an entity.
type SafetyClassification string

const (
	SafetyInformational SafetyClassification = "Inf"
	SafetyMedicalA      SafetyClassification = "MedA"
	SafetyMedicalB      SafetyClassification = "MedB"
	SafetyMedicalC      SafetyClassification = "MedC"
)

// Valid reports whether s is a known safety classification.
func (s SafetyClassification) Valid() bool {
	switch s {
	case SafetyInformational, SafetyMedicalA, SafetyMedicalB, SafetyMedicalC:
		return true
	}
	return false
}

// MetricCategory describes what a metric represents.
type MetricCategory string

const (
	MetricCategoryUnspecified    MetricCategory = "Unspec"
	MetricCategoryMeasurement    MetricCategory = "Msrmt"
	MetricCategoryCalculation    MetricCategory = "Clc"
	MetricCategorySetting        MetricCategory = "Set"
	MetricCategoryPresetting     MetricCategory = "Preset"
	MetricCategoryRecommendation MetricCategory = "Rcmm"
)

// Valid reports whether c is a known metric category.
func (c MetricCategory) Valid() bool {
	switch c {
	case MetricCategoryUnspecified, MetricCategoryMeasurement, MetricCategoryCalculation,
		MetricCategorySetting, MetricCategoryPresetting, MetricCategoryRecommendation:
		return true
	}
	return false
}

// IsSetting reports whether values of this category are operator settings.
// Settings and presettings have their validity forced to Vld when set remotely.
func (c MetricCategory) IsSetting() bool {
	return c == MetricCategorySetting || c == MetricCategoryPresetting
}

// MeasurementValidity is the quality of a metric value.
type MeasurementValidity string

const (
	ValidityValid        MeasurementValidity = "Vld"
	ValidityValidated    MeasurementValidity = "Vldated"
	ValidityOngoing      MeasurementValidity = "Ong"
	ValidityQuestionable MeasurementValidity = "Qst"
	ValidityCalibration  MeasurementValidity = "Calib"
	ValidityInvalid      MeasurementValidity = "Inv"
	ValidityOverflow     MeasurementValidity = "Oflw"
	ValidityUnderflow    MeasurementValidity = "Uflw"
	ValidityNotAvailable MeasurementValidity = "NA"
)

// Valid reports whether v is a known validity.
func (v MeasurementValidity) Valid() bool {
	switch v {
	case ValidityValid, ValidityValidated, ValidityOngoing, ValidityQuestionable, ValidityCalibration,
		ValidityInvalid, ValidityOverflow, ValidityUnderflow, ValidityNotAvailable:
		return true
	}
	return false
}

// GenerationMode tells whether a value is real, test or demo data.
type GenerationMode string

const (
	GenerationReal GenerationMode = "Real"
	GenerationTest GenerationMode = "Test"
	GenerationDemo GenerationMode = "Demo"
)

// Valid reports whether m is a known generation mode.
func (m GenerationMode) Valid() bool {
	switch m {
	case GenerationReal, GenerationTest, GenerationDemo:
		return true
	}
	return false
}

// MetricAvailability is intermittent or continuous.
type MetricAvailability string

const (
	AvailabilityIntermittent MetricAvailability = "Intr"
	AvailabilityContinuous   MetricAvailability = "Cont"
)

// Valid reports whether a is a known availability.
func (a MetricAvailability) Valid() bool {
	return a == AvailabilityIntermittent || a == AvailabilityContinuous
}

// DerivationMethod tells whether a metric is derived automatically or manually.
type DerivationMethod string

const (
	DerivationAutomatic DerivationMethod = "Auto"
	DerivationManual    DerivationMethod = "Man"
)

// Valid reports whether d is a known derivation method.
func (d DerivationMethod) Valid() bool {
	return d == DerivationAutomatic || d == DerivationManual
}

// ComponentActivation is the activation state of components and metrics.
type ComponentActivation string

const (
	ActivationOn       ComponentActivation = "On"
	ActivationNotReady ComponentActivation = "NotRdy"
	ActivationStandBy  ComponentActivation = "StndBy"
	ActivationOff      ComponentActivation = "Off"
	ActivationShutdown ComponentActivation = "Shtdn"
	ActivationFailure  ComponentActivation = "Fail"
)

// Valid reports whether a is a known component activation.
func (a ComponentActivation) Valid() bool {
	switch a {
	case ActivationOn, ActivationNotReady, ActivationStandBy, ActivationOff, ActivationShutdown, ActivationFailure:
		return true
	}
	return false
}

// ContextAssociation is the lifecycle flag of a context state.
type ContextAssociation string

const (
	AssociationNone          ContextAssociation = "No"
	AssociationPre           ContextAssociation = "Pre"
	AssociationAssociated    ContextAssociation = "Assoc"
	AssociationDisassociated ContextAssociation = "Dis"
)

// Valid reports whether a is a known context association.
func (a ContextAssociation) Valid() bool {
	switch a {
	case AssociationNone, AssociationPre, AssociationAssociated, AssociationDisassociated:
		return true
	}
	return false
}

// OperatingMode tells whether an operation is currently enabled.
type OperatingMode string

const (
	OperatingEnabled      OperatingMode = "En"
	OperatingDisabled     OperatingMode = "Dis"
	OperatingNotAvailable OperatingMode = "NA"
)

// Valid reports whether m is a known operating mode.
func (m OperatingMode) Valid() bool {
	switch m {
	case OperatingEnabled, OperatingDisabled, OperatingNotAvailable:
		return true
	}
	return false
}

// InvocationState is one stage in the lifecycle of a remote command.
type InvocationState string

const (
	InvocationWait              InvocationState = "Wait"
	InvocationStarted           InvocationState = "Start"
	InvocationCancelled         InvocationState = "Cnclld"
	InvocationCancelledManually InvocationState = "CnclldMan"
	InvocationFinished          InvocationState = "Fin"
	InvocationFinishedModified  InvocationState = "FinMod"
	InvocationFailed            InvocationState = "Fail"
)

// Valid reports whether s is a known invocation state.
func (s InvocationState) Valid() bool {
	switch s {
	case InvocationWait, InvocationStarted, InvocationCancelled, InvocationCancelledManually,
		InvocationFinished, InvocationFinishedModified, InvocationFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further state follows s.
func (s InvocationState) IsTerminal() bool {
	switch s {
	case InvocationCancelled, InvocationCancelledManually, InvocationFinished,
		InvocationFinishedModified, InvocationFailed:
		return true
	}
	return false
}

// InvocationError classifies a failed invocation.
type InvocationError string

const (
	InvocationErrorUnspecified  InvocationError = "Unspec"
	InvocationErrorUnknown      InvocationError = "Unkn"
	InvocationErrorInvalidValue InvocationError = "Inv"
	InvocationErrorOther        InvocationError = "Oth"
)

// Valid reports whether e is a known invocation error.
func (e InvocationError) Valid() bool {
	switch e {
	case InvocationErrorUnspecified, InvocationErrorUnknown, InvocationErrorInvalidValue, InvocationErrorOther:
		return true
	}
	return false
}

// AlertConditionKind distinguishes physiological and technical alerts.
type AlertConditionKind string

const (
	AlertKindPhysiological AlertConditionKind = "Phy"
	AlertKindTechnical     AlertConditionKind = "Tec"
	AlertKindOther         AlertConditionKind = "Oth"
)

// Valid reports whether k is a known alert condition kind.
func (k AlertConditionKind) Valid() bool {
	return k == AlertKindPhysiological || k == AlertKindTechnical || k == AlertKindOther
}

// AlertConditionPriority is the urgency of an alert condition.
type AlertConditionPriority string

const (
	AlertPriorityNone   AlertConditionPriority = "None"
	AlertPriorityLow    AlertConditionPriority = "Lo"
	AlertPriorityMedium AlertConditionPriority = "Me"
	AlertPriorityHigh   AlertConditionPriority = "Hi"
)

// Valid reports whether p is a known priority.
func (p AlertConditionPriority) Valid() bool {
	switch p {
	case AlertPriorityNone, AlertPriorityLow, AlertPriorityMedium, AlertPriorityHigh:
		return true
	}
	return false
}

// AlertSignalManifestation is how an alert signal is perceived.
type AlertSignalManifestation string

const (
	ManifestationAudible  AlertSignalManifestation = "Aud"
	ManifestationVisible  AlertSignalManifestation = "Vis"
	ManifestationTangible AlertSignalManifestation = "Tan"
	ManifestationOther    AlertSignalManifestation = "Oth"
)

// Valid reports whether m is a known manifestation.
func (m AlertSignalManifestation) Valid() bool {
	switch m {
	case ManifestationAudible, ManifestationVisible, ManifestationTangible, ManifestationOther:
		return true
	}
	return false
}

// AlertActivation is the activation state of alert entities.
type AlertActivation string

const (
	AlertOn     AlertActivation = "On"
	AlertOff    AlertActivation = "Off"
	AlertPaused AlertActivation = "Psd"
)

// Valid reports whether a is a known alert activation.
func (a AlertActivation) Valid() bool {
	return a == AlertOn || a == AlertOff || a == AlertPaused
}

// AlertSignalPresence is the generation state of an alert signal.
type AlertSignalPresence string

const (
	SignalOn    AlertSignalPresence = "On"
	SignalOff   AlertSignalPresence = "Off"
	SignalLatch AlertSignalPresence = "Latch"
	SignalAck   AlertSignalPresence = "Ack"
)

// Valid reports whether p is a known signal presence.
func (p AlertSignalPresence) Valid() bool {
	switch p {
	case SignalOn, SignalOff, SignalLatch, SignalAck:
		return true
	}
	return false
}

// AccessLevel restricts who may invoke an operation.
type AccessLevel string

const (
	AccessUser              AccessLevel = "Usr"
	AccessClinicalSuperUser AccessLevel = "CSUsr"
	AccessResponsibleOrg    AccessLevel = "RO"
	AccessServicePersonnel  AccessLevel = "SP"
	AccessOther             AccessLevel = "Oth"
)

// Valid reports whether l is a known access level.
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessUser, AccessClinicalSuperUser, AccessResponsibleOrg, AccessServicePersonnel, AccessOther:
		return true
	}
	return false
}

// Sex of a patient.
type Sex string

const (
	SexUnspecified Sex = "Unspec"
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
	SexUnknown     Sex = "Unkn"
)

// Valid reports whether s is a known sex.
func (s Sex) Valid() bool {
	switch s {
	case SexUnspecified, SexMale, SexFemale, SexUnknown:
		return true
	}
	return false
}

// PatientType is the age group of a patient.
type PatientType string

const (
	PatientTypeUnspecified PatientType = "Unspec"
	PatientTypeAdult       PatientType = "Ad"
	PatientTypeAdolescent  PatientType = "Ado"
	PatientTypePediatric   PatientType = "Ped"
	PatientTypeInfant      PatientType = "Inf"
	PatientTypeNeonatal    PatientType = "Neo"
	PatientTypeOther       PatientType = "Oth"
)

// Valid reports whether t is a known patient type.
func (t PatientType) Valid() bool {
	switch t {
	case PatientTypeUnspecified, PatientTypeAdult, PatientTypeAdolescent, PatientTypePediatric,
		PatientTypeInfant, PatientTypeNeonatal, PatientTypeOther:
		return true
	}
	return false
}

// AlertConditionMonitoredLimits tells which limits of a limit alert are active.
type AlertConditionMonitoredLimits string

const (
	MonitoredLimitsAll    AlertConditionMonitoredLimits = "All"
	MonitoredLimitsLowOff AlertConditionMonitoredLimits = "LoOff"
	MonitoredLimitsHiOff  AlertConditionMonitoredLimits = "HiOff"
	MonitoredLimitsNone   AlertConditionMonitoredLimits = "None"
)

// Valid reports whether m is a known limit selection.
func (m AlertConditionMonitoredLimits) Valid() bool {
	switch m {
	case MonitoredLimitsAll, MonitoredLimitsLowOff, MonitoredLimitsHiOff, MonitoredLimitsNone:
		return true
	}
	return false
}
