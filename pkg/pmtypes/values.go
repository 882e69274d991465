package pmtypes

import (
	"math"
	"slices"
)

// floatTolerance is the absolute tolerance for values near zero and the
// relative tolerance for everything else.
const floatTolerance = 1e-9

// FloatEqual compares two decimals with tolerance.
func FloatEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	if diff <= floatTolerance {
		return true
	}
	return diff <= floatTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// FloatPtrEqual compares two optional decimals.
func FloatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return FloatEqual(*a, *b)
}

// CodedValue is a code from a coding system, e.g. MDC.
type CodedValue struct {
	Code                string `json:"code"`
	CodingSystem        string `json:"codingSystem,omitempty"`
	CodingSystemVersion string `json:"codingSystemVersion,omitempty"`
}

// Equal compares two coded values.
func (c *CodedValue) Equal(o *CodedValue) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

// Clone returns a copy of c.
func (c *CodedValue) Clone() *CodedValue {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// InstanceIdentifier identifies an instance (patient id, location id, ...).
type InstanceIdentifier struct {
	Root      string `json:"root,omitempty"`
	Extension string `json:"extension,omitempty"`
}

// Range bounds a numeric value. Unset bounds are nil.
type Range struct {
	Lower            *float64 `json:"lower,omitempty"`
	Upper            *float64 `json:"upper,omitempty"`
	StepWidth        *float64 `json:"stepWidth,omitempty"`
	RelativeAccuracy *float64 `json:"relativeAccuracy,omitempty"`
	AbsoluteAccuracy *float64 `json:"absoluteAccuracy,omitempty"`
}

// Equal compares two ranges with decimal tolerance.
func (r *Range) Equal(o *Range) bool {
	if r == nil || o == nil {
		return r == o
	}
	return FloatPtrEqual(r.Lower, o.Lower) &&
		FloatPtrEqual(r.Upper, o.Upper) &&
		FloatPtrEqual(r.StepWidth, o.StepWidth) &&
		FloatPtrEqual(r.RelativeAccuracy, o.RelativeAccuracy) &&
		FloatPtrEqual(r.AbsoluteAccuracy, o.AbsoluteAccuracy)
}

// Clone returns a deep copy of r.
func (r *Range) Clone() *Range {
	if r == nil {
		return nil
	}
	return &Range{
		Lower:            cloneFloat(r.Lower),
		Upper:            cloneFloat(r.Upper),
		StepWidth:        cloneFloat(r.StepWidth),
		RelativeAccuracy: cloneFloat(r.RelativeAccuracy),
		AbsoluteAccuracy: cloneFloat(r.AbsoluteAccuracy),
	}
}

// Measurement is a value with a unit, used for battery capacity and voltage.
type Measurement struct {
	Value float64     `json:"value"`
	Unit  *CodedValue `json:"unit,omitempty"`
}

// Equal compares two measurements.
func (m *Measurement) Equal(o *Measurement) bool {
	if m == nil || o == nil {
		return m == o
	}
	return FloatEqual(m.Value, o.Value) && m.Unit.Equal(o.Unit)
}

// Clone returns a deep copy of m.
func (m *Measurement) Clone() *Measurement {
	if m == nil {
		return nil
	}
	return &Measurement{Value: m.Value, Unit: m.Unit.Clone()}
}

// AllowedValue is one permitted value of an enum string metric.
type AllowedValue struct {
	Value string      `json:"value"`
	Type  *CodedValue `json:"type,omitempty"`
}

// Equal compares two allowed values.
func (a *AllowedValue) Equal(o *AllowedValue) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.Value == o.Value && a.Type.Equal(o.Type)
}

// Clone returns a deep copy of a.
func (a *AllowedValue) Clone() *AllowedValue {
	if a == nil {
		return nil
	}
	return &AllowedValue{Value: a.Value, Type: a.Type.Clone()}
}

// ActivateArgument describes one argument of an activate operation.
type ActivateArgument struct {
	ArgName *CodedValue `json:"argName,omitempty"`
	Arg     string      `json:"arg"`
}

// Equal compares two argument descriptions.
func (a *ActivateArgument) Equal(o *ActivateArgument) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.Arg == o.Arg && a.ArgName.Equal(o.ArgName)
}

// Clone returns a deep copy of a.
func (a *ActivateArgument) Clone() *ActivateArgument {
	if a == nil {
		return nil
	}
	return &ActivateArgument{ArgName: a.ArgName.Clone(), Arg: a.Arg}
}

// ProductionSpecification is one entry of a component's production data.
type ProductionSpecification struct {
	SpecType       *CodedValue         `json:"specType,omitempty"`
	ProductionSpec string              `json:"productionSpec"`
	ComponentID    *InstanceIdentifier `json:"componentId,omitempty"`
}

// Equal compares two production specifications.
func (p *ProductionSpecification) Equal(o *ProductionSpecification) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ProductionSpec != o.ProductionSpec || !p.SpecType.Equal(o.SpecType) {
		return false
	}
	if p.ComponentID == nil || o.ComponentID == nil {
		return p.ComponentID == o.ComponentID
	}
	return *p.ComponentID == *o.ComponentID
}

// Clone returns a deep copy of p.
func (p *ProductionSpecification) Clone() *ProductionSpecification {
	if p == nil {
		return nil
	}
	cp := &ProductionSpecification{SpecType: p.SpecType.Clone(), ProductionSpec: p.ProductionSpec}
	if p.ComponentID != nil {
		id := *p.ComponentID
		cp.ComponentID = &id
	}
	return cp
}

// MetaData holds manufacturer information of an Mds.
type MetaData struct {
	Manufacturer []string `json:"manufacturer,omitempty"`
	ModelName    []string `json:"modelName,omitempty"`
	ModelNumber  string   `json:"modelNumber,omitempty"`
	SerialNumber []string `json:"serialNumber,omitempty"`
	LotNumber    string   `json:"lotNumber,omitempty"`
}

// Equal compares two metadata blocks.
func (m *MetaData) Equal(o *MetaData) bool {
	if m == nil || o == nil {
		return m == o
	}
	return slices.Equal(m.Manufacturer, o.Manufacturer) &&
		slices.Equal(m.ModelName, o.ModelName) &&
		m.ModelNumber == o.ModelNumber &&
		slices.Equal(m.SerialNumber, o.SerialNumber) &&
		m.LotNumber == o.LotNumber
}

// Clone returns a deep copy of m.
func (m *MetaData) Clone() *MetaData {
	if m == nil {
		return nil
	}
	return &MetaData{
		Manufacturer: slices.Clone(m.Manufacturer),
		ModelName:    slices.Clone(m.ModelName),
		ModelNumber:  m.ModelNumber,
		SerialNumber: slices.Clone(m.SerialNumber),
		LotNumber:    m.LotNumber,
	}
}

// MetricQuality qualifies a metric value.
type MetricQuality struct {
	Validity MeasurementValidity `json:"validity,omitempty"`
	Mode     GenerationMode      `json:"mode,omitempty"`
}

// NumericMetricValue is the observed value of a numeric metric.
type NumericMetricValue struct {
	Value             *float64      `json:"value,omitempty"`
	MetricQuality     MetricQuality `json:"metricQuality"`
	DeterminationTime Timestamp     `json:"determinationTime,omitempty"`
}

// NewNumericMetricValue returns an empty value with unset quality.
func NewNumericMetricValue() *NumericMetricValue {
	return &NumericMetricValue{}
}

// Equal compares two numeric metric values with decimal tolerance.
func (v *NumericMetricValue) Equal(o *NumericMetricValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	return FloatPtrEqual(v.Value, o.Value) && v.MetricQuality == o.MetricQuality &&
		v.DeterminationTime == o.DeterminationTime
}

// Clone returns a deep copy of v.
func (v *NumericMetricValue) Clone() *NumericMetricValue {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Value = cloneFloat(v.Value)
	return &cp
}

// StringMetricValue is the observed value of a string or enum string metric.
type StringMetricValue struct {
	Value             *string       `json:"value,omitempty"`
	MetricQuality     MetricQuality `json:"metricQuality"`
	DeterminationTime Timestamp     `json:"determinationTime,omitempty"`
}

// NewStringMetricValue returns an empty value with unset quality.
func NewStringMetricValue() *StringMetricValue {
	return &StringMetricValue{}
}

// Equal compares two string metric values.
func (v *StringMetricValue) Equal(o *StringMetricValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	if (v.Value == nil) != (o.Value == nil) || (v.Value != nil && *v.Value != *o.Value) {
		return false
	}
	return v.MetricQuality == o.MetricQuality && v.DeterminationTime == o.DeterminationTime
}

// Clone returns a deep copy of v.
func (v *StringMetricValue) Clone() *StringMetricValue {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Value != nil {
		s := *v.Value
		cp.Value = &s
	}
	return &cp
}

// SampleArrayValue is the observed value of a sample array metric.
type SampleArrayValue struct {
	Samples           []float64     `json:"samples,omitempty"`
	MetricQuality     MetricQuality `json:"metricQuality"`
	DeterminationTime Timestamp     `json:"determinationTime,omitempty"`
}

// NewSampleArrayValue returns an empty value with unset quality.
func NewSampleArrayValue() *SampleArrayValue {
	return &SampleArrayValue{}
}

// Equal compares two sample arrays element-wise with decimal tolerance.
func (v *SampleArrayValue) Equal(o *SampleArrayValue) bool {
	if v == nil || o == nil {
		return v == o
	}
	if len(v.Samples) != len(o.Samples) {
		return false
	}
	for i := range v.Samples {
		if !FloatEqual(v.Samples[i], o.Samples[i]) {
			return false
		}
	}
	return v.MetricQuality == o.MetricQuality && v.DeterminationTime == o.DeterminationTime
}

// Clone returns a deep copy of v.
func (v *SampleArrayValue) Clone() *SampleArrayValue {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Samples = slices.Clone(v.Samples)
	return &cp
}

// PatientDemographics is the core data of a patient context.
type PatientDemographics struct {
	Givenname   string      `json:"givenname,omitempty"`
	Middlename  []string    `json:"middlename,omitempty"`
	Familyname  string      `json:"familyname,omitempty"`
	Birthname   string      `json:"birthname,omitempty"`
	Title       string      `json:"title,omitempty"`
	Sex         Sex         `json:"sex,omitempty"`
	PatientType PatientType `json:"patientType,omitempty"`
	DateOfBirth string      `json:"dateOfBirth,omitempty"`
}

// Equal compares two demographics blocks.
func (p *PatientDemographics) Equal(o *PatientDemographics) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Givenname == o.Givenname && slices.Equal(p.Middlename, o.Middlename) &&
		p.Familyname == o.Familyname && p.Birthname == o.Birthname && p.Title == o.Title &&
		p.Sex == o.Sex && p.PatientType == o.PatientType && p.DateOfBirth == o.DateOfBirth
}

// Clone returns a deep copy of p.
func (p *PatientDemographics) Clone() *PatientDemographics {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Middlename = slices.Clone(p.Middlename)
	return &cp
}

// LocationDetail is the human readable location of a device.
type LocationDetail struct {
	PoC      string `json:"poc,omitempty"`
	Room     string `json:"room,omitempty"`
	Bed      string `json:"bed,omitempty"`
	Facility string `json:"facility,omitempty"`
	Building string `json:"building,omitempty"`
	Floor    string `json:"floor,omitempty"`
}

// Equal compares two location details.
func (l *LocationDetail) Equal(o *LocationDetail) bool {
	if l == nil || o == nil {
		return l == o
	}
	return *l == *o
}

// Clone returns a copy of l.
func (l *LocationDetail) Clone() *LocationDetail {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
