package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

func same[V comparable](a, b V) bool { return a == b }

var (
	stringAttr = attrCodec[string]{
		format: func(s string) string { return s },
		parse:  func(s string) (string, error) { return s, nil },
		equal:  same[string],
	}

	uintAttr = attrCodec[uint64]{
		format: func(v uint64) string { return strconv.FormatUint(v, 10) },
		parse:  func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) },
		equal:  same[uint64],
	}

	boolAttr = attrCodec[bool]{
		format: strconv.FormatBool,
		parse:  strconv.ParseBool,
		equal:  same[bool],
	}

	decimalAttr = attrCodec[float64]{
		format:  formatDecimal,
		parse:   func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		equal:   pmtypes.FloatEqual,
		decimal: true,
	}

	durationAttr = attrCodec[time.Duration]{
		format: pmtypes.FormatDuration,
		parse:  pmtypes.ParseDuration,
		equal:  same[time.Duration],
	}

	timestampAttr = attrCodec[pmtypes.Timestamp]{
		format: func(ts pmtypes.Timestamp) string { return strconv.FormatUint(uint64(ts), 10) },
		parse: func(s string) (pmtypes.Timestamp, error) {
			v, err := strconv.ParseUint(s, 10, 64)
			return pmtypes.Timestamp(v), err
		},
		equal: same[pmtypes.Timestamp],
	}

	optUintAttr = ptrAttr(uintAttr)
	optBoolAttr = ptrAttr(boolAttr)
)

func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func enumAttr[T pmtypes.Enum]() attrCodec[T] {
	return attrCodec[T]{
		format: func(v T) string { return string(v) },
		parse:  pmtypes.ParseEnum[T],
		equal:  same[T],
	}
}

func ptrAttr[V any](c attrCodec[V]) attrCodec[*V] {
	return attrCodec[*V]{
		format: func(p *V) string { return c.format(*p) },
		parse: func(s string) (*V, error) {
			v, err := c.parse(s)
			if err != nil {
				return nil, err
			}
			return &v, nil
		},
		equal: func(a, b *V) bool {
			if a == nil || b == nil {
				return a == b
			}
			return c.equal(*a, *b)
		},
		clone: func(p *V) *V {
			if p == nil {
				return nil
			}
			v := *p
			return &v
		},
		decimal: c.decimal,
	}
}

// Element codecs for participant model value types.

var textElem = elemCodec[string]{
	encode: textNode,
	decode: func(n *Node) (string, error) { return n.Text, nil },
	equal:  same[string],
	clone:  func(s string) string { return s },
}

var codedValueElem = elemCodec[*pmtypes.CodedValue]{
	encode: encodeCodedValue,
	decode: decodeCodedValue,
	equal:  (*pmtypes.CodedValue).Equal,
	clone:  (*pmtypes.CodedValue).Clone,
}

func encodeCodedValue(tag string, c *pmtypes.CodedValue) *Node {
	n := NewNode(tag)
	n.SetAttr("Code", c.Code)
	if c.CodingSystem != "" {
		n.SetAttr("CodingSystem", c.CodingSystem)
	}
	if c.CodingSystemVersion != "" {
		n.SetAttr("CodingSystemVersion", c.CodingSystemVersion)
	}
	return n
}

func decodeCodedValue(n *Node) (*pmtypes.CodedValue, error) {
	code, ok := n.Attr("Code")
	if !ok {
		return nil, fmt.Errorf("%w: Code", ErrMissingAttribute)
	}
	c := &pmtypes.CodedValue{Code: code}
	c.CodingSystem, _ = n.Attr("CodingSystem")
	c.CodingSystemVersion, _ = n.Attr("CodingSystemVersion")
	return c, nil
}

var instanceIdentifierElem = elemCodec[*pmtypes.InstanceIdentifier]{
	encode: func(tag string, id *pmtypes.InstanceIdentifier) *Node {
		n := NewNode(tag)
		if id.Root != "" {
			n.SetAttr("Root", id.Root)
		}
		if id.Extension != "" {
			n.SetAttr("Extension", id.Extension)
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.InstanceIdentifier, error) {
		id := &pmtypes.InstanceIdentifier{}
		id.Root, _ = n.Attr("Root")
		id.Extension, _ = n.Attr("Extension")
		return id, nil
	},
	equal: func(a, b *pmtypes.InstanceIdentifier) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	},
	clone: func(id *pmtypes.InstanceIdentifier) *pmtypes.InstanceIdentifier {
		if id == nil {
			return nil
		}
		cp := *id
		return &cp
	},
}

var rangeElem = elemCodec[*pmtypes.Range]{
	encode: func(tag string, r *pmtypes.Range) *Node {
		n := NewNode(tag)
		setDecimal(n, "Lower", r.Lower)
		setDecimal(n, "Upper", r.Upper)
		setDecimal(n, "StepWidth", r.StepWidth)
		setDecimal(n, "RelativeAccuracy", r.RelativeAccuracy)
		setDecimal(n, "AbsoluteAccuracy", r.AbsoluteAccuracy)
		return n
	},
	decode: func(n *Node) (*pmtypes.Range, error) {
		r := &pmtypes.Range{}
		var err error
		for name, dst := range map[string]**float64{
			"Lower":            &r.Lower,
			"Upper":            &r.Upper,
			"StepWidth":        &r.StepWidth,
			"RelativeAccuracy": &r.RelativeAccuracy,
			"AbsoluteAccuracy": &r.AbsoluteAccuracy,
		} {
			if *dst, err = getDecimal(n, name); err != nil {
				return nil, err
			}
		}
		return r, nil
	},
	equal: (*pmtypes.Range).Equal,
	clone: (*pmtypes.Range).Clone,
}

var measurementElem = elemCodec[*pmtypes.Measurement]{
	encode: func(tag string, m *pmtypes.Measurement) *Node {
		n := NewNode(tag)
		n.SetAttr("MeasuredValue", formatDecimal(m.Value))
		if m.Unit != nil {
			n.Append(encodeCodedValue("MeasurementUnit", m.Unit))
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.Measurement, error) {
		v, err := getDecimal(n, "MeasuredValue")
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: MeasuredValue", ErrMissingAttribute)
		}
		m := &pmtypes.Measurement{Value: *v}
		if u := n.Child("MeasurementUnit"); u != nil {
			if m.Unit, err = decodeCodedValue(u); err != nil {
				return nil, err
			}
		}
		return m, nil
	},
	equal: (*pmtypes.Measurement).Equal,
	clone: (*pmtypes.Measurement).Clone,
}

var allowedValueElem = elemCodec[*pmtypes.AllowedValue]{
	encode: func(tag string, a *pmtypes.AllowedValue) *Node {
		n := NewNode(tag)
		n.Append(textNode("Value", a.Value))
		if a.Type != nil {
			n.Append(encodeCodedValue("Type", a.Type))
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.AllowedValue, error) {
		a := &pmtypes.AllowedValue{}
		if v := n.Child("Value"); v != nil {
			a.Value = v.Text
		}
		if t := n.Child("Type"); t != nil {
			var err error
			if a.Type, err = decodeCodedValue(t); err != nil {
				return nil, err
			}
		}
		return a, nil
	},
	equal: (*pmtypes.AllowedValue).Equal,
	clone: (*pmtypes.AllowedValue).Clone,
}

var activateArgumentElem = elemCodec[*pmtypes.ActivateArgument]{
	encode: func(tag string, a *pmtypes.ActivateArgument) *Node {
		n := NewNode(tag)
		if a.ArgName != nil {
			n.Append(encodeCodedValue("ArgName", a.ArgName))
		}
		n.Append(textNode("Arg", a.Arg))
		return n
	},
	decode: func(n *Node) (*pmtypes.ActivateArgument, error) {
		a := &pmtypes.ActivateArgument{}
		if c := n.Child("ArgName"); c != nil {
			var err error
			if a.ArgName, err = decodeCodedValue(c); err != nil {
				return nil, err
			}
		}
		if c := n.Child("Arg"); c != nil {
			a.Arg = c.Text
		}
		return a, nil
	},
	equal: (*pmtypes.ActivateArgument).Equal,
	clone: (*pmtypes.ActivateArgument).Clone,
}

var productionSpecElem = elemCodec[*pmtypes.ProductionSpecification]{
	encode: func(tag string, p *pmtypes.ProductionSpecification) *Node {
		n := NewNode(tag)
		if p.SpecType != nil {
			n.Append(encodeCodedValue("SpecType", p.SpecType))
		}
		n.Append(textNode("ProductionSpec", p.ProductionSpec))
		if p.ComponentID != nil {
			n.Append(instanceIdentifierElem.encode("ComponentId", p.ComponentID))
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.ProductionSpecification, error) {
		p := &pmtypes.ProductionSpecification{}
		var err error
		if c := n.Child("SpecType"); c != nil {
			if p.SpecType, err = decodeCodedValue(c); err != nil {
				return nil, err
			}
		}
		if c := n.Child("ProductionSpec"); c != nil {
			p.ProductionSpec = c.Text
		}
		if c := n.Child("ComponentId"); c != nil {
			p.ComponentID, _ = instanceIdentifierElem.decode(c)
		}
		return p, nil
	},
	equal: (*pmtypes.ProductionSpecification).Equal,
	clone: (*pmtypes.ProductionSpecification).Clone,
}

var metaDataElem = elemCodec[*pmtypes.MetaData]{
	encode: func(tag string, m *pmtypes.MetaData) *Node {
		n := NewNode(tag)
		for _, s := range m.Manufacturer {
			n.Append(textNode("Manufacturer", s))
		}
		for _, s := range m.ModelName {
			n.Append(textNode("ModelName", s))
		}
		if m.ModelNumber != "" {
			n.Append(textNode("ModelNumber", m.ModelNumber))
		}
		if m.LotNumber != "" {
			n.Append(textNode("LotNumber", m.LotNumber))
		}
		for _, s := range m.SerialNumber {
			n.Append(textNode("SerialNumber", s))
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.MetaData, error) {
		m := &pmtypes.MetaData{}
		for _, c := range n.Children {
			switch c.Tag {
			case "Manufacturer":
				m.Manufacturer = append(m.Manufacturer, c.Text)
			case "ModelName":
				m.ModelName = append(m.ModelName, c.Text)
			case "ModelNumber":
				m.ModelNumber = c.Text
			case "LotNumber":
				m.LotNumber = c.Text
			case "SerialNumber":
				m.SerialNumber = append(m.SerialNumber, c.Text)
			}
		}
		return m, nil
	},
	equal: (*pmtypes.MetaData).Equal,
	clone: (*pmtypes.MetaData).Clone,
}

func encodeQuality(n *Node, q pmtypes.MetricQuality) {
	qn := NewNode("MetricQuality")
	if q.Validity != "" {
		qn.SetAttr("Validity", string(q.Validity))
	}
	if q.Mode != "" {
		qn.SetAttr("Mode", string(q.Mode))
	}
	n.Append(qn)
}

func decodeQuality(n *Node) (pmtypes.MetricQuality, error) {
	var q pmtypes.MetricQuality
	qn := n.Child("MetricQuality")
	if qn == nil {
		return q, nil
	}
	var err error
	if v, ok := qn.Attr("Validity"); ok {
		if q.Validity, err = pmtypes.ParseEnum[pmtypes.MeasurementValidity](v); err != nil {
			return q, err
		}
	}
	if v, ok := qn.Attr("Mode"); ok {
		if q.Mode, err = pmtypes.ParseEnum[pmtypes.GenerationMode](v); err != nil {
			return q, err
		}
	}
	return q, nil
}

func encodeDeterminationTime(n *Node, ts pmtypes.Timestamp) {
	if !ts.IsZero() {
		n.SetAttr("DeterminationTime", timestampAttr.format(ts))
	}
}

func decodeDeterminationTime(n *Node) (pmtypes.Timestamp, error) {
	if v, ok := n.Attr("DeterminationTime"); ok {
		return timestampAttr.parse(v)
	}
	return 0, nil
}

var numericValueElem = elemCodec[*pmtypes.NumericMetricValue]{
	encode: func(tag string, v *pmtypes.NumericMetricValue) *Node {
		n := NewNode(tag)
		setDecimal(n, "Value", v.Value)
		encodeDeterminationTime(n, v.DeterminationTime)
		encodeQuality(n, v.MetricQuality)
		return n
	},
	decode: func(n *Node) (*pmtypes.NumericMetricValue, error) {
		v := &pmtypes.NumericMetricValue{}
		var err error
		if v.Value, err = getDecimal(n, "Value"); err != nil {
			return nil, err
		}
		if v.DeterminationTime, err = decodeDeterminationTime(n); err != nil {
			return nil, err
		}
		if v.MetricQuality, err = decodeQuality(n); err != nil {
			return nil, err
		}
		return v, nil
	},
	equal: (*pmtypes.NumericMetricValue).Equal,
	clone: (*pmtypes.NumericMetricValue).Clone,
}

var stringValueElem = elemCodec[*pmtypes.StringMetricValue]{
	encode: func(tag string, v *pmtypes.StringMetricValue) *Node {
		n := NewNode(tag)
		if v.Value != nil {
			n.SetAttr("Value", *v.Value)
		}
		encodeDeterminationTime(n, v.DeterminationTime)
		encodeQuality(n, v.MetricQuality)
		return n
	},
	decode: func(n *Node) (*pmtypes.StringMetricValue, error) {
		v := &pmtypes.StringMetricValue{}
		if s, ok := n.Attr("Value"); ok {
			v.Value = &s
		}
		var err error
		if v.DeterminationTime, err = decodeDeterminationTime(n); err != nil {
			return nil, err
		}
		if v.MetricQuality, err = decodeQuality(n); err != nil {
			return nil, err
		}
		return v, nil
	},
	equal: (*pmtypes.StringMetricValue).Equal,
	clone: (*pmtypes.StringMetricValue).Clone,
}

var sampleArrayElem = elemCodec[*pmtypes.SampleArrayValue]{
	encode: func(tag string, v *pmtypes.SampleArrayValue) *Node {
		n := NewNode(tag)
		if len(v.Samples) > 0 {
			parts := make([]string, len(v.Samples))
			for i, s := range v.Samples {
				parts[i] = formatDecimal(s)
			}
			n.SetAttr("Samples", strings.Join(parts, " "))
		}
		encodeDeterminationTime(n, v.DeterminationTime)
		encodeQuality(n, v.MetricQuality)
		return n
	},
	decode: func(n *Node) (*pmtypes.SampleArrayValue, error) {
		v := &pmtypes.SampleArrayValue{}
		if s, ok := n.Attr("Samples"); ok {
			for _, f := range strings.Fields(s) {
				x, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: Samples: %v", ErrInvalidAttribute, err)
				}
				v.Samples = append(v.Samples, x)
			}
		}
		var err error
		if v.DeterminationTime, err = decodeDeterminationTime(n); err != nil {
			return nil, err
		}
		if v.MetricQuality, err = decodeQuality(n); err != nil {
			return nil, err
		}
		return v, nil
	},
	equal: (*pmtypes.SampleArrayValue).Equal,
	clone: (*pmtypes.SampleArrayValue).Clone,
}

var demographicsElem = elemCodec[*pmtypes.PatientDemographics]{
	encode: func(tag string, p *pmtypes.PatientDemographics) *Node {
		n := NewNode(tag)
		appendText := func(name, v string) {
			if v != "" {
				n.Append(textNode(name, v))
			}
		}
		appendText("Givenname", p.Givenname)
		for _, m := range p.Middlename {
			n.Append(textNode("Middlename", m))
		}
		appendText("Familyname", p.Familyname)
		appendText("Birthname", p.Birthname)
		appendText("Title", p.Title)
		appendText("Sex", string(p.Sex))
		appendText("PatientType", string(p.PatientType))
		appendText("DateOfBirth", p.DateOfBirth)
		return n
	},
	decode: func(n *Node) (*pmtypes.PatientDemographics, error) {
		p := &pmtypes.PatientDemographics{}
		var err error
		for _, c := range n.Children {
			switch c.Tag {
			case "Givenname":
				p.Givenname = c.Text
			case "Middlename":
				p.Middlename = append(p.Middlename, c.Text)
			case "Familyname":
				p.Familyname = c.Text
			case "Birthname":
				p.Birthname = c.Text
			case "Title":
				p.Title = c.Text
			case "Sex":
				if p.Sex, err = pmtypes.ParseEnum[pmtypes.Sex](c.Text); err != nil {
					return nil, err
				}
			case "PatientType":
				if p.PatientType, err = pmtypes.ParseEnum[pmtypes.PatientType](c.Text); err != nil {
					return nil, err
				}
			case "DateOfBirth":
				p.DateOfBirth = c.Text
			}
		}
		return p, nil
	},
	equal: (*pmtypes.PatientDemographics).Equal,
	clone: (*pmtypes.PatientDemographics).Clone,
}

var locationDetailElem = elemCodec[*pmtypes.LocationDetail]{
	encode: func(tag string, l *pmtypes.LocationDetail) *Node {
		n := NewNode(tag)
		for _, a := range []Attr{
			{"PoC", l.PoC}, {"Room", l.Room}, {"Bed", l.Bed},
			{"Facility", l.Facility}, {"Building", l.Building}, {"Floor", l.Floor},
		} {
			if a.Value != "" {
				n.SetAttr(a.Name, a.Value)
			}
		}
		return n
	},
	decode: func(n *Node) (*pmtypes.LocationDetail, error) {
		l := &pmtypes.LocationDetail{}
		l.PoC, _ = n.Attr("PoC")
		l.Room, _ = n.Attr("Room")
		l.Bed, _ = n.Attr("Bed")
		l.Facility, _ = n.Attr("Facility")
		l.Building, _ = n.Attr("Building")
		l.Floor, _ = n.Attr("Floor")
		return l, nil
	},
	equal: (*pmtypes.LocationDetail).Equal,
	clone: (*pmtypes.LocationDetail).Clone,
}

func setDecimal(n *Node, name string, v *float64) {
	if v != nil {
		n.SetAttr(name, formatDecimal(*v))
	}
}

func getDecimal(n *Node, name string) (*float64, error) {
	s, ok := n.Attr(name)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidAttribute, name, s)
	}
	return &f, nil
}
