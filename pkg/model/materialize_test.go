package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// testTree is a small descriptor tree with a map based resolver.
type testTree struct {
	r     *Registry
	byKey map[string]Descriptor
}

func newTestTree(t *testing.T) *testTree {
	t.Helper()
	return &testTree{r: NewRegistry(), byKey: make(map[string]Descriptor)}
}

func (tt *testTree) add(t *testing.T, nt NodeType, handle, parent string) Descriptor {
	t.Helper()
	d, err := tt.r.CreateDescriptor(nt, handle, parent)
	if err != nil {
		t.Fatalf("CreateDescriptor(%s) failed: %v", nt, err)
	}
	if parent != "" {
		if err := tt.r.AddChild(tt.byKey[parent], d); err != nil {
			t.Fatalf("AddChild(%s, %s) failed: %v", parent, handle, err)
		}
	}
	tt.byKey[handle] = d
	return d
}

func (tt *testTree) resolver() Resolver {
	return ResolverFunc(func(h string) (Descriptor, bool) {
		d, ok := tt.byKey[h]
		return d, ok
	})
}

func childTags(n *Node) []string {
	tags := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		tags = append(tags, c.Tag)
	}
	return tags
}

func TestMaterializeOrderIgnoresInsertionOrder(t *testing.T) {
	tt := newTestTree(t)
	mds := tt.add(t, MdsDescriptorType, "mds", "")
	tt.add(t, VmdDescriptorType, "vmd", "mds")
	tt.add(t, BatteryDescriptorType, "bat", "mds")
	tt.add(t, ClockDescriptorType, "clk", "mds")
	tt.add(t, SystemContextDescriptorType, "sc", "mds")
	tt.add(t, ScoDescriptorType, "sco", "mds")
	tt.add(t, AlertSystemDescriptorType, "as", "mds")
	mds.Base().Type = &pmtypes.CodedValue{Code: "70001"}
	mds.(*MdsDescriptor).MetaData = &pmtypes.MetaData{Manufacturer: []string{"ACME"}}

	n, err := tt.r.Materialize(mds, "Mds", tt.resolver())
	require.NoError(t, err)

	want := []string{"Type", "AlertSystem", "Sco", "MetaData", "SystemContext", "Clock", "Battery", "Vmd"}
	assert.Equal(t, want, childTags(n))
	assert.Equal(t, "Mds", n.Tag)
	assert.Equal(t, string(MdsDescriptorType), n.Type)
	h, _ := n.Attr("Handle")
	assert.Equal(t, "mds", h)
}

func TestMaterializeGroupsShareTag(t *testing.T) {
	tt := newTestTree(t)
	tt.add(t, MdsDescriptorType, "mds", "")
	as := tt.add(t, AlertSystemDescriptorType, "as", "mds")
	tt.add(t, AlertSignalDescriptorType, "sig", "as")
	tt.add(t, LimitAlertConditionDescriptorType, "lim", "as")
	tt.add(t, AlertConditionDescriptorType, "cond", "as")

	n, err := tt.r.Materialize(as, "AlertSystem", tt.resolver())
	require.NoError(t, err)
	assert.Equal(t, []string{"AlertCondition", "AlertCondition", "AlertSignal"}, childTags(n))
	// same-tag children keep insertion order
	assert.Equal(t, string(LimitAlertConditionDescriptorType), n.Children[0].Type)
	assert.Equal(t, string(AlertConditionDescriptorType), n.Children[1].Type)
}

func TestMaterializeUndeclaredChild(t *testing.T) {
	tt := newTestTree(t)
	tt.add(t, MdsDescriptorType, "mds", "")
	vmd := tt.add(t, VmdDescriptorType, "vmd", "mds")
	ch := tt.add(t, ChannelDescriptorType, "ch", "vmd")

	// bypass AddChild to simulate a corrupt tree
	ch.Base().children = append(ch.Base().children, ChildRef{Handle: "vmd", Type: vmd.NodeType()})

	_, err := tt.r.Materialize(ch, "Channel", tt.resolver())
	if !errors.Is(err, ErrUndeclaredChild) {
		t.Fatalf("Materialize error = %v, want ErrUndeclaredChild", err)
	}
}

func TestMaterializeUnknownChildHandle(t *testing.T) {
	tt := newTestTree(t)
	tt.add(t, MdsDescriptorType, "mds", "")
	vmd := tt.add(t, VmdDescriptorType, "vmd", "mds")
	tt.add(t, ChannelDescriptorType, "ch", "vmd")
	delete(tt.byKey, "ch")

	_, err := tt.r.Materialize(vmd, "", tt.resolver())
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestMaterializeWithoutResolverOmitsChildren(t *testing.T) {
	tt := newTestTree(t)
	tt.add(t, MdsDescriptorType, "mds", "")
	vmd := tt.add(t, VmdDescriptorType, "vmd", "mds")
	tt.add(t, ChannelDescriptorType, "ch", "vmd")

	n, err := tt.r.Materialize(vmd, "", nil)
	require.NoError(t, err)
	assert.Empty(t, n.Children)
	assert.Equal(t, string(VmdDescriptorType), n.Tag)
}

func TestOrderChildrenRejectsUndeclared(t *testing.T) {
	r := NewRegistry()
	s, err := r.Schema(ScoDescriptorType)
	require.NoError(t, err)

	_, err = s.OrderChildren([]*Node{NewNode("Operation"), NewNode("Metric")})
	assert.ErrorIs(t, err, ErrUndeclaredChild)

	out, err := s.OrderChildren([]*Node{NewNode("Operation"), NewNode("Type")})
	require.NoError(t, err)
	assert.Equal(t, "Type", out[0].Tag)
}

func TestDescriptorRoundTrip(t *testing.T) {
	tt := newTestTree(t)
	mds := tt.add(t, MdsDescriptorType, "mds", "")
	tt.add(t, VmdDescriptorType, "vmd", "mds")
	tt.add(t, ChannelDescriptorType, "ch", "vmd")
	m := tt.add(t, NumericMetricDescriptorType, "m1", "ch").(*NumericMetricDescriptor)
	m.MetricCategory = pmtypes.MetricCategorySetting
	m.Unit = &pmtypes.CodedValue{Code: "262688", CodingSystem: "urn:oid:1.2.840.10004.1.1.1.0.0.1"}
	m.Resolution = 0.01
	m.DeterminationPeriod = 1500 * time.Millisecond
	m.TechnicalRange = []*pmtypes.Range{{Lower: ptr(0.0), Upper: ptr(100.0)}}
	es := tt.add(t, EnumStringMetricDescriptorType, "e1", "ch").(*EnumStringMetricDescriptor)
	es.AllowedValue = []*pmtypes.AllowedValue{{Value: "ON"}, {Value: "OFF"}}
	tt.add(t, ScoDescriptorType, "sco", "mds")
	op := tt.add(t, ActivateOperationDescriptorType, "act", "sco").(*ActivateOperationDescriptor)
	op.OperationTarget = "mds"
	op.Retriggerable = ptr(false)
	op.ModifiableData = []string{"a", "b"}
	op.Argument = []*pmtypes.ActivateArgument{{ArgName: &pmtypes.CodedValue{Code: "x"}, Arg: "xsd:string"}}
	tt.add(t, SystemContextDescriptorType, "sc", "mds")
	tt.add(t, LocationContextDescriptorType, "loc", "sc")
	tt.add(t, PatientContextDescriptorType, "pat", "sc")

	n, err := tt.r.Materialize(mds, "Mds", tt.resolver())
	require.NoError(t, err)

	parsed, err := tt.r.ParseDescriptor(n, "")
	require.NoError(t, err)

	handles := make([]string, len(parsed))
	for i, d := range parsed {
		handles[i] = d.Base().Handle
		orig := tt.byKey[d.Base().Handle]
		require.NotNil(t, orig, d.Base().Handle)
		assert.Empty(t, tt.r.Diff(orig, d), d.Base().Handle)
	}
	// document order: Sco before SystemContext before Vmd, patient before location
	assert.Equal(t, []string{"mds", "sco", "act", "sc", "pat", "loc", "vmd", "ch", "m1", "e1"}, handles)

	sc := parsed[3]
	assert.Equal(t, []ChildRef{
		{Handle: "pat", Type: PatientContextDescriptorType},
		{Handle: "loc", Type: LocationContextDescriptorType},
	}, sc.Base().Children())
}

func TestParseDescriptorErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.ParseDescriptor(&Node{Tag: "Nope"}, "")
	assert.ErrorIs(t, err, ErrUnknownNodeType)

	n := &Node{Tag: "Channel", Type: string(ChannelDescriptorType), Attrs: []Attr{{"Handle", "ch"}}}
	n.Append(&Node{Tag: "Operation", Type: string(SetValueOperationDescriptorType)})
	_, err = r.ParseDescriptor(n, "vmd")
	assert.ErrorIs(t, err, ErrUndeclaredChild)

	n = &Node{Tag: "Sco", Type: string(ScoDescriptorType), Attrs: []Attr{{"Handle", "sco"}}}
	n.Append(&Node{Tag: "Operation", Type: string(ChannelDescriptorType), Attrs: []Attr{{"Handle", "ch"}}})
	_, err = r.ParseDescriptor(n, "mds")
	assert.ErrorIs(t, err, ErrUnsupportedChild)

	_, err = r.ParseDescriptor(&Node{Tag: "Vmd", Type: string(VmdDescriptorType)}, "mds")
	assert.ErrorIs(t, err, ErrMissingAttribute)

	n = &Node{Tag: "Vmd", Type: string(VmdDescriptorType), Attrs: []Attr{{"Handle", "v"}, {"SafetyClassification", "Bogus"}}}
	_, err = r.ParseDescriptor(n, "mds")
	assert.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestStateRoundTrip(t *testing.T) {
	r := NewRegistry()

	numeric, _ := r.CreateState(NumericMetricStateType)
	ns := numeric.(*NumericMetricState)
	ns.DescriptorHandle = "m1"
	ns.StateVersion = 5
	ns.ActivationState = pmtypes.ActivationOn
	ns.MetricValue = &pmtypes.NumericMetricValue{
		Value:             ptr(42.0),
		MetricQuality:     pmtypes.MetricQuality{Validity: pmtypes.ValidityValid, Mode: pmtypes.GenerationReal},
		DeterminationTime: pmtypes.Timestamp(1700000000123),
	}

	ctx, _ := r.CreateState(LocationContextStateType)
	ls := ctx.(*LocationContextState)
	ls.DescriptorHandle = "loc"
	ls.Handle = "loc_3"
	ls.ContextAssociation = pmtypes.AssociationAssociated
	ls.BindingMdibVersion = ptr(uint64(3))
	ls.BindingStartTime = pmtypes.Timestamp(1700000000000)
	ls.LocationDetail = &pmtypes.LocationDetail{Facility: "HOSP", Bed: "12"}
	ls.Identification = []*pmtypes.InstanceIdentifier{{Root: "sdc.ctxt.loc.detail", Extension: "HOSP///12"}}

	wave, _ := r.CreateState(RealTimeSampleArrayMetricStateType)
	ws := wave.(*RealTimeSampleArrayMetricState)
	ws.DescriptorHandle = "rtsa"
	ws.MetricValue = &pmtypes.SampleArrayValue{Samples: []float64{1, 2.5, -3}}

	for _, s := range []State{numeric, ctx, wave} {
		t.Run(string(s.NodeType()), func(t *testing.T) {
			n, err := r.Materialize(s, "State", nil)
			require.NoError(t, err)
			back, err := r.ParseState(n)
			require.NoError(t, err)
			assert.Empty(t, r.Diff(s, back))
		})
	}
}

func TestParseStateUndeclaredChild(t *testing.T) {
	r := NewRegistry()
	n := &Node{Tag: "State", Type: string(NumericMetricStateType), Attrs: []Attr{{"DescriptorHandle", "m"}}}
	n.Append(NewNode("Surprise"))

	_, err := r.ParseState(n)
	assert.ErrorIs(t, err, ErrUndeclaredChild)
}

func ptr[T any](v T) *T { return &v }
