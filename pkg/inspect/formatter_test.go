package inspect

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

func TestFormatTreeGolden(t *testing.T) {
	tree, err := newTestInspector(t).Tree()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "device_tree", []byte(NewFormatter().FormatTree(tree)))
}

func TestFormatOperationsGolden(t *testing.T) {
	ops := newTestInspector(t).Operations()

	g := goldie.New(t)
	g.Assert(t, "device_operations", []byte(NewFormatter().FormatOperations(ops)))
}

func TestFormatNodeGolden(t *testing.T) {
	n := &model.Node{
		Tag:  "State",
		Type: "NumericMetricState",
		Attrs: []model.Attr{
			{Name: "DescriptorHandle", Value: "numeric.ch0.vmd0"},
			{Name: "StateVersion", Value: "3"},
		},
		Children: []*model.Node{
			{
				Tag:   "MetricValue",
				Attrs: []model.Attr{{Name: "Value", Value: "60"}},
				Children: []*model.Node{
					{Tag: "MetricQuality", Attrs: []model.Attr{{Name: "Validity", Value: "Vld"}}},
				},
			},
			{Tag: "Note", Attrs: []model.Attr{{Name: "Label", Value: "two words"}}, Text: "hello world"},
		},
	}

	g := goldie.New(t)
	g.Assert(t, "state_node", []byte(NewFormatter().FormatNode(n)))
}

func TestFormatTreeOptions(t *testing.T) {
	tree, err := newTestInspector(t).Tree()
	require.NoError(t, err)

	f := &Formatter{ShowVersions: true, IndentWidth: 4}
	out := f.FormatTree(tree)
	assert.True(t, strings.HasPrefix(out, "mds0 Mds v0\n"), out)
	assert.Contains(t, out, "\n    asy.mds0 AlertSystem v0\n")
	assert.NotContains(t, out, "lc0.initial", "context states need ShowStates")
	assert.NotContains(t, out, "[")
}

func TestFormatOperationsEmpty(t *testing.T) {
	assert.Equal(t, "  (no operations)\n", NewFormatter().FormatOperations(nil))
}

func TestIndent(t *testing.T) {
	f := &Formatter{}
	assert.Equal(t, "    x", f.Indent(2, "x"))
}
