package inspect

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowStates includes state summaries and context states.
	ShowStates bool

	// ShowVersions includes descriptor and state versions.
	ShowVersions bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowStates:   true,
		ShowVersions: false,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatTree renders a descriptor tree, one descriptor per line.
//
//	vmd0 Vmd
//	  numeric.ch0.vmd0 NumericMetric [60 Vld]
//	  lc0 LocationContext
//	    * lc0.initial Assoc
func (f *Formatter) FormatTree(info *DescriptorInfo) string {
	var sb strings.Builder
	f.writeTree(&sb, info, 0)
	return sb.String()
}

func (f *Formatter) writeTree(sb *strings.Builder, info *DescriptorInfo, depth int) {
	line := info.Handle + " " + ShortType(info.Type)
	if info.Target != "" {
		line += " -> " + info.Target
	}
	if f.ShowVersions {
		line += fmt.Sprintf(" v%d", info.DescriptorVersion)
	}
	if f.ShowStates && info.Summary != "" {
		line += " [" + info.Summary + "]"
	}
	sb.WriteString(f.Indent(depth, line))
	sb.WriteString("\n")

	if f.ShowStates {
		for _, c := range info.Contexts {
			line := "* " + c.Handle + " " + c.Association
			if f.ShowVersions {
				line += fmt.Sprintf(" v%d", c.StateVersion)
			}
			if c.Summary != "" {
				line += " [" + c.Summary + "]"
			}
			sb.WriteString(f.Indent(depth+1, line))
			sb.WriteString("\n")
		}
	}

	for _, c := range info.Children {
		f.writeTree(sb, c, depth+1)
	}
}

// FormatNode renders a materialized node with its attributes and children.
//
//	State (NumericMetricState) DescriptorHandle=numeric.ch0.vmd0
//	  MetricValue Value=60
//	    MetricQuality Validity=Vld
func (f *Formatter) FormatNode(n *model.Node) string {
	var sb strings.Builder
	f.writeNode(&sb, n, 0)
	return sb.String()
}

func (f *Formatter) writeNode(sb *strings.Builder, n *model.Node, depth int) {
	line := n.Tag
	if n.Type != "" && n.Type != n.Tag {
		line += " (" + n.Type + ")"
	}
	for _, a := range n.Attrs {
		line += " " + a.Name + "=" + formatAttrValue(a.Value)
	}
	if n.Text != "" {
		line += ": " + fmt.Sprintf("%q", n.Text)
	}
	sb.WriteString(f.Indent(depth, line))
	sb.WriteString("\n")
	for _, c := range n.Children {
		f.writeNode(sb, c, depth+1)
	}
}

func formatAttrValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\"=") {
		return fmt.Sprintf("%q", v)
	}
	return v
}

// FormatOperations formats operations as an aligned table.
func (f *Formatter) FormatOperations(ops []OperationInfo) string {
	if len(ops) == 0 {
		return "  (no operations)\n"
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, op := range ops {
		mode := op.OperatingMode
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", op.Handle, ShortType(op.Type), op.Target, mode)
	}
	_ = tw.Flush()
	return sb.String()
}
