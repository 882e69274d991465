package inspect

import (
	"strings"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// ShortType returns a node type without its Descriptor or State suffix,
// e.g. "NumericMetric" for NumericMetricDescriptor.
func ShortType(t model.NodeType) string {
	s := string(t)
	if trimmed, ok := strings.CutSuffix(s, "Descriptor"); ok {
		return trimmed
	}
	if trimmed, ok := strings.CutSuffix(s, "State"); ok && trimmed != "" {
		return trimmed
	}
	return s
}

// ResolveDescriptorType resolves a short or full descriptor type name
// (case-insensitive).
func ResolveDescriptorType(name string) (model.NodeType, bool) {
	lname := strings.ToLower(name)
	for _, t := range model.DescriptorTypes() {
		if strings.ToLower(string(t)) == lname || strings.ToLower(ShortType(t)) == lname {
			return t, true
		}
	}
	return "", false
}

// CategoryName returns a lower case label for a category.
func CategoryName(c model.Category) string {
	return strings.ToLower(c.String())
}
