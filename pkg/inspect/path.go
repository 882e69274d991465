// Package inspect renders and queries MDIB content for operators.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "numeric.ch0.vmd0/state/MetricValue")
//   - Building a descriptor tree with state summaries
//   - Reading materialized descriptors and states
//   - Formatting output for display
package inspect

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// StateSegment selects the state of a descriptor in a path.
const StateSegment = "state"

// Path represents a parsed inspection path.
// Format: handle[/state[/contextHandle]][/Field[/Field...]]
type Path struct {
	// Handle is the descriptor handle.
	Handle string

	// State selects the descriptor's state instead of the descriptor.
	State bool

	// ContextHandle selects one context state of a context descriptor.
	ContextHandle string

	// Fields descend into the materialized node by element or attribute name.
	Fields []string

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "numeric.ch0.vmd0" - a descriptor
//   - "numeric.ch0.vmd0/Unit/Code" - a descriptor element or attribute
//   - "numeric.ch0.vmd0/state" - the state of a descriptor
//   - "numeric.ch0.vmd0/state/MetricValue/Value" - a state field
//   - "lc0/state/lc0.initial" - one context state
//
// Handles may contain dots but no slashes. A context state handle is only
// recognized directly after the state segment and only when it does not
// start with an upper case letter, since field names do.
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	p := &Path{Raw: input, Handle: parts[0]}
	rest := parts[1:]

	if len(rest) > 0 && rest[0] == StateSegment {
		p.State = true
		rest = rest[1:]
		if len(rest) > 0 && !isFieldName(rest[0]) {
			p.ContextHandle = rest[0]
			rest = rest[1:]
		}
	}
	for _, f := range rest {
		if !isFieldName(f) {
			return nil, ErrInvalidPath
		}
	}
	p.Fields = rest
	return p, nil
}

func isFieldName(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// IsPartial returns true if the path names a whole entity.
func (p *Path) IsPartial() bool {
	return len(p.Fields) == 0
}

// String returns the canonical form of the path.
func (p *Path) String() string {
	parts := []string{p.Handle}
	if p.State {
		parts = append(parts, StateSegment)
		if p.ContextHandle != "" {
			parts = append(parts, p.ContextHandle)
		}
	}
	parts = append(parts, p.Fields...)
	return strings.Join(parts, "/")
}
