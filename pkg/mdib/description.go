package mdib

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// Description is the YAML form of an initial MDIB.
type Description struct {
	SequenceID string     `yaml:"sequenceId,omitempty"`
	Mds        *YAMLNode  `yaml:"mds"`
	States     []YAMLNode `yaml:"states,omitempty"`
}

// YAMLNode is a model.Node in a form that is convenient to write by hand.
// Entity nodes set Type; the element tag is then derived from the parent's
// child groups. Value nodes set Tag. Handle and Descriptor are shorthands for
// the Handle and DescriptorHandle attributes.
type YAMLNode struct {
	Tag        string            `yaml:"tag,omitempty"`
	Type       string            `yaml:"type,omitempty"`
	Handle     string            `yaml:"handle,omitempty"`
	Descriptor string            `yaml:"descriptor,omitempty"`
	Attrs      map[string]string `yaml:"attrs,omitempty"`
	Text       string            `yaml:"text,omitempty"`
	Children   []YAMLNode        `yaml:"children,omitempty"`
}

// DescriptionError reports a problem loading a description.
type DescriptionError struct {
	File    string
	Message string
	Cause   error
}

func (e *DescriptionError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DescriptionError) Unwrap() error { return e.Cause }

// LoadDescription reads a YAML description and builds an MDIB from it.
func LoadDescription(reg *model.Registry, r io.Reader, cfg Config) (*Mdib, error) {
	var desc Description
	if err := yaml.NewDecoder(r).Decode(&desc); err != nil {
		return nil, &DescriptionError{Message: "failed to parse YAML", Cause: err}
	}
	if desc.Mds == nil {
		return nil, &DescriptionError{Message: "mds is required"}
	}

	root, err := desc.Mds.node(reg, RootTag)
	if err != nil {
		return nil, &DescriptionError{Message: "invalid mds", Cause: err}
	}
	descs, err := reg.ParseDescriptor(root, "")
	if err != nil {
		return nil, &DescriptionError{Message: "invalid mds", Cause: err}
	}
	if descs[0].NodeType() != model.MdsDescriptorType {
		return nil, &DescriptionError{Message: "root must be an MdsDescriptor, got " + string(descs[0].NodeType())}
	}

	states := make([]model.State, 0, len(desc.States))
	for i, y := range desc.States {
		n, err := y.node(reg, StateTag)
		if err != nil {
			return nil, &DescriptionError{Message: fmt.Sprintf("invalid state %d", i), Cause: err}
		}
		s, err := reg.ParseState(n)
		if err != nil {
			return nil, &DescriptionError{Message: fmt.Sprintf("invalid state %d", i), Cause: err}
		}
		states = append(states, s)
	}

	if desc.SequenceID != "" && cfg.SequenceID == "" {
		cfg.SequenceID = desc.SequenceID
	}
	m := New(reg, cfg)
	if err := m.load(descs, states); err != nil {
		return nil, &DescriptionError{Message: "inconsistent description", Cause: err}
	}
	return m, nil
}

// LoadDescriptionFile loads a YAML description from a file.
func LoadDescriptionFile(reg *model.Registry, path string, cfg Config) (*Mdib, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DescriptionError{File: path, Message: "failed to read file", Cause: err}
	}
	defer f.Close()

	m, err := LoadDescription(reg, f, cfg)
	if err != nil {
		if de, ok := err.(*DescriptionError); ok {
			de.File = path
		}
		return nil, err
	}
	return m, nil
}

func (y *YAMLNode) node(reg *model.Registry, tag string) (*model.Node, error) {
	if y.Tag != "" {
		tag = y.Tag
	}
	if tag == "" {
		tag = y.Type
	}
	if tag == "" {
		return nil, fmt.Errorf("node without tag or type")
	}
	n := &model.Node{Tag: tag, Type: y.Type, Text: y.Text}
	if y.Handle != "" {
		n.SetAttr("Handle", y.Handle)
	}
	if y.Descriptor != "" {
		n.SetAttr("DescriptorHandle", y.Descriptor)
	}
	names := make([]string, 0, len(y.Attrs))
	for k := range y.Attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		n.SetAttr(k, y.Attrs[k])
	}

	var schema *model.Schema
	if y.Type != "" {
		s, err := reg.Schema(model.NodeType(y.Type))
		if err != nil {
			return nil, err
		}
		schema = s
	}
	for i := range y.Children {
		c := &y.Children[i]
		childTag := ""
		if c.Tag == "" && c.Type != "" && schema != nil {
			if g, ok := schema.GroupFor(model.NodeType(c.Type)); ok {
				childTag = g.Tag
			}
		}
		cn, err := c.node(reg, childTag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Tag, err)
		}
		n.Append(cn)
	}
	return n, nil
}
