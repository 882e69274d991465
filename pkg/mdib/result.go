package mdib

import (
	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// DescriptionUpdates lists the descriptors changed by a transaction.
type DescriptionUpdates struct {
	Created []model.Descriptor
	Updated []model.Descriptor
	Deleted []model.Descriptor
}

// Len returns the number of changed descriptors.
func (d DescriptionUpdates) Len() int {
	return len(d.Created) + len(d.Updated) + len(d.Deleted)
}

// TransactionResult holds copies of everything a transaction changed,
// grouped the way episodic reports are.
type TransactionResult struct {
	// MdibVersion after the commit.
	MdibVersion uint64

	MetricUpdates      []model.State
	AlertUpdates       []model.State
	ComponentUpdates   []model.State
	ContextUpdates     []model.State
	OperationalUpdates []model.State
	Descriptions       DescriptionUpdates
}

func (r *TransactionResult) add(reg *model.Registry, s model.State) {
	cat, _ := reg.Category(s.NodeType())
	switch cat {
	case model.CategoryMetric:
		r.MetricUpdates = append(r.MetricUpdates, s)
	case model.CategoryAlert:
		r.AlertUpdates = append(r.AlertUpdates, s)
	case model.CategoryComponent:
		r.ComponentUpdates = append(r.ComponentUpdates, s)
	case model.CategoryContext:
		r.ContextUpdates = append(r.ContextUpdates, s)
	case model.CategoryOperation:
		r.OperationalUpdates = append(r.OperationalUpdates, s)
	}
}

// IsEmpty reports whether the transaction changed nothing.
func (r *TransactionResult) IsEmpty() bool {
	return len(r.States()) == 0 && r.Descriptions.Len() == 0
}

// States returns all changed states.
func (r *TransactionResult) States() []model.State {
	var out []model.State
	out = append(out, r.MetricUpdates...)
	out = append(out, r.AlertUpdates...)
	out = append(out, r.ComponentUpdates...)
	out = append(out, r.ContextUpdates...)
	out = append(out, r.OperationalUpdates...)
	return out
}

// StateFor returns the changed single state of a descriptor, if any.
func (r *TransactionResult) StateFor(descriptorHandle string) (model.State, bool) {
	for _, s := range r.States() {
		if _, multi := s.(model.MultiState); !multi && s.Base().DescriptorHandle == descriptorHandle {
			return s, true
		}
	}
	return nil, false
}

func (r *TransactionResult) event() *log.CommitEvent {
	return &log.CommitEvent{
		MdibVersion:  r.MdibVersion,
		Metrics:      len(r.MetricUpdates),
		Alerts:       len(r.AlertUpdates),
		Components:   len(r.ComponentUpdates),
		Contexts:     len(r.ContextUpdates),
		Operational:  len(r.OperationalUpdates),
		Descriptions: r.Descriptions.Len(),
	}
}
