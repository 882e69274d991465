package mdib

import (
	"fmt"

	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// Element tags used for materialized MDIB content.
const (
	RootTag  = "Mds"
	StateTag = "State"
)

// Snapshot is a materialized, self-contained copy of an MDIB.
type Snapshot struct {
	SequenceID  string        `json:"sequenceId" cbor:"1,keyasint"`
	MdibVersion uint64        `json:"mdibVersion" cbor:"2,keyasint"`
	Description *model.Node   `json:"description,omitempty" cbor:"3,keyasint,omitempty"`
	States      []*model.Node `json:"states,omitempty" cbor:"4,keyasint,omitempty"`
}

// Snapshot materializes the current MDIB content.
func (m *Mdib) Snapshot() (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &Snapshot{SequenceID: m.sequenceID, MdibVersion: m.mdibVersion}
	if m.root == "" {
		return snap, nil
	}
	res := model.ResolverFunc(func(h string) (model.Descriptor, bool) {
		d, ok := m.descriptors[h]
		return d, ok
	})
	desc, err := m.reg.Materialize(m.descriptors[m.root], RootTag, res)
	if err != nil {
		return nil, err
	}
	snap.Description = desc

	var stateErr error
	m.walk(func(d model.Descriptor) {
		if stateErr != nil {
			return
		}
		h := d.Base().Handle
		var states []model.State
		if s, ok := m.states[h]; ok {
			states = append(states, s)
		}
		for _, cs := range m.contextStatesOf(h) {
			states = append(states, cs)
		}
		for _, s := range states {
			n, err := m.reg.Materialize(s, StateTag, nil)
			if err != nil {
				stateErr = err
				return
			}
			snap.States = append(snap.States, n)
		}
	})
	if stateErr != nil {
		return nil, stateErr
	}
	return snap, nil
}

// Restore builds an MDIB from a snapshot. The snapshot's sequence id and
// MDIB version are kept; cfg.SequenceID is ignored. Single-state descriptors
// without a state in the snapshot get a default state.
func Restore(reg *model.Registry, snap *Snapshot, cfg Config) (*Mdib, error) {
	if snap == nil || snap.SequenceID == "" {
		return nil, fmt.Errorf("%w: missing sequence id", ErrInvalidSnapshot)
	}
	cfg.SequenceID = snap.SequenceID
	m := New(reg, cfg)
	if snap.Description == nil {
		if len(snap.States) > 0 {
			return nil, fmt.Errorf("%w: states without description", ErrInvalidSnapshot)
		}
		m.mdibVersion = snap.MdibVersion
		return m, nil
	}

	descs, err := reg.ParseDescriptor(snap.Description, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	states := make([]model.State, 0, len(snap.States))
	for _, n := range snap.States {
		s, err := reg.ParseState(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		states = append(states, s)
	}
	if err := m.load(descs, states); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	m.mdibVersion = snap.MdibVersion
	return m, nil
}

// load inserts parsed descriptors and states into an empty MDIB without
// versioning or notification.
func (m *Mdib) load(descs []model.Descriptor, states []model.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range descs {
		b := d.Base()
		b.Handle = normalize(b.Handle)
		b.ParentHandle = normalize(b.ParentHandle)
		if _, dup := m.descriptors[b.Handle]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateHandle, b.Handle)
		}
		m.descriptors[b.Handle] = d
		if b.ParentHandle == "" {
			m.root = b.Handle
		}
	}
	for _, s := range states {
		b := s.Base()
		b.DescriptorHandle = normalize(b.DescriptorHandle)
		d, ok := m.descriptors[b.DescriptorHandle]
		if !ok {
			return fmt.Errorf("%w: state for %s", ErrUnknownHandle, b.DescriptorHandle)
		}
		dv, _ := m.reg.DescriptorVariant(d.NodeType())
		if dv.StateType != s.NodeType() {
			return fmt.Errorf("%w: %s for %s", ErrStateMismatch, s.NodeType(), d.NodeType())
		}
		if cs, ok := s.(model.ContextState); ok {
			h := normalize(cs.Multi().Handle)
			cs.Multi().Handle = h
			if _, dup := m.contextStates[h]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateHandle, h)
			}
			if _, dup := m.descriptors[h]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateHandle, h)
			}
			m.contextStates[h] = cs
			continue
		}
		if _, dup := m.states[b.DescriptorHandle]; dup {
			return fmt.Errorf("%w: state for %s", ErrDuplicateHandle, b.DescriptorHandle)
		}
		m.states[b.DescriptorHandle] = s
	}
	for h, d := range m.descriptors {
		if m.reg.IsMultiState(d.NodeType()) {
			continue
		}
		if _, ok := m.states[h]; ok {
			continue
		}
		s, err := m.reg.NewStateFor(d)
		if err != nil {
			return err
		}
		m.states[h] = s
	}
	return nil
}
