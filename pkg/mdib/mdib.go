package mdib

import (
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// Config configures an Mdib.
type Config struct {
	// SequenceID identifies this MDIB instance. Generated when empty.
	SequenceID string

	// Logger is used for operational logging. Defaults to slog.Default().
	Logger *slog.Logger

	// EventLogger receives a CommitEvent per committed transaction. Optional.
	EventLogger log.Logger
}

// CommitObserver is called after every non-empty commit, outside the MDIB lock.
type CommitObserver func(*TransactionResult)

// Mdib is the provider's in-memory MDIB.
type Mdib struct {
	mu  sync.RWMutex
	reg *model.Registry

	descriptors   map[string]model.Descriptor
	states        map[string]model.State        // single states by descriptor handle
	contextStates map[string]model.ContextState // multi-states by state handle
	root          string
	mdibVersion   uint64
	sequenceID    string

	obsMu     sync.RWMutex
	observers []CommitObserver

	logger      *slog.Logger
	eventLogger log.Logger
}

// New creates an empty MDIB using reg for entity construction.
func New(reg *model.Registry, cfg Config) *Mdib {
	if cfg.SequenceID == "" {
		cfg.SequenceID = "urn:uuid:" + uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Mdib{
		reg:           reg,
		descriptors:   make(map[string]model.Descriptor),
		states:        make(map[string]model.State),
		contextStates: make(map[string]model.ContextState),
		sequenceID:    cfg.SequenceID,
		logger:        cfg.Logger,
		eventLogger:   cfg.EventLogger,
	}
}

// normalize returns the canonical (NFC) form of a handle.
func normalize(h string) string {
	return norm.NFC.String(h)
}

// Registry returns the entity registry used by the MDIB.
func (m *Mdib) Registry() *model.Registry {
	return m.reg
}

// SequenceID returns the MDIB sequence id.
func (m *Mdib) SequenceID() string {
	return m.sequenceID
}

// MdibVersion returns the current MDIB version.
func (m *Mdib) MdibVersion() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mdibVersion
}

// OnCommit registers an observer for committed transactions.
func (m *Mdib) OnCommit(fn CommitObserver) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, fn)
}

// Root returns a copy of the root Mds descriptor.
func (m *Mdib) Root() (model.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.root == "" {
		return nil, false
	}
	return m.cloneDescriptor(m.descriptors[m.root]), true
}

// Descriptor returns a copy of the descriptor with the given handle.
func (m *Mdib) Descriptor(handle string) (model.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.descriptors[normalize(handle)]
	if !ok {
		return nil, false
	}
	return m.cloneDescriptor(d), true
}

// Children returns copies of the children of handle in insertion order.
func (m *Mdib) Children(handle string) []model.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.descriptors[normalize(handle)]
	if !ok {
		return nil
	}
	var out []model.Descriptor
	for _, c := range d.Base().Children() {
		if cd, ok := m.descriptors[c.Handle]; ok {
			out = append(out, m.cloneDescriptor(cd))
		}
	}
	return out
}

// Descriptors returns copies of all descriptors of the given types in tree
// order. Without types all descriptors are returned.
func (m *Mdib) Descriptors(types ...model.NodeType) []model.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Descriptor
	m.walk(func(d model.Descriptor) {
		if len(types) == 0 || slices.Contains(types, d.NodeType()) {
			out = append(out, m.cloneDescriptor(d))
		}
	})
	return out
}

// State returns a copy of the single state of the descriptor handle.
func (m *Mdib) State(descriptorHandle string) (model.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[normalize(descriptorHandle)]
	if !ok {
		return nil, false
	}
	return m.cloneState(s), true
}

// ContextState returns a copy of the context state with the given state handle.
func (m *Mdib) ContextState(handle string) (model.ContextState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.contextStates[normalize(handle)]
	if !ok {
		return nil, false
	}
	return m.cloneState(s).(model.ContextState), true
}

// ContextStates returns copies of the context states of a context
// descriptor, ordered by state handle.
func (m *Mdib) ContextStates(descriptorHandle string) []model.ContextState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contextStatesOf(normalize(descriptorHandle))
}

// LookupContextStates resolves handles the way GetContextStates does: each
// handle is tried as a context state handle, then as a context descriptor
// handle, then as an Mds handle selecting every context state. Without
// handles all context states are returned. Unknown handles are ignored.
func (m *Mdib) LookupContextStates(handles ...string) []model.ContextState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(handles) == 0 {
		return m.allContextStates()
	}
	seen := make(map[string]bool)
	var out []model.ContextState
	add := func(states ...model.ContextState) {
		for _, s := range states {
			h := s.Multi().Handle
			if !seen[h] {
				seen[h] = true
				out = append(out, s)
			}
		}
	}
	for _, h := range handles {
		h = normalize(h)
		if s, ok := m.contextStates[h]; ok {
			add(m.cloneState(s).(model.ContextState))
			continue
		}
		d, ok := m.descriptors[h]
		if !ok {
			continue
		}
		switch {
		case m.reg.IsMultiState(d.NodeType()):
			add(m.contextStatesOf(h)...)
		case d.NodeType() == model.MdsDescriptorType:
			add(m.allContextStates()...)
		}
	}
	return out
}

// States returns copies of all states, grouped by descriptor in tree order.
func (m *Mdib) States() []model.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.State
	m.walk(func(d model.Descriptor) {
		h := d.Base().Handle
		if s, ok := m.states[h]; ok {
			out = append(out, m.cloneState(s))
		}
		for _, cs := range m.contextStatesOf(h) {
			out = append(out, cs)
		}
	})
	return out
}

func (m *Mdib) allContextStates() []model.ContextState {
	var out []model.ContextState
	for _, s := range m.contextStates {
		out = append(out, m.cloneState(s).(model.ContextState))
	}
	sortContextStates(out)
	return out
}

func (m *Mdib) contextStatesOf(descriptorHandle string) []model.ContextState {
	var out []model.ContextState
	for _, s := range m.contextStates {
		if s.Base().DescriptorHandle == descriptorHandle {
			out = append(out, m.cloneState(s).(model.ContextState))
		}
	}
	sortContextStates(out)
	return out
}

// walk visits committed descriptors depth first from the root.
func (m *Mdib) walk(fn func(model.Descriptor)) {
	var visit func(h string)
	visit = func(h string) {
		d, ok := m.descriptors[h]
		if !ok {
			return
		}
		fn(d)
		for _, c := range d.Base().Children() {
			visit(c.Handle)
		}
	}
	if m.root != "" {
		visit(m.root)
	}
}

func (m *Mdib) cloneDescriptor(d model.Descriptor) model.Descriptor {
	c, err := m.reg.CloneDescriptor(d)
	if err != nil {
		// Only registered variants are ever stored.
		panic(err)
	}
	return c
}

func (m *Mdib) cloneState(s model.State) model.State {
	c, err := m.reg.CloneState(s)
	if err != nil {
		panic(err)
	}
	return c
}

func sortContextStates(states []model.ContextState) {
	sort.Slice(states, func(i, j int) bool {
		return states[i].Multi().Handle < states[j].Multi().Handle
	})
}
