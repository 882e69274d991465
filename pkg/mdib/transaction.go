package mdib

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

type change uint8

const (
	// changeLinked marks a descriptor whose child list changed only.
	changeLinked change = iota
	changeUpdated
	changeCreated
	changeDeleted
)

type descEntry struct {
	d      model.Descriptor
	change change
}

type stateKey struct {
	handle string
	multi  bool
}

type stateEntry struct {
	s      model.State
	change change
}

// Transaction collects changes to the MDIB. Entities returned by its
// methods are working copies owned by the transaction; they are committed
// when the transaction function returns nil.
type Transaction struct {
	m    *Mdib
	done bool

	desc      map[string]*descEntry
	descOrder []string

	states     map[stateKey]*stateEntry
	stateOrder []stateKey
}

// Transaction runs fn inside a write transaction. When fn returns an error
// no change is applied. Commit observers are notified after the lock is
// released. A transaction without changes leaves the MDIB version untouched.
func (m *Mdib) Transaction(ctx context.Context, fn func(*Transaction) error) (*TransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := m.run(fn)
	if err != nil {
		return nil, err
	}
	if !res.IsEmpty() {
		m.notify(res)
	}
	return res, nil
}

func (m *Mdib) run(fn func(*Transaction) error) (*TransactionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &Transaction{
		m:      m,
		desc:   make(map[string]*descEntry),
		states: make(map[stateKey]*stateEntry),
	}
	defer func() { tx.done = true }()
	if err := fn(tx); err != nil {
		return nil, err
	}
	return tx.commit()
}

func (m *Mdib) notify(res *TransactionResult) {
	if m.eventLogger != nil {
		m.eventLogger.Log(log.Event{
			Timestamp:  time.Now(),
			SequenceID: m.sequenceID,
			Direction:  log.DirectionOut,
			Layer:      log.LayerMdib,
			Category:   log.CategoryCommit,
			Commit:     res.event(),
		})
	}
	m.obsMu.RLock()
	observers := slices.Clone(m.observers)
	m.obsMu.RUnlock()
	for _, fn := range observers {
		fn(res)
	}
}

// MdibVersion returns the MDIB version before this transaction commits.
func (tx *Transaction) MdibVersion() uint64 {
	return tx.m.mdibVersion
}

// Registry returns the entity registry of the MDIB.
func (tx *Transaction) Registry() *model.Registry {
	return tx.m.reg
}

// lookupDescriptor returns the transaction's view of a descriptor without
// taking a working copy. The result must not be modified.
func (tx *Transaction) lookupDescriptor(h string) (model.Descriptor, bool) {
	if e, ok := tx.desc[h]; ok {
		if e.change == changeDeleted {
			return nil, false
		}
		return e.d, true
	}
	d, ok := tx.m.descriptors[h]
	return d, ok
}

func (tx *Transaction) working(h string, c change) (*descEntry, error) {
	if tx.done {
		return nil, ErrTransactionDone
	}
	if e, ok := tx.desc[h]; ok {
		if e.change == changeDeleted {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
		}
		if e.change < c {
			e.change = c
		}
		return e, nil
	}
	d, ok := tx.m.descriptors[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	e := &descEntry{d: tx.m.cloneDescriptor(d), change: c}
	tx.desc[h] = e
	tx.descOrder = append(tx.descOrder, h)
	return e, nil
}

// Descriptor returns a working copy of a descriptor. The descriptor is
// reported as updated and its DescriptorVersion bumped on commit.
func (tx *Transaction) Descriptor(handle string) (model.Descriptor, error) {
	e, err := tx.working(normalize(handle), changeUpdated)
	if err != nil {
		return nil, err
	}
	return e.d, nil
}

// LookupDescriptor returns a copy of a descriptor as seen by the
// transaction. Changes to the copy are not committed.
func (tx *Transaction) LookupDescriptor(handle string) (model.Descriptor, bool) {
	d, ok := tx.lookupDescriptor(normalize(handle))
	if !ok {
		return nil, false
	}
	return tx.m.cloneDescriptor(d), true
}

// HasDescriptor reports whether handle names a descriptor in the
// transaction's view of the MDIB.
func (tx *Transaction) HasDescriptor(handle string) bool {
	_, ok := tx.lookupDescriptor(normalize(handle))
	return ok
}

// HandleTaken reports whether handle names a descriptor or a context state
// in the transaction's view of the MDIB. Both share one handle space.
func (tx *Transaction) HandleTaken(handle string) bool {
	return tx.handleTaken(normalize(handle))
}

func (tx *Transaction) handleTaken(h string) bool {
	if _, ok := tx.lookupDescriptor(h); ok {
		return true
	}
	_, ok := tx.lookupState(stateKey{handle: h, multi: true})
	return ok
}

// AddDescriptor inserts d below its ParentHandle. A descriptor without
// parent becomes the root and must be an Mds. Single-state descriptors get a
// default state on commit unless AddState supplied one.
func (tx *Transaction) AddDescriptor(d model.Descriptor) error {
	if tx.done {
		return ErrTransactionDone
	}
	b := d.Base()
	b.Handle = normalize(b.Handle)
	b.ParentHandle = normalize(b.ParentHandle)
	if b.Handle == "" {
		return ErrEmptyHandle
	}
	if tx.handleTaken(b.Handle) {
		return fmt.Errorf("%w: %s", ErrDuplicateHandle, b.Handle)
	}

	if b.ParentHandle == "" {
		if d.NodeType() != model.MdsDescriptorType {
			return fmt.Errorf("%w: %s", ErrNoParent, b.Handle)
		}
		if tx.rootHandle() != "" {
			return fmt.Errorf("%w: %s", ErrRootExists, tx.rootHandle())
		}
	} else {
		parent, err := tx.working(b.ParentHandle, changeLinked)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrNoParent, b.ParentHandle)
		}
		if err := tx.m.reg.AddChild(parent.d, d); err != nil {
			return err
		}
	}

	if e, ok := tx.desc[b.Handle]; ok {
		// Re-adding a descriptor deleted earlier in this transaction.
		e.d = d
		e.change = changeUpdated
		return nil
	}
	tx.desc[b.Handle] = &descEntry{d: d, change: changeCreated}
	tx.descOrder = append(tx.descOrder, b.Handle)
	return nil
}

// RemoveDescriptor removes a descriptor, its descendants and all their states.
func (tx *Transaction) RemoveDescriptor(handle string) error {
	h := normalize(handle)
	e, err := tx.working(h, changeLinked)
	if err != nil {
		return err
	}
	if p := e.d.Base().ParentHandle; p != "" {
		parent, err := tx.working(p, changeLinked)
		if err != nil {
			return err
		}
		if err := tx.m.reg.RemoveChild(parent.d, e.d); err != nil {
			return err
		}
	}
	return tx.removeSubtree(h)
}

func (tx *Transaction) removeSubtree(h string) error {
	e, err := tx.working(h, changeLinked)
	if err != nil {
		return err
	}
	for _, c := range e.d.Base().Children() {
		if err := tx.removeSubtree(c.Handle); err != nil {
			return err
		}
	}
	e.change = changeDeleted

	if tx.m.reg.IsMultiState(e.d.NodeType()) {
		for _, s := range tx.contextStates(h) {
			tx.dropState(stateKey{handle: s.Multi().Handle, multi: true}, s)
		}
		return nil
	}
	if s, ok := tx.lookupState(stateKey{handle: h}); ok {
		tx.dropState(stateKey{handle: h}, s)
	}
	return nil
}

func (tx *Transaction) dropState(k stateKey, s model.State) {
	if se, ok := tx.states[k]; ok {
		if se.change == changeCreated {
			delete(tx.states, k)
			tx.stateOrder = slices.DeleteFunc(tx.stateOrder, func(o stateKey) bool { return o == k })
			return
		}
		se.change = changeDeleted
		return
	}
	tx.states[k] = &stateEntry{s: s, change: changeDeleted}
	tx.stateOrder = append(tx.stateOrder, k)
}

func (tx *Transaction) rootHandle() string {
	if tx.m.root != "" {
		if e, ok := tx.desc[tx.m.root]; !ok || e.change != changeDeleted {
			return tx.m.root
		}
	}
	for _, h := range tx.descOrder {
		e := tx.desc[h]
		if e.change != changeDeleted && e.d.Base().ParentHandle == "" {
			return h
		}
	}
	return ""
}

func (tx *Transaction) lookupState(k stateKey) (model.State, bool) {
	if e, ok := tx.states[k]; ok {
		if e.change == changeDeleted {
			return nil, false
		}
		return e.s, true
	}
	if k.multi {
		s, ok := tx.m.contextStates[k.handle]
		return s, ok
	}
	s, ok := tx.m.states[k.handle]
	return s, ok
}

func (tx *Transaction) workingState(k stateKey) (model.State, error) {
	if tx.done {
		return nil, ErrTransactionDone
	}
	if e, ok := tx.states[k]; ok {
		if e.change == changeDeleted {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, k.handle)
		}
		return e.s, nil
	}
	var committed model.State
	if k.multi {
		if s, ok := tx.m.contextStates[k.handle]; ok {
			committed = s
		}
	} else if s, ok := tx.m.states[k.handle]; ok {
		committed = s
	}
	if committed == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, k.handle)
	}
	s := tx.m.cloneState(committed)
	tx.states[k] = &stateEntry{s: s, change: changeUpdated}
	tx.stateOrder = append(tx.stateOrder, k)
	return s, nil
}

// HasState reports whether a descriptor has its single state, or at least
// one context state for multi-state descriptors.
func (tx *Transaction) HasState(descriptorHandle string) bool {
	h := normalize(descriptorHandle)
	d, ok := tx.lookupDescriptor(h)
	if !ok {
		return false
	}
	if tx.m.reg.IsMultiState(d.NodeType()) {
		return len(tx.contextStates(h)) > 0
	}
	_, ok = tx.lookupState(stateKey{handle: h})
	return ok
}

// State returns a working copy of the single state of a descriptor. The
// state is reported on commit with its StateVersion bumped.
func (tx *Transaction) State(descriptorHandle string) (model.State, error) {
	return tx.workingState(stateKey{handle: normalize(descriptorHandle)})
}

// ContextState returns a working copy of the context state with the given
// state handle.
func (tx *Transaction) ContextState(handle string) (model.ContextState, error) {
	s, err := tx.workingState(stateKey{handle: normalize(handle), multi: true})
	if err != nil {
		return nil, err
	}
	return s.(model.ContextState), nil
}

// ContextStates returns the transaction's view of the context states of a
// context descriptor, ordered by state handle. The returned states are
// read-only; use ContextState to modify one of them.
func (tx *Transaction) ContextStates(descriptorHandle string) []model.ContextState {
	var out []model.ContextState
	for _, s := range tx.contextStates(normalize(descriptorHandle)) {
		out = append(out, tx.m.cloneState(s).(model.ContextState))
	}
	return out
}

func (tx *Transaction) contextStates(dh string) []model.ContextState {
	byHandle := make(map[string]model.ContextState)
	for h, s := range tx.m.contextStates {
		if s.Base().DescriptorHandle == dh {
			byHandle[h] = s
		}
	}
	for k, e := range tx.states {
		if !k.multi || e.s.Base().DescriptorHandle != dh {
			continue
		}
		if e.change == changeDeleted {
			delete(byHandle, k.handle)
			continue
		}
		byHandle[k.handle] = e.s.(model.ContextState)
	}
	out := make([]model.ContextState, 0, len(byHandle))
	for _, s := range byHandle {
		out = append(out, s)
	}
	sortContextStates(out)
	return out
}

// AddState adds a state for an existing descriptor. Multi-states need a
// state handle that no descriptor or other context state uses.
func (tx *Transaction) AddState(s model.State) error {
	if tx.done {
		return ErrTransactionDone
	}
	b := s.Base()
	b.DescriptorHandle = normalize(b.DescriptorHandle)
	d, ok := tx.lookupDescriptor(b.DescriptorHandle)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, b.DescriptorHandle)
	}
	dv, _ := tx.m.reg.DescriptorVariant(d.NodeType())
	if dv.StateType != s.NodeType() {
		return fmt.Errorf("%w: %s for %s", ErrStateMismatch, s.NodeType(), d.NodeType())
	}

	k := stateKey{handle: b.DescriptorHandle}
	if ms, ok := s.(model.MultiState); ok {
		ms.Multi().Handle = normalize(ms.Multi().Handle)
		if ms.Multi().Handle == "" {
			return ErrEmptyHandle
		}
		k = stateKey{handle: ms.Multi().Handle, multi: true}
		if _, ok := tx.lookupDescriptor(k.handle); ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHandle, k.handle)
		}
	}
	if _, exists := tx.lookupState(k); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandle, k.handle)
	}
	b.DescriptorVersion = d.Base().DescriptorVersion

	if e, ok := tx.states[k]; ok {
		// Replaces a state deleted earlier in this transaction.
		e.s = s
		e.change = changeUpdated
		return nil
	}
	tx.states[k] = &stateEntry{s: s, change: changeCreated}
	tx.stateOrder = append(tx.stateOrder, k)
	return nil
}

// commit applies the collected changes. Called with the write lock held.
func (tx *Transaction) commit() (*TransactionResult, error) {
	m := tx.m
	reg := m.reg

	// Single-state descriptors created without a state get a default one.
	for _, h := range tx.descOrder {
		e := tx.desc[h]
		if e.change != changeCreated || reg.IsMultiState(e.d.NodeType()) {
			continue
		}
		if _, ok := tx.lookupState(stateKey{handle: h}); ok {
			continue
		}
		s, err := reg.NewStateFor(e.d)
		if err != nil {
			return nil, err
		}
		tx.states[stateKey{handle: h}] = &stateEntry{s: s, change: changeCreated}
		tx.stateOrder = append(tx.stateOrder, stateKey{handle: h})
	}

	// Descriptor updates propagate the new version to their states.
	for _, h := range tx.descOrder {
		e := tx.desc[h]
		if e.change != changeUpdated {
			continue
		}
		e.d.Base().IncrementVersion()
		if reg.IsMultiState(e.d.NodeType()) {
			for _, cs := range tx.contextStates(h) {
				s, err := tx.workingState(stateKey{handle: cs.Multi().Handle, multi: true})
				if err != nil {
					return nil, err
				}
				s.Base().DescriptorVersion = e.d.Base().DescriptorVersion
			}
			continue
		}
		if s, err := tx.workingState(stateKey{handle: h}); err == nil {
			s.Base().DescriptorVersion = e.d.Base().DescriptorVersion
		}
	}

	res := &TransactionResult{MdibVersion: m.mdibVersion}
	changed := false
	for _, h := range tx.descOrder {
		e := tx.desc[h]
		switch e.change {
		case changeLinked:
			m.descriptors[h] = e.d
		case changeUpdated:
			m.descriptors[h] = e.d
			res.Descriptions.Updated = append(res.Descriptions.Updated, m.cloneDescriptor(e.d))
			changed = true
		case changeCreated:
			m.descriptors[h] = e.d
			if e.d.Base().ParentHandle == "" {
				m.root = h
			}
			res.Descriptions.Created = append(res.Descriptions.Created, m.cloneDescriptor(e.d))
			changed = true
		case changeDeleted:
			delete(m.descriptors, h)
			if m.root == h {
				m.root = ""
			}
			res.Descriptions.Deleted = append(res.Descriptions.Deleted, e.d)
			changed = true
		}
	}

	for _, k := range tx.stateOrder {
		e := tx.states[k]
		switch e.change {
		case changeDeleted:
			if k.multi {
				delete(m.contextStates, k.handle)
			} else {
				delete(m.states, k.handle)
			}
			changed = true
			continue
		case changeUpdated:
			e.s.Base().StateVersion++
		}
		if k.multi {
			m.contextStates[k.handle] = e.s.(model.ContextState)
		} else {
			m.states[k.handle] = e.s
		}
		res.add(reg, m.cloneState(e.s))
		changed = true
	}

	if changed {
		m.mdibVersion++
		res.MdibVersion = m.mdibVersion
	}
	return res, nil
}
