package sco

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// Outcome is the terminal result an effect reports for a successful run.
type Outcome uint8

// Effect outcomes. The engine never infers OutcomeFinishedModified; an
// effect returns it when it applied a value other than the requested one.
const (
	OutcomeFinished Outcome = iota
	OutcomeFinishedModified
	OutcomeCancelled
	OutcomeCancelledManually
)

// State returns the invocation state reported for the outcome.
func (o Outcome) State() pmtypes.InvocationState {
	switch o {
	case OutcomeFinished:
		return pmtypes.InvocationFinished
	case OutcomeFinishedModified:
		return pmtypes.InvocationFinishedModified
	case OutcomeCancelled:
		return pmtypes.InvocationCancelled
	case OutcomeCancelledManually:
		return pmtypes.InvocationCancelledManually
	default:
		return pmtypes.InvocationFailed
	}
}

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "FINISHED"
	case OutcomeFinishedModified:
		return "FINISHED_MOD"
	case OutcomeCancelled:
		return "CANCELLED"
	case OutcomeCancelledManually:
		return "CANCELLED_MANUALLY"
	default:
		return "UNKNOWN"
	}
}

// Request is an inbound invocation request.
type Request struct {
	// OperationHandle references the invoked operation.
	OperationHandle string

	// Kind is the request type; it must match the operation's kind.
	Kind Kind

	// Argument is the decoded request argument: float64 for SetValue,
	// string for SetString, []model.ContextState for SetContextState,
	// []model.State for SetMetricState and SetComponentState,
	// model.State for SetAlertState and []string argument values for Activate.
	Argument any

	// Source identifies the requesting consumer. Optional.
	Source string
}

// Invocation is one admitted request.
type Invocation struct {
	TransactionID uint64
	Operation     *Operation
	Request       Request
}

// Effect executes an invocation against the MDIB.
type Effect func(ctx context.Context, inv *Invocation) (Outcome, error)

// Call records one execution of an operation.
type Call struct {
	Time          time.Time
	TransactionID uint64
	Request       Request
}

// Operation is a remote control point bound to an operation descriptor.
type Operation struct {
	handle string
	target string
	kind   Kind
	coded  *pmtypes.CodedValue
	safety pmtypes.SafetyClassification

	mu       sync.Mutex
	effect   Effect
	mdib     *mdib.Mdib
	calls    []Call
	value    any
	request  *Request
	argument any
	watchers map[int]chan any
	nextW    int
}

// OperationOption configures an Operation.
type OperationOption func(*Operation)

// WithEffect sets the effect run for every invocation.
func WithEffect(e Effect) OperationOption {
	return func(o *Operation) { o.effect = e }
}

// WithCodedValue sets the operation's Type.
func WithCodedValue(c *pmtypes.CodedValue) OperationOption {
	return func(o *Operation) { o.coded = c }
}

// WithSafetyClassification sets the descriptor's safety classification.
func WithSafetyClassification(s pmtypes.SafetyClassification) OperationOption {
	return func(o *Operation) { o.safety = s }
}

// WithInitialValue sets the initial current value.
func WithInitialValue(v any) OperationOption {
	return func(o *Operation) { o.value = v }
}

// NewOperation creates an operation of the given kind. Without an effect the
// operation only records its calls.
func NewOperation(kind Kind, handle, target string, opts ...OperationOption) *Operation {
	o := &Operation{
		handle:   handle,
		target:   target,
		kind:     kind,
		safety:   pmtypes.SafetyInformational,
		watchers: make(map[int]chan any),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOperationFromDescriptor creates an operation for an existing operation
// descriptor.
func NewOperationFromDescriptor(d model.OperationDescriptor, opts ...OperationOption) (*Operation, error) {
	kind, ok := KindForDescriptor(d.NodeType())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, d.NodeType())
	}
	b := d.Base()
	base := []OperationOption{WithSafetyClassification(b.SafetyClassification)}
	if b.Type != nil {
		base = append(base, WithCodedValue(b.Type.Clone()))
	}
	return NewOperation(kind, b.Handle, d.Operation().OperationTarget, append(base, opts...)...), nil
}

// Handle returns the operation handle.
func (o *Operation) Handle() string { return o.handle }

// Target returns the operation target handle.
func (o *Operation) Target() string { return o.target }

// Kind returns the operation kind.
func (o *Operation) Kind() Kind { return o.kind }

// CodedValue returns the operation's Type, or nil.
func (o *Operation) CodedValue() *pmtypes.CodedValue { return o.coded }

// SetEffect replaces the effect.
func (o *Operation) SetEffect(e Effect) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.effect = e
}

// Mdib returns the MDIB the operation is registered with, or nil.
func (o *Operation) Mdib() *mdib.Mdib {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mdib
}

func (o *Operation) bind(m *mdib.Mdib) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mdib = m
}

// Calls returns the recorded calls, oldest first.
func (o *Operation) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.calls)
}

// CurrentRequest returns the most recent request.
func (o *Operation) CurrentRequest() (Request, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.request == nil {
		return Request{}, false
	}
	return *o.request, true
}

// CurrentArgument returns the argument of the most recent request.
func (o *Operation) CurrentArgument() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.argument
}

// CurrentValue returns the value last applied by the operation's effect.
func (o *Operation) CurrentValue() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// SetCurrentValue records v as the current value and publishes it to all
// Values subscribers. Subscribers that are not ready miss the value.
func (o *Operation) SetCurrentValue(v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = v
	for _, ch := range o.watchers {
		select {
		case ch <- v:
		default:
		}
	}
}

// Values subscribes to current value changes. The returned cancel function
// ends the subscription and closes the channel.
func (o *Operation) Values(buffer int) (<-chan any, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextW
	o.nextW++
	ch := make(chan any, buffer)
	o.watchers[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.watchers, id)
			close(ch)
		})
	}
}

// SetOperatingMode sets the OperatingMode of the operation's state.
func (o *Operation) SetOperatingMode(ctx context.Context, mode pmtypes.OperatingMode) error {
	m := o.Mdib()
	if m == nil {
		return fmt.Errorf("%w: %s", ErrNotRegistered, o.handle)
	}
	_, err := m.Transaction(ctx, func(tx *mdib.Transaction) error {
		s, err := tx.State(o.handle)
		if err != nil {
			return err
		}
		st, ok := s.(model.OperationStateEntity)
		if !ok {
			return fmt.Errorf("%w: %s is a %s", ErrKindMismatch, o.handle, s.NodeType())
		}
		st.OperationState().OperatingMode = mode
		return nil
	})
	return err
}

// execute records the call and runs the effect. A panic in the effect is
// returned as an error.
func (o *Operation) execute(ctx context.Context, inv *Invocation) (outcome Outcome, err error) {
	o.mu.Lock()
	o.calls = append(o.calls, Call{Time: time.Now(), TransactionID: inv.TransactionID, Request: inv.Request})
	req := inv.Request
	o.request = &req
	o.argument = inv.Request.Argument
	effect := o.effect
	o.mu.Unlock()

	if effect == nil {
		return OutcomeFinished, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEffectPanic, r)
		}
	}()
	return effect(ctx, inv)
}

func (o *Operation) String() string {
	return fmt.Sprintf("%s handle=%s target=%s", o.kind, o.handle, o.target)
}
