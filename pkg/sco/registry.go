package sco

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// InvocationInfo is the synchronous answer to a request.
type InvocationInfo struct {
	SequenceID    string
	MdibVersion   uint64
	TransactionID uint64
	State         pmtypes.InvocationState
	Error         pmtypes.InvocationError
	ErrorMessage  string
}

// Registry maps operation handles to operations and feeds requests into the
// engine.
type Registry struct {
	mu   sync.RWMutex
	ops  map[string]*Operation
	mdib *mdib.Mdib

	engine    *Engine
	scoHandle string
	cfg       Config
	logger    *slog.Logger
}

// NewRegistry creates a registry for m. The default Sco is the Sco of the
// root Mds; when the Mds has none, one is created with cfg.ScoHandle.
func NewRegistry(ctx context.Context, m *mdib.Mdib, engine *Engine, cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		ops:    make(map[string]*Operation),
		mdib:   m,
		engine: engine,
		cfg:    cfg,
		logger: cfg.logger(),
	}
	root, ok := m.Root()
	if !ok {
		return nil, ErrNoMds
	}
	for _, c := range m.Children(root.Base().Handle) {
		if c.NodeType() == model.ScoDescriptorType {
			r.scoHandle = c.Base().Handle
			r.logger.Info("found Sco node in mds, using it", "handle", r.scoHandle)
			return r, nil
		}
	}

	r.logger.Info("no Sco node in mds, creating it", "handle", cfg.ScoHandle)
	_, err := m.Transaction(ctx, func(tx *mdib.Transaction) error {
		d, err := tx.Registry().CreateDescriptor(model.ScoDescriptorType, cfg.ScoHandle, root.Base().Handle)
		if err != nil {
			return err
		}
		return tx.AddDescriptor(d)
	})
	if err != nil {
		return nil, fmt.Errorf("create default sco: %w", err)
	}
	r.scoHandle = cfg.ScoHandle
	return r, nil
}

// DefaultScoHandle returns the handle of the default Sco.
func (r *Registry) DefaultScoHandle() string {
	return r.scoHandle
}

// Mdib returns the MDIB operations are registered with.
func (r *Registry) Mdib() *mdib.Mdib {
	return r.mdib
}

// Engine returns the engine requests are enqueued on.
func (r *Registry) Engine() *Engine {
	return r.engine
}

// RegisterOperation binds op to the MDIB. An existing operation descriptor
// and state are re-used; otherwise they are created below scoHandle (the
// default Sco when empty). The operation target gets a default state if it
// has none, except for SetContextState operations.
func (r *Registry) RegisterOperation(ctx context.Context, op *Operation, scoHandle string) error {
	if scoHandle == "" {
		scoHandle = r.scoHandle
	}
	_, err := r.mdib.Transaction(ctx, func(tx *mdib.Transaction) error {
		reg := tx.Registry()
		if d, ok := tx.LookupDescriptor(op.Handle()); ok {
			if k, _ := KindForDescriptor(d.NodeType()); k != op.Kind() {
				return fmt.Errorf("%w: %s is a %s, operation is %s", ErrKindMismatch, op.Handle(), d.NodeType(), op.Kind())
			}
			r.logger.Info("descriptor for operation is already present, re-using it", "operation", op.Handle())
		} else {
			d, err := reg.CreateDescriptor(op.Kind().DescriptorType(), op.Handle(), scoHandle)
			if err != nil {
				return err
			}
			od := d.(model.OperationDescriptor)
			od.Operation().OperationTarget = op.Target()
			od.Base().SafetyClassification = op.safety
			if op.CodedValue() != nil {
				od.Base().Type = op.CodedValue().Clone()
			}
			if err := tx.AddDescriptor(d); err != nil {
				return err
			}
		}
		if !tx.HasState(op.Handle()) {
			if err := r.addDefaultState(tx, op.Handle()); err != nil {
				return err
			}
		}
		if op.Kind() == KindSetContextState {
			return nil
		}
		return r.ensureTargetState(tx, op.Target())
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", op.Handle(), err)
	}

	op.bind(r.mdib)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[op.Handle()]; exists {
		r.logger.Info("operation is already registered, replacing it", "operation", op.Handle())
	}
	r.ops[op.Handle()] = op
	return nil
}

func (r *Registry) ensureTargetState(tx *mdib.Transaction, target string) error {
	if !tx.HasDescriptor(target) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	if tx.HasState(target) {
		return nil
	}
	r.logger.Info("creating operation target state", "target", target)
	return r.addDefaultState(tx, target)
}

func (r *Registry) addDefaultState(tx *mdib.Transaction, descriptorHandle string) error {
	d, ok := tx.LookupDescriptor(descriptorHandle)
	if !ok {
		return fmt.Errorf("%w: %s", mdib.ErrUnknownHandle, descriptorHandle)
	}
	s, err := tx.Registry().NewStateFor(d)
	if err != nil {
		return err
	}
	return tx.AddState(s)
}

// UnregisterOperationByHandle removes an operation. Its descriptor and state
// stay in the MDIB.
func (r *Registry) UnregisterOperationByHandle(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[handle]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, handle)
	}
	delete(r.ops, handle)
	return nil
}

// OperationByHandle returns a registered operation.
func (r *Registry) OperationByHandle(handle string) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[handle]
	return op, ok
}

// Operations returns all registered operations ordered by handle.
func (r *Registry) Operations() []*Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle() < out[j].Handle() })
	return out
}

// EnqueueOperation admits an invocation of op and returns its transaction id.
func (r *Registry) EnqueueOperation(ctx context.Context, op *Operation, req Request) (uint64, error) {
	return r.engine.Enqueue(ctx, op, req)
}

// HandleRequest checks a request and enqueues it. A request naming an
// unknown operation, or one of a different kind, is answered with
// transaction id 0, state Fail and error Inv, and never reaches the engine.
// Admission failures are returned as errors.
func (r *Registry) HandleRequest(ctx context.Context, req Request) (InvocationInfo, error) {
	info := InvocationInfo{SequenceID: r.mdib.SequenceID()}

	var problems []string
	var op *Operation
	switch {
	case req.OperationHandle == "":
		problems = append(problems, "no OperationHandleRef found in Request")
		r.cfg.Metrics.reject(RejectMissingHandle)
	default:
		var ok bool
		op, ok = r.OperationByHandle(req.OperationHandle)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("operation not known: %q", req.OperationHandle))
			r.cfg.Metrics.reject(RejectUnknownOperation)
		case op.Kind() != req.Kind:
			problems = append(problems, fmt.Sprintf("mismatch Operation %s: expect %s, got %s",
				req.OperationHandle, op.Kind(), req.Kind))
			r.cfg.Metrics.reject(RejectKindMismatch)
		}
	}

	if len(problems) > 0 {
		info.MdibVersion = r.mdib.MdibVersion()
		info.State = pmtypes.InvocationFailed
		info.Error = pmtypes.InvocationErrorInvalidValue
		info.ErrorMessage = strings.Join(problems, "; ")
		r.logger.Warn("operation request rejected", "operation", req.OperationHandle, "errors", info.ErrorMessage)
		r.logRejected(req, info)
		return info, nil
	}

	tr, err := r.engine.Enqueue(ctx, op, req)
	if err != nil {
		return InvocationInfo{}, err
	}
	info.MdibVersion = r.mdib.MdibVersion()
	info.TransactionID = tr
	info.State = pmtypes.InvocationWait
	return info, nil
}

func (r *Registry) logRejected(req Request, info InvocationInfo) {
	if r.cfg.EventLogger == nil {
		return
	}
	r.cfg.EventLogger.Log(log.Event{
		Timestamp:  time.Now(),
		SequenceID: info.SequenceID,
		Direction:  log.DirectionIn,
		Layer:      log.LayerSco,
		Category:   log.CategoryInvocation,
		Source:     req.Source,
		Invocation: &log.InvocationEvent{
			OperationHandle: req.OperationHandle,
			Kind:            req.Kind.String(),
			State:           info.State,
			Error:           info.Error,
			ErrorMessage:    info.ErrorMessage,
			MdibVersion:     info.MdibVersion,
		},
	})
}
