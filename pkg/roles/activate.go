package roles

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// ActivateHandler runs an Activate invocation with its argument values.
type ActivateHandler func(ctx context.Context, inv *sco.Invocation, args []string) (sco.Outcome, error)

// ActivateProvider dispatches Activate operations to handlers registered by
// operation handle or by the code of the operation's Type.
type ActivateProvider struct {
	Base

	mu       sync.RWMutex
	byHandle map[string]ActivateHandler
	byCode   map[string]ActivateHandler
}

// NewActivateProvider creates an ActivateProvider without handlers.
func NewActivateProvider(logger *slog.Logger) *ActivateProvider {
	return &ActivateProvider{
		Base:     NewBase(logger),
		byHandle: make(map[string]ActivateHandler),
		byCode:   make(map[string]ActivateHandler),
	}
}

// Handle registers h for the operation with the given handle.
func (p *ActivateProvider) Handle(operationHandle string, h ActivateHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byHandle[operationHandle] = h
}

// HandleCode registers h for Activate operations whose Type has code.
func (p *ActivateProvider) HandleCode(code string, h ActivateHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byCode[code] = h
}

// handler resolves the handler of an operation; handles win over codes.
func (p *ActivateProvider) handler(op *sco.Operation) (ActivateHandler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if h, ok := p.byHandle[op.Handle()]; ok {
		return h, true
	}
	if op.CodedValue() != nil {
		if h, ok := p.byCode[op.CodedValue().Code]; ok {
			return h, true
		}
	}
	return nil, false
}

// MakeOperation handles Activate operations that have a handler.
func (p *ActivateProvider) MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool) {
	if d.NodeType() != model.ActivateOperationDescriptorType {
		return nil, false
	}
	op, err := sco.NewOperationFromDescriptor(d, sco.WithEffect(p.activate))
	if err != nil {
		return nil, false
	}
	if _, ok := p.handler(op); !ok {
		return nil, false
	}
	return op, true
}

func (p *ActivateProvider) activate(ctx context.Context, inv *sco.Invocation) (sco.Outcome, error) {
	var args []string
	switch a := inv.Request.Argument.(type) {
	case nil:
	case []string:
		args = a
	default:
		return sco.OutcomeFinished, fmt.Errorf("%w: %T, want []string", ErrArgumentType, a)
	}
	h, ok := p.handler(inv.Operation)
	if !ok {
		return sco.OutcomeFinished, fmt.Errorf("%w: %s", ErrNoActivateHandler, inv.Operation.Handle())
	}
	p.Logger().Info("activate", "operation", inv.Operation.Handle(), "args", args)
	return h(ctx, inv, args)
}

var _ Provider = (*ActivateProvider)(nil)
