package roles

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// stateIdentity are the members a proposed state never overwrites.
var stateIdentity = []string{"DescriptorHandle", "DescriptorVersion", "StateVersion"}

// StateProvider merges proposed states of SetMetricState, SetComponentState
// and SetAlertState operations into the MDIB. When the operation descriptor
// lists ModifiableData, only those members are taken from a proposal.
type StateProvider struct {
	Base
	kinds []sco.Kind
}

// NewStateProvider creates a StateProvider for kinds. Without kinds it
// handles all three set-state kinds.
func NewStateProvider(logger *slog.Logger, kinds ...sco.Kind) *StateProvider {
	if len(kinds) == 0 {
		kinds = []sco.Kind{sco.KindSetMetricState, sco.KindSetComponentState, sco.KindSetAlertState}
	}
	return &StateProvider{Base: NewBase(logger), kinds: kinds}
}

// MakeOperation handles the configured set-state kinds.
func (p *StateProvider) MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool) {
	kind, ok := sco.KindForDescriptor(d.NodeType())
	if !ok || !slices.Contains(p.kinds, kind) {
		return nil, false
	}
	switch kind {
	case sco.KindSetMetricState, sco.KindSetComponentState, sco.KindSetAlertState:
	default:
		return nil, false
	}
	op, err := sco.NewOperationFromDescriptor(d, sco.WithEffect(p.setStates))
	if err != nil {
		return nil, false
	}
	return op, true
}

func (p *StateProvider) setStates(ctx context.Context, inv *sco.Invocation) (sco.Outcome, error) {
	var proposals []model.State
	switch arg := inv.Request.Argument.(type) {
	case []model.State:
		proposals = arg
	case model.State:
		proposals = []model.State{arg}
	default:
		return sco.OutcomeFinished, fmt.Errorf("%w: %T, want model.State", ErrArgumentType, arg)
	}
	op := inv.Operation

	err := transaction(ctx, inv, func(tx *mdib.Transaction) error {
		skip, err := p.skipped(tx, op)
		if err != nil {
			return err
		}
		for _, proposed := range proposals {
			dh := proposed.Base().DescriptorHandle
			if op.Kind() == sco.KindSetAlertState && dh != op.Target() {
				return fmt.Errorf("%w: %s, operation target is %s", ErrWrongDescriptor, dh, op.Target())
			}
			cur, err := tx.State(dh)
			if err != nil {
				return err
			}
			p.Logger().Info("set state", "operation", op.Handle(), "state", dh, "type", string(cur.NodeType()))
			if err := tx.Registry().Merge(cur, proposed, skip...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return sco.OutcomeFinished, err
	}
	return sco.OutcomeFinished, nil
}

// skipped returns the members to keep from the current state. With
// ModifiableData, every member it does not name is kept; the identity members
// are always kept.
func (p *StateProvider) skipped(tx *mdib.Transaction, op *sco.Operation) ([]string, error) {
	d, ok := tx.LookupDescriptor(op.Handle())
	if !ok {
		return stateIdentity, nil
	}
	ss, ok := d.(model.SetStateOperationDescriptor)
	if !ok || len(ss.SetState().ModifiableData) == 0 {
		return stateIdentity, nil
	}
	target, ok := tx.LookupDescriptor(op.Target())
	if !ok {
		return nil, fmt.Errorf("%w: %s", sco.ErrUnknownTarget, op.Target())
	}
	dv, ok := tx.Registry().DescriptorVariant(target.NodeType())
	if !ok {
		return stateIdentity, nil
	}
	schema, err := tx.Registry().Schema(dv.StateType)
	if err != nil {
		return nil, err
	}
	skip := slices.Clone(stateIdentity)
	for _, f := range schema.Fields {
		if !slices.Contains(ss.SetState().ModifiableData, f.Name) && !slices.Contains(skip, f.Name) {
			skip = append(skip, f.Name)
		}
	}
	return skip, nil
}

var _ Provider = (*StateProvider)(nil)
