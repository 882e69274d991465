package roles

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// contextUpdateSkip lists the members an update of an existing context state
// never takes from the proposal.
var contextUpdateSkip = []string{
	"ContextAssociation",
	"BindingMdibVersion",
	"UnbindingMdibVersion",
	"BindingStartTime",
	"BindingEndTime",
	"StateVersion",
	"DescriptorVersion",
}

// ContextProvider handles SetContextState operations whose target is a
// context descriptor of one of the configured types.
//
// A proposed state with an empty handle, the descriptor handle, or a handle
// unknown to the MDIB becomes a new associated state; all other states of
// its descriptor are disassociated. A proposal naming an existing state
// updates that state.
type ContextProvider struct {
	Base
	targetTypes []model.NodeType
}

// NewContextProvider creates a provider for the given context descriptor
// types.
func NewContextProvider(logger *slog.Logger, targetTypes ...model.NodeType) *ContextProvider {
	return &ContextProvider{Base: NewBase(logger), targetTypes: targetTypes}
}

// NewLocationContextProvider handles location contexts.
func NewLocationContextProvider(logger *slog.Logger) *ContextProvider {
	return NewContextProvider(logger, model.LocationContextDescriptorType)
}

// NewEnsembleContextProvider handles ensemble contexts.
func NewEnsembleContextProvider(logger *slog.Logger) *ContextProvider {
	return NewContextProvider(logger, model.EnsembleContextDescriptorType)
}

// MakeOperation handles SetContextState operation descriptors whose target
// type matches.
func (p *ContextProvider) MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool) {
	if d.NodeType() != model.SetContextStateOperationDescriptorType || p.Mdib() == nil {
		return nil, false
	}
	target, ok := p.Mdib().Descriptor(d.Operation().OperationTarget)
	if !ok || !slices.Contains(p.targetTypes, target.NodeType()) {
		return nil, false
	}
	op, err := sco.NewOperationFromDescriptor(d, sco.WithEffect(p.setContextState))
	if err != nil {
		return nil, false
	}
	return op, true
}

func (p *ContextProvider) setContextState(ctx context.Context, inv *sco.Invocation) (sco.Outcome, error) {
	proposals, ok := inv.Request.Argument.([]model.ContextState)
	if !ok {
		return sco.OutcomeFinished, fmt.Errorf("%w: %T, want []model.ContextState", ErrArgumentType, inv.Request.Argument)
	}
	target := inv.Operation.Target()

	err := transaction(ctx, inv, func(tx *mdib.Transaction) error {
		for _, proposed := range proposals {
			if dh := proposed.Base().DescriptorHandle; dh != target {
				return fmt.Errorf("%w: %s, operation target is %s", ErrWrongDescriptor, dh, target)
			}
			existing, ok, err := p.existingState(tx, proposed)
			if err != nil {
				return err
			}
			if ok {
				if err := p.update(tx, existing, proposed); err != nil {
					return err
				}
				continue
			}
			if err := p.associate(tx, proposed); err != nil {
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

// existingState returns the working copy of the state a proposal updates.
func (p *ContextProvider) existingState(tx *mdib.Transaction, proposed model.ContextState) (model.ContextState, bool, error) {
	h := proposed.Multi().Handle
	if h == "" || h == proposed.Base().DescriptorHandle {
		return nil, false, nil
	}
	cur, err := tx.ContextState(h)
	if err != nil {
		p.Logger().Info("proposed context state not found, adding it as new", "handle", h)
		return nil, false, nil
	}
	if cur.Base().DescriptorHandle != proposed.Base().DescriptorHandle {
		return nil, false, fmt.Errorf("%w: %s belongs to %s", ErrWrongDescriptor, h, cur.Base().DescriptorHandle)
	}
	return cur, true, nil
}

func (p *ContextProvider) update(tx *mdib.Transaction, cur, proposed model.ContextState) error {
	p.Logger().Info("update context state", "type", string(cur.NodeType()), "handle", cur.Multi().Handle)
	return tx.Registry().Merge(cur, proposed, contextUpdateSkip...)
}

// associate adds proposed as a new associated state and disassociates the
// other states of its descriptor.
func (p *ContextProvider) associate(tx *mdib.Transaction, proposed model.ContextState) error {
	s, err := tx.Registry().CloneState(proposed)
	if err != nil {
		return err
	}
	st := s.(model.ContextState)
	dh := st.Base().DescriptorHandle
	version := tx.MdibVersion()
	now := pmtypes.Now()

	siblings := tx.ContextStates(dh)
	st.Multi().Handle = newContextHandle(dh, version, tx.HandleTaken)
	st.Base().StateVersion = 0
	c := st.Context()
	c.ContextAssociation = pmtypes.AssociationAssociated
	c.BindingMdibVersion = &version
	c.BindingStartTime = now
	c.UnbindingMdibVersion = nil
	c.BindingEndTime = 0
	p.Logger().Info("new context state", "type", string(st.NodeType()), "handle", st.Multi().Handle)

	for _, old := range siblings {
		oc := old.Context()
		if oc.ContextAssociation == pmtypes.AssociationDisassociated && oc.UnbindingMdibVersion != nil {
			continue
		}
		w, err := tx.ContextState(old.Multi().Handle)
		if err != nil {
			return err
		}
		wc := w.Context()
		wc.ContextAssociation = pmtypes.AssociationDisassociated
		if wc.UnbindingMdibVersion == nil {
			v := version
			wc.UnbindingMdibVersion = &v
			wc.BindingEndTime = now
		}
	}
	return tx.AddState(st)
}

// newContextHandle returns "{descriptorHandle}_{mdibVersion}", with a counter
// appended while the handle is taken by any descriptor or context state.
func newContextHandle(dh string, version uint64, taken func(string) bool) string {
	h := fmt.Sprintf("%s_%d", dh, version)
	for n := 1; taken(h); n++ {
		h = fmt.Sprintf("%s_%d_%d", dh, version, n)
	}
	return h
}

var _ Provider = (*ContextProvider)(nil)
