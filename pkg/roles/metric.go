package roles

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// SetValueProvider writes the argument of SetValue operations into the
// numeric metric the operation targets.
type SetValueProvider struct {
	Base
}

// NewSetValueProvider creates a SetValueProvider.
func NewSetValueProvider(logger *slog.Logger) *SetValueProvider {
	return &SetValueProvider{Base: NewBase(logger)}
}

// MakeOperation handles SetValue operation descriptors.
func (p *SetValueProvider) MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool) {
	if d.NodeType() != model.SetValueOperationDescriptorType {
		return nil, false
	}
	op, err := sco.NewOperationFromDescriptor(d, sco.WithEffect(p.setNumericValue))
	if err != nil {
		return nil, false
	}
	return op, true
}

func (p *SetValueProvider) setNumericValue(ctx context.Context, inv *sco.Invocation) (sco.Outcome, error) {
	v, err := numericArgument(inv.Request.Argument)
	if err != nil {
		return sco.OutcomeFinished, err
	}
	op := inv.Operation
	p.Logger().Info("set value",
		"target", op.Target(), "operation", op.Handle(), "from", op.CurrentValue(), "to", v)

	err = transaction(ctx, inv, func(tx *mdib.Transaction) error {
		s, err := tx.State(op.Target())
		if err != nil {
			return err
		}
		ns, ok := s.(*model.NumericMetricState)
		if !ok {
			return fmt.Errorf("%w: %s is a %s", ErrTargetType, op.Target(), s.NodeType())
		}
		if ns.MetricValue == nil {
			ns.MetricValue = pmtypes.NewNumericMetricValue()
		}
		ns.MetricValue.Value = &v
		markValid(tx, op.Target(), &ns.MetricValue.MetricQuality)
		return nil
	})
	if err != nil {
		return sco.OutcomeFinished, err
	}
	op.SetCurrentValue(v)
	return sco.OutcomeFinished, nil
}

func numericArgument(arg any) (float64, error) {
	switch v := arg.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T, want a number", ErrArgumentType, arg)
	}
}

// SetStringProvider writes the argument of SetString operations into the
// string or enum string metric the operation targets.
type SetStringProvider struct {
	Base
}

// NewSetStringProvider creates a SetStringProvider.
func NewSetStringProvider(logger *slog.Logger) *SetStringProvider {
	return &SetStringProvider{Base: NewBase(logger)}
}

// MakeOperation handles SetString operation descriptors.
func (p *SetStringProvider) MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool) {
	if d.NodeType() != model.SetStringOperationDescriptorType {
		return nil, false
	}
	op, err := sco.NewOperationFromDescriptor(d, sco.WithEffect(p.setString))
	if err != nil {
		return nil, false
	}
	return op, true
}

func (p *SetStringProvider) setString(ctx context.Context, inv *sco.Invocation) (sco.Outcome, error) {
	v, ok := inv.Request.Argument.(string)
	if !ok {
		return sco.OutcomeFinished, fmt.Errorf("%w: %T, want a string", ErrArgumentType, inv.Request.Argument)
	}
	op := inv.Operation
	p.Logger().Info("set string",
		"target", op.Target(), "operation", op.Handle(), "from", op.CurrentValue(), "to", v)

	err := transaction(ctx, inv, func(tx *mdib.Transaction) error {
		if err := checkString(tx, op, v); err != nil {
			return err
		}
		s, err := tx.State(op.Target())
		if err != nil {
			return err
		}
		var value **pmtypes.StringMetricValue
		switch st := s.(type) {
		case *model.StringMetricState:
			value = &st.MetricValue
		case *model.EnumStringMetricState:
			value = &st.MetricValue
		default:
			return fmt.Errorf("%w: %s is a %s", ErrTargetType, op.Target(), s.NodeType())
		}
		if *value == nil {
			*value = pmtypes.NewStringMetricValue()
		}
		(*value).Value = &v
		markValid(tx, op.Target(), &(*value).MetricQuality)
		return nil
	})
	if err != nil {
		return sco.OutcomeFinished, err
	}
	op.SetCurrentValue(v)
	return sco.OutcomeFinished, nil
}

// checkString enforces the operation's MaxLength and the allowed values of
// an enum string target.
func checkString(tx *mdib.Transaction, op *sco.Operation, v string) error {
	if d, ok := tx.LookupDescriptor(op.Handle()); ok {
		if sd, ok := d.(*model.SetStringOperationDescriptor); ok && sd.MaxLength != nil {
			if uint64(utf8.RuneCountInString(v)) > *sd.MaxLength {
				return fmt.Errorf("%w: %d", ErrValueTooLong, *sd.MaxLength)
			}
		}
	}
	d, ok := tx.LookupDescriptor(op.Target())
	if !ok {
		return nil
	}
	ed, ok := d.(*model.EnumStringMetricDescriptor)
	if !ok || len(ed.AllowedValue) == 0 {
		return nil
	}
	if !slices.ContainsFunc(ed.AllowedValue, func(a *pmtypes.AllowedValue) bool { return a.Value == v }) {
		return fmt.Errorf("%w: %q", ErrValueNotAllowed, v)
	}
	return nil
}

var (
	_ Provider = (*SetValueProvider)(nil)
	_ Provider = (*SetStringProvider)(nil)
)
