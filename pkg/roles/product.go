package roles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// operationTypes are the descriptor types Product looks for, in kind order.
func operationTypes() []model.NodeType {
	kinds := sco.Kinds()
	out := make([]model.NodeType, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.DescriptorType())
	}
	return out
}

// Config configures a Product.
type Config struct {
	// Logger is used for operational logging. Optional.
	Logger *slog.Logger
}

// Product wires role providers to the operations of an MDIB.
type Product struct {
	registry  *sco.Registry
	providers []Provider
	logger    *slog.Logger
}

// NewProduct creates a Product. Providers are asked in the given order.
func NewProduct(registry *sco.Registry, cfg Config, providers ...Provider) *Product {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Product{registry: registry, providers: providers, logger: logger}
}

// Providers returns the providers in the order they are asked.
func (p *Product) Providers() []Provider {
	return p.providers
}

// Init registers an operation for every operation descriptor of the MDIB.
// The first provider that handles a descriptor supplies the operation;
// descriptors no provider handles get an operation that only records its
// calls. Afterwards the operations returned by MakeMissingOperations are
// registered below the default Sco.
func (p *Product) Init(ctx context.Context) error {
	m := p.registry.Mdib()
	for _, pr := range p.providers {
		pr.Init(m)
	}

	for _, d := range m.Descriptors(operationTypes()...) {
		od, ok := d.(model.OperationDescriptor)
		if !ok {
			continue
		}
		op, err := p.makeOperation(od)
		if err != nil {
			return err
		}
		if err := p.registry.RegisterOperation(ctx, op, d.Base().ParentHandle); err != nil {
			return err
		}
	}

	for _, pr := range p.providers {
		for _, op := range pr.MakeMissingOperations() {
			if _, exists := p.registry.OperationByHandle(op.Handle()); exists {
				p.logger.Info("operation already registered, skipping", "operation", op.Handle())
				continue
			}
			p.logger.Info("registering missing operation", "operation", op.Handle(), "kind", op.Kind().String())
			if err := p.registry.RegisterOperation(ctx, op, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Product) makeOperation(d model.OperationDescriptor) (*sco.Operation, error) {
	for _, pr := range p.providers {
		if op, ok := pr.MakeOperation(d); ok {
			p.logger.Debug("provider handles operation",
				"operation", d.Base().Handle, "provider", fmt.Sprintf("%T", pr))
			return op, nil
		}
	}
	p.logger.Info("no provider handles operation, recording calls only",
		"operation", d.Base().Handle, "type", string(d.NodeType()))
	return sco.NewOperationFromDescriptor(d)
}
