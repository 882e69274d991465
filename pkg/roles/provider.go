package roles

import (
	"context"
	"log/slog"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// Provider creates operations for the operation descriptors it handles.
type Provider interface {
	// Init binds the provider to the MDIB. It is called once, before any
	// other method.
	Init(m *mdib.Mdib)

	// MakeOperation returns an operation for d, or false when the provider
	// does not handle d.
	MakeOperation(d model.OperationDescriptor) (*sco.Operation, bool)

	// MakeMissingOperations returns operations the provider needs that are
	// not described in the MDIB.
	MakeMissingOperations() []*sco.Operation
}

// Base implements the bookkeeping part of Provider. Providers embed it and
// add MakeOperation.
type Base struct {
	mdib   *mdib.Mdib
	logger *slog.Logger
}

// NewBase returns a Base logging to logger. A nil logger discards.
func NewBase(logger *slog.Logger) Base {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Base{logger: logger}
}

// Init stores the MDIB.
func (b *Base) Init(m *mdib.Mdib) {
	b.mdib = m
}

// Mdib returns the MDIB passed to Init.
func (b *Base) Mdib() *mdib.Mdib {
	return b.mdib
}

// Logger returns the provider's logger.
func (b *Base) Logger() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// MakeMissingOperations returns nothing.
func (b *Base) MakeMissingOperations() []*sco.Operation {
	return nil
}

// transaction runs fn on the MDIB the invoked operation is registered with.
func transaction(ctx context.Context, inv *sco.Invocation, fn func(*mdib.Transaction) error) error {
	m := inv.Operation.Mdib()
	if m == nil {
		return sco.ErrNotRegistered
	}
	_, err := m.Transaction(ctx, fn)
	return err
}

// markValid sets the validity of a value written by an operation when the
// metric is a setting or presetting.
func markValid(tx *mdib.Transaction, metricHandle string, q *pmtypes.MetricQuality) {
	d, ok := tx.LookupDescriptor(metricHandle)
	if !ok {
		return
	}
	md, ok := d.(model.MetricDescriptor)
	if !ok {
		return
	}
	switch md.Metric().MetricCategory {
	case pmtypes.MetricCategorySetting, pmtypes.MetricCategoryPresetting:
		q.Validity = pmtypes.ValidityValid
	}
}
