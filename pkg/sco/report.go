package sco

import (
	"context"
	"errors"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// OperationInvokedReport describes one invocation state transition.
type OperationInvokedReport struct {
	SequenceID      string
	MdibVersion     uint64
	OperationHandle string
	OperationTarget string
	Kind            Kind
	TransactionID   uint64
	State           pmtypes.InvocationState
	Error           pmtypes.InvocationError
	ErrorMessage    string
	Source          string

	// Namespaces maps prefixes to namespace URIs for report rendering.
	Namespaces map[string]string
}

// ReportSink receives invocation progress. It is called from the engine's
// worker goroutine and must not block indefinitely.
type ReportSink interface {
	NotifyOperation(ctx context.Context, r *OperationInvokedReport) error
}

// ReportSinkFunc adapts a function to ReportSink.
type ReportSinkFunc func(ctx context.Context, r *OperationInvokedReport) error

// NotifyOperation calls f(ctx, r).
func (f ReportSinkFunc) NotifyOperation(ctx context.Context, r *OperationInvokedReport) error {
	return f(ctx, r)
}

// FanOut delivers reports to several sinks in order.
type FanOut []ReportSink

// NotifyOperation delivers r to every sink and joins their errors.
func (f FanOut) NotifyOperation(ctx context.Context, r *OperationInvokedReport) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.NotifyOperation(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Compile-time interface satisfaction checks.
var (
	_ ReportSink = ReportSinkFunc(nil)
	_ ReportSink = FanOut(nil)
)
