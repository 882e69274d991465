// Package service ties the MDIB, the SCO execution engine and the role
// providers together into a running SDC provider.
//
// # Provider
//
// Provider owns the lifecycle:
//   - Restore the MDIB from a snapshot store, or load the device description
//   - Create the engine and the operation registry
//   - Register an operation for every operation descriptor via role providers
//   - Fan out OperationInvokedReports to the configured sinks
//   - Save a snapshot on Stop
//
// Example usage:
//
//	config := service.DefaultProviderConfig()
//	config.DescriptionPath = "device.yaml"
//	config.Store = persistence.NewFileStore("mdib.json")
//	config.Sinks = []sco.ReportSink{journal}
//
//	p, err := service.NewProvider(nil, config)
//	p.Start(ctx)
//	defer p.Stop(ctx)
//
//	info, err := p.Registry().HandleRequest(ctx, sco.Request{
//	    OperationHandle: "op.set.numeric",
//	    Kind:            sco.KindSetValue,
//	    Argument:        42.0,
//	})
//
// # Event Callbacks
//
// Providers emit events for commits, invocation reports, restores and
// snapshots. Handlers run in their own goroutine.
package service
