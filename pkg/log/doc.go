// Package log provides structured event logging for SDC providers.
//
// This package defines the Logger interface and Event types for capturing
// provider events at multiple layers (MDIB, SCO, wire).
// It is separate from operational logging (slog) - event capture provides
// a complete machine-readable trace of commits and invocations.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/sdc/provider.sdclog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - MDIB: committed transactions (CommitEvent)
//   - SCO: invocation state transitions (InvocationEvent)
//   - Wire: encoded requests, responses and reports (MessageEvent)
//
// Errors have a dedicated event type.
//
// # File Format
//
// Log files are a concatenation of CBOR encoded events with the .sdclog
// extension. FileLogger stamps events that lack a timestamp or sequence id.
// The "sdc-provider log" command provides viewing and filtering.
package log
