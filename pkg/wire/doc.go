// Package wire defines the CBOR encoding of operation requests, responses
// and operation invoked reports.
//
// All messages use CBOR (RFC 8949) maps with integer keys. Key 0 carries the
// message type so a receiver can dispatch without decoding the whole
// message.
//
// # Message Types
//
//   - Request: consumer to provider (SetValue, SetString, SetContextState,
//     SetMetricState, SetComponentState, SetAlertState, Activate)
//   - Response: provider to consumer, the synchronous invocation info
//   - Report: provider to consumer, one invocation state transition
//
// # Arguments
//
// Request arguments are kept as raw CBOR until the action is known. Numeric
// and string arguments are plain CBOR values; proposed states travel as
// materialized entity trees (model.Node) and are parsed with the model
// registry.
package wire
