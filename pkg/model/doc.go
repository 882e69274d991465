// Package model implements the IEEE 11073-10207 participant model entity layer.
//
// # Entities
//
// The device information tree (MDIB) consists of descriptors, which describe the
// structure of a device, and states, which carry its runtime status:
//
//	Mds
//	├── SystemContext ─ Patient/Location/Ensemble/... context descriptors
//	├── Sco ─ operation descriptors
//	├── AlertSystem ─ AlertCondition, LimitAlertCondition, AlertSignal
//	└── Vmd
//	    └── Channel
//	        └── metric descriptors
//
// Every descriptor variant is a concrete Go type (MdsDescriptor, NumericMetricDescriptor,
// ...) identified by a NodeType. Each has exactly one state variant. Context states are
// multi-states: several states, each with its own Handle, may belong to one descriptor.
//
// Entities never point at each other. Parents record their children by handle and
// states record their descriptor by handle; resolving handles is the job of the store.
//
// # Schemas
//
// Attribute and sub-element binding is declarative. Each variant owns a Schema, an
// ordered list of Fields (attributes and owned elements) and ChildGroups (permitted
// child descriptor variants). Schemas are built once by NewRegistry and drive:
//   - Materialize: entity to ordered Node tree
//   - ParseDescriptor / ParseState: Node tree back to entities
//   - Diff / Equal: field-by-field comparison with decimal tolerance
//   - Merge / Clone: field-wise copies
//
// Children are always emitted in the order their groups are declared, never in
// insertion order.
package model
