// Package pmtypes defines the value types and enumerations of the IEEE 11073-10207
// participant model.
//
// Enumerations are string types whose values are the short wire tokens used by the
// standard (for example MetricCategory "Set" or InvocationState "Fin"). Every enum type
// implements Valid, and ParseEnum converts and validates a raw token in one step.
//
// Value types (CodedValue, Range, metric values, demographics, ...) are plain structs.
// Floating point members compare with FloatEqual so that values surviving a text round
// trip still compare equal.
package pmtypes
