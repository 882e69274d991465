package log

import (
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// Event represents a provider log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SequenceID identifies the MDIB instance (urn:uuid).
	SequenceID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Source names the emitting component or the remote consumer.
	Source string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Invocation *InvocationEvent `cbor:"10,keyasint,omitempty"` // SCO layer
	Commit     *CommitEvent     `cbor:"11,keyasint,omitempty"` // MDIB layer
	Message    *MessageEvent    `cbor:"12,keyasint,omitempty"` // Wire layer
	Error      *ErrorEventData  `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message or report.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which provider layer captured the event.
type Layer uint8

const (
	// LayerMdib is the MDIB store.
	LayerMdib Layer = 0
	// LayerSco is the operation execution engine.
	LayerSco Layer = 1
	// LayerWire is the message encoding layer.
	LayerWire Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerMdib:
		return "MDIB"
	case LayerSco:
		return "SCO"
	case LayerWire:
		return "WIRE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryInvocation indicates an operation invocation state change.
	CategoryInvocation Category = 0
	// CategoryCommit indicates a committed MDIB transaction.
	CategoryCommit Category = 1
	// CategoryMessage indicates an encoded request, response or report.
	CategoryMessage Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInvocation:
		return "INVOCATION"
	case CategoryCommit:
		return "COMMIT"
	case CategoryMessage:
		return "MESSAGE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// InvocationEvent captures one invocation state transition of an operation.
type InvocationEvent struct {
	// TransactionID is the engine assigned transaction id (0 for rejected requests).
	TransactionID uint64 `cbor:"1,keyasint"`

	// OperationHandle is the handle of the invoked operation.
	OperationHandle string `cbor:"2,keyasint"`

	// Kind is the operation kind name (e.g. "SetValue").
	Kind string `cbor:"3,keyasint,omitempty"`

	// State is the reported invocation state.
	State pmtypes.InvocationState `cbor:"4,keyasint"`

	// Error is the invocation error kind for failed invocations.
	Error pmtypes.InvocationError `cbor:"5,keyasint,omitempty"`

	// ErrorMessage is the human readable failure reason.
	ErrorMessage string `cbor:"6,keyasint,omitempty"`

	// MdibVersion at the time of the report.
	MdibVersion uint64 `cbor:"7,keyasint,omitempty"`

	// Duration from START to the terminal state (terminal states only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"8,keyasint,omitempty"`
}

// CommitEvent summarizes a committed MDIB transaction.
type CommitEvent struct {
	MdibVersion  uint64 `cbor:"1,keyasint"`
	Metrics      int    `cbor:"2,keyasint,omitempty"`
	Alerts       int    `cbor:"3,keyasint,omitempty"`
	Components   int    `cbor:"4,keyasint,omitempty"`
	Contexts     int    `cbor:"5,keyasint,omitempty"`
	Operational  int    `cbor:"6,keyasint,omitempty"`
	Descriptions int    `cbor:"7,keyasint,omitempty"`
}

// MessageEvent captures an encoded wire message.
type MessageEvent struct {
	// Type distinguishes request/response/report.
	Type MessageType `cbor:"1,keyasint"`

	// MessageID correlates request/response pairs.
	MessageID string `cbor:"2,keyasint,omitempty"`

	// Action names the request or report (e.g. "SetValue").
	Action string `cbor:"3,keyasint,omitempty"`

	// Size is the encoded size in bytes.
	Size int `cbor:"4,keyasint,omitempty"`

	// Decoded payload (CBOR-compatible representation).
	Payload any `cbor:"5,keyasint,omitempty"`
}

// MessageType distinguishes request/response/report.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a response message.
	MessageTypeResponse MessageType = 1
	// MessageTypeReport indicates an episodic report.
	MessageTypeReport MessageType = 2
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypeReport:
		return "REPORT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
