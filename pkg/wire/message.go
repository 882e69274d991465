package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR map keys shared by all messages.
const (
	KeyMessageType = 0
	KeyMessageID   = 1
)

// MessageType is stored under key 0 of every message.
type MessageType uint8

const (
	MessageTypeUnknown  MessageType = 0
	MessageTypeRequest  MessageType = 1
	MessageTypeResponse MessageType = 2
	MessageTypeReport   MessageType = 3
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
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

// Validation errors.
var (
	ErrMissingMessageID = errors.New("message id is required")
	ErrInvalidAction    = errors.New("invalid action")
	ErrWrongMessageType = errors.New("wrong message type")
)

// Request invokes an operation.
//
// CBOR encoding:
//
//	{
//	  0: 1,               // message type
//	  1: messageId,       // string, echoed in the response
//	  2: action,          // uint8: 1=SetValue ... 7=Activate
//	  3: operationHandle, // string
//	  4: argument,        // action specific, see DecodeArgument
//	  5: source           // string, optional
//	}
type Request struct {
	Type            MessageType     `cbor:"0,keyasint"`
	MessageID       string          `cbor:"1,keyasint"`
	Action          Action          `cbor:"2,keyasint"`
	OperationHandle string          `cbor:"3,keyasint"`
	Argument        cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Source          string          `cbor:"5,keyasint,omitempty"`
}

// Validate checks if the request is well formed. An empty operation handle
// is not a framing error; the provider answers it with an invocation error.
func (r *Request) Validate() error {
	if r.Type != MessageTypeRequest {
		return fmt.Errorf("%w: %s", ErrWrongMessageType, r.Type)
	}
	if r.MessageID == "" {
		return ErrMissingMessageID
	}
	if !r.Action.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidAction, r.Action)
	}
	return nil
}

// Response is the synchronous answer to a request.
//
// CBOR encoding:
//
//	{
//	  0: 2,             // message type
//	  1: messageId,     // matches the request
//	  2: status,        // uint8 invocation state
//	  3: transactionId, // uint64, 0 when rejected
//	  4: mdibVersion,   // uint64
//	  5: sequenceId,    // string
//	  6: error,         // uint8, absent on success
//	  7: errorMessage   // string, absent on success
//	}
type Response struct {
	Type          MessageType `cbor:"0,keyasint"`
	MessageID     string      `cbor:"1,keyasint"`
	Status        Status      `cbor:"2,keyasint"`
	TransactionID uint64      `cbor:"3,keyasint"`
	MdibVersion   uint64      `cbor:"4,keyasint"`
	SequenceID    string      `cbor:"5,keyasint"`
	Error         ErrorKind   `cbor:"6,keyasint,omitempty"`
	ErrorMessage  string      `cbor:"7,keyasint,omitempty"`
}

// IsSuccess returns true if the request was accepted.
func (r *Response) IsSuccess() bool {
	return !r.Status.IsError()
}

// Report is an operation invoked report.
//
// CBOR encoding:
//
//	{
//	  0: 3,               // message type
//	  2: status,          // uint8 invocation state
//	  3: transactionId,   // uint64
//	  4: mdibVersion,     // uint64
//	  5: sequenceId,      // string
//	  6: error,           // uint8, failed invocations only
//	  7: errorMessage,    // string
//	  8: operationHandle, // string
//	  9: operationTarget, // string
//	  10: action,         // uint8
//	  11: source          // string, the requesting consumer
//	}
type Report struct {
	Type            MessageType `cbor:"0,keyasint"`
	Status          Status      `cbor:"2,keyasint"`
	TransactionID   uint64      `cbor:"3,keyasint"`
	MdibVersion     uint64      `cbor:"4,keyasint"`
	SequenceID      string      `cbor:"5,keyasint"`
	Error           ErrorKind   `cbor:"6,keyasint,omitempty"`
	ErrorMessage    string      `cbor:"7,keyasint,omitempty"`
	OperationHandle string      `cbor:"8,keyasint"`
	OperationTarget string      `cbor:"9,keyasint,omitempty"`
	Action          Action      `cbor:"10,keyasint"`
	Source          string      `cbor:"11,keyasint,omitempty"`
}
