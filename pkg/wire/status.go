package wire

import "github.com/sdc-protocol/sdc-go/pkg/pmtypes"

// Status is the invocation state code of responses and reports.
type Status uint8

const (
	// StatusWait indicates the invocation is queued.
	StatusWait Status = 0

	// StatusStarted indicates the invocation is running.
	StatusStarted Status = 1

	// StatusFinished indicates the invocation completed.
	StatusFinished Status = 2

	// StatusFinishedModified indicates the invocation completed with a
	// value other than the requested one.
	StatusFinishedModified Status = 3

	// StatusCancelled indicates the device cancelled the invocation.
	StatusCancelled Status = 4

	// StatusCancelledManually indicates a user cancelled the invocation.
	StatusCancelledManually Status = 5

	// StatusFailed indicates the invocation failed.
	StatusFailed Status = 6
)

var statusStates = map[Status]pmtypes.InvocationState{
	StatusWait:              pmtypes.InvocationWait,
	StatusStarted:           pmtypes.InvocationStarted,
	StatusFinished:          pmtypes.InvocationFinished,
	StatusFinishedModified:  pmtypes.InvocationFinishedModified,
	StatusCancelled:         pmtypes.InvocationCancelled,
	StatusCancelledManually: pmtypes.InvocationCancelledManually,
	StatusFailed:            pmtypes.InvocationFailed,
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusWait:
		return "WAIT"
	case StatusStarted:
		return "STARTED"
	case StatusFinished:
		return "FINISHED"
	case StatusFinishedModified:
		return "FINISHED_MOD"
	case StatusCancelled:
		return "CANCELLED"
	case StatusCancelledManually:
		return "CANCELLED_MANUALLY"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// State returns the participant model invocation state.
func (s Status) State() pmtypes.InvocationState {
	if st, ok := statusStates[s]; ok {
		return st
	}
	return pmtypes.InvocationFailed
}

// IsTerminal returns true if no further report follows for the invocation.
func (s Status) IsTerminal() bool {
	return s != StatusWait && s != StatusStarted
}

// IsError returns true if the invocation failed.
func (s Status) IsError() bool {
	return s == StatusFailed
}

// StatusFor returns the status code of an invocation state. Unknown states
// map to StatusFailed.
func StatusFor(st pmtypes.InvocationState) Status {
	for s, v := range statusStates {
		if v == st {
			return s
		}
	}
	return StatusFailed
}

// ErrorKind classifies failed invocations on the wire.
type ErrorKind uint8

const (
	// ErrorNone is used for successful invocations.
	ErrorNone ErrorKind = 0

	// ErrorUnspecified is an unspecified failure.
	ErrorUnspecified ErrorKind = 1

	// ErrorUnknownOperation indicates the operation is not known.
	ErrorUnknownOperation ErrorKind = 2

	// ErrorInvalidValue indicates the request was malformed.
	ErrorInvalidValue ErrorKind = 3

	// ErrorOther indicates the effect failed.
	ErrorOther ErrorKind = 4
)

var errorKinds = map[ErrorKind]pmtypes.InvocationError{
	ErrorUnspecified:      pmtypes.InvocationErrorUnspecified,
	ErrorUnknownOperation: pmtypes.InvocationErrorUnknown,
	ErrorInvalidValue:     pmtypes.InvocationErrorInvalidValue,
	ErrorOther:            pmtypes.InvocationErrorOther,
}

// String returns the error kind name.
func (e ErrorKind) String() string {
	switch e {
	case ErrorNone:
		return "NONE"
	case ErrorUnspecified:
		return "UNSPECIFIED"
	case ErrorUnknownOperation:
		return "UNKNOWN_OPERATION"
	case ErrorInvalidValue:
		return "INVALID_VALUE"
	case ErrorOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// InvocationError returns the participant model error, empty for ErrorNone.
func (e ErrorKind) InvocationError() pmtypes.InvocationError {
	return errorKinds[e]
}

// ErrorKindFor returns the wire code of an invocation error.
func ErrorKindFor(e pmtypes.InvocationError) ErrorKind {
	if e == "" {
		return ErrorNone
	}
	for k, v := range errorKinds {
		if v == e {
			return k
		}
	}
	return ErrorUnspecified
}
