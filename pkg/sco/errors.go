package sco

import "errors"

// SCO errors.
var (
	ErrUnknownKind      = errors.New("unknown operation kind")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrKindMismatch     = errors.New("operation kind mismatch")
	ErrNotRegistered    = errors.New("operation not registered")
	ErrNoMds            = errors.New("mdib has no mds")
	ErrQueueFull        = errors.New("operation queue full")
	ErrNotRunning       = errors.New("engine not running")
	ErrAlreadyRunning   = errors.New("engine already running")
	ErrStopTimeout      = errors.New("engine did not stop in time")
	ErrInvalidConfig    = errors.New("invalid sco configuration")
	ErrUnknownTarget    = errors.New("unknown operation target")
	ErrInvalidArgument  = errors.New("invalid operation argument")
	ErrEffectPanic      = errors.New("operation effect panicked")
)
