package roles

import "errors"

// Errors returned by operation effects.
var (
	ErrArgumentType      = errors.New("unexpected argument type")
	ErrTargetType        = errors.New("operation target has unexpected type")
	ErrValueTooLong      = errors.New("value exceeds MaxLength")
	ErrValueNotAllowed   = errors.New("value is not an allowed value")
	ErrWrongDescriptor   = errors.New("proposed state belongs to another descriptor")
	ErrNoActivateHandler = errors.New("no activate handler")
)
