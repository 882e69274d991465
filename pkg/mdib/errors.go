package mdib

import "errors"

// MDIB errors.
var (
	ErrUnknownHandle   = errors.New("unknown handle")
	ErrDuplicateHandle = errors.New("duplicate handle")
	ErrEmptyHandle     = errors.New("empty handle")
	ErrStateMismatch   = errors.New("state does not match descriptor")
	ErrNoParent        = errors.New("parent descriptor not found")
	ErrTransactionDone = errors.New("transaction already finished")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrRootExists      = errors.New("mdib already has a root")
)
