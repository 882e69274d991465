package model

import "errors"

// Model errors.
var (
	ErrUnknownNodeType  = errors.New("unknown node type")
	ErrUnsupportedChild = errors.New("unsupported child")
	ErrChildNotFound    = errors.New("child not found")
	ErrUndeclaredChild  = errors.New("undeclared child element")
	ErrUnknownHandle    = errors.New("unknown handle")
	ErrTypeMismatch     = errors.New("entity type mismatch")
	ErrMissingAttribute = errors.New("missing required attribute")
	ErrInvalidAttribute = errors.New("invalid attribute value")
	ErrDuplicateVariant = errors.New("variant already registered")
)
