package table

import "errors"

// Common errors.
var (
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrDimMismatch    = errors.New("dimension mismatch")
	ErrTypeMismatch   = errors.New("data type mismatch")
	ErrUnknownField   = errors.New("unknown field")
	ErrDuplicateField = errors.New("duplicate field")
	ErrTooLarge       = errors.New("array exceeds addressable cell count")
)
