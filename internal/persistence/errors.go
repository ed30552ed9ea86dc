package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrUnsupportedOperator is returned when a query uses an operator the interpreter does not evaluate.
	ErrUnsupportedOperator = errors.New("persistence: unsupported query operator")
	// ErrUnsupportedPath is returned when a query field path is empty or malformed.
	ErrUnsupportedPath = errors.New("persistence: unsupported field path")
	// ErrInvalidOperand is returned when an operator receives an operand of the wrong shape.
	ErrInvalidOperand = errors.New("persistence: invalid operand")
)
