package fixedpoint

import "errors"

var (
	// ErrOverflow is raised when a result needs more than 128 bits.
	ErrOverflow = errors.New("fixedpoint: overflow")
	// ErrUnderflow is raised when a subtraction would go below zero.
	ErrUnderflow = errors.New("fixedpoint: underflow")
	// ErrDivisionByZero is raised when dividing by a zero-valued operand.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	// ErrOutOfRange indicates a float outside [0, 2^64) or NaN.
	ErrOutOfRange = errors.New("fixedpoint: value out of range")
)
