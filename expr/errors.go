package expr

import "errors"

var (
	// Compile errors
	ErrEmptyExpr = errors.New("expr: empty expression")

	// Evaluation errors
	ErrUnboundName   = errors.New("expr: unbound name")
	ErrUnknownFunc   = errors.New("expr: unknown function")
	ErrNotAssignable = errors.New("expr: target is not assignable")
	ErrTypeMismatch  = errors.New("expr: type mismatch")
)
