package interp

import (
	"errors"
	"fmt"
)

// ErrFatal marks a failure that ends the whole session.
var ErrFatal = errors.New("fatal")

type EvalErrorKind int

const (
	UndefinedVariable EvalErrorKind = iota + 1
	MalformedReference
	DepthExceeded
)

func (k EvalErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "undefined variable"
	case MalformedReference:
		return "malformed reference"
	case DepthExceeded:
		return "expansion depth exceeded"
	default:
		return "evaluation error"
	}
}

// EvalError is returned when a reference cannot be expanded. It has
// already been reported as a diagnostic when it is returned.
type EvalError struct {
	Kind   EvalErrorKind
	Name   string
	File   string
	Offset int
}

var (
	ErrUndefinedVariable  = &EvalError{Kind: UndefinedVariable}
	ErrMalformedReference = &EvalError{Kind: MalformedReference}
	ErrDepthExceeded      = &EvalError{Kind: DepthExceeded}
)

func (e *EvalError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s:%d: %s '%s'", e.File, e.Offset, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Offset, e.Kind)
}

// Is matches on Kind, and on Name when the target names one.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Name == "" || t.Name == e.Name)
}

// bailout carries a fatal error up through the interpreter's call stack.
type bailout struct {
	err error
}
