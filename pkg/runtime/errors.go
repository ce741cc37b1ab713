package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind classifies language-level errors raised during evaluation.
type ErrorKind uint8

const (
	// ErrUsage covers malformed calls: unused arguments, bad `...` usage,
	// dispatch arity mismatches.
	ErrUsage ErrorKind = iota
	// ErrEvaluation covers failures of the evaluated program itself.
	ErrEvaluation
	// ErrResource covers exhausted interpreter limits such as stack depth.
	ErrResource
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUsage:
		return "usage"
	case ErrEvaluation:
		return "evaluation"
	case ErrResource:
		return "resource"
	default:
		return fmt.Sprintf("error_kind_%d", int(k))
	}
}

// LangError is a recoverable error surfaced to the evaluated program. Call is
// the call expression that was being evaluated when the error was raised, or
// Null when unknown.
type LangError struct {
	Kind    ErrorKind
	Message string
	Call    Value
}

func (e *LangError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Errorf builds a LangError without an associated call.
func Errorf(kind ErrorKind, format string, args ...any) *LangError {
	return &LangError{Kind: kind, Message: fmt.Sprintf(format, args...), Call: Null}
}

// CallErrorf builds a LangError attributed to call.
func CallErrorf(kind ErrorKind, call Value, format string, args ...any) *LangError {
	return &LangError{Kind: kind, Message: fmt.Sprintf(format, args...), Call: call}
}

// AsLangError unwraps err into a LangError if one is present in its chain.
func AsLangError(err error) (*LangError, bool) {
	var le *LangError
	if errors.As(err, &le) && le != nil {
		return le, true
	}
	return nil, false
}

// InvariantError reports a broken internal precondition: a state machine run
// out of order, a malformed encoding request and similar programming errors.
// It is raised with panic and is not meant to be handled by evaluated code.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}
