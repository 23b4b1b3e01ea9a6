// Package analysis parses and executes the model-generated analysis
// directive: a small program in a closed chained-call grammar plus a
// response template. Programs are interpreted locally against the
// snapshot table; nothing the model writes is ever executed as code.
package analysis

import (
	"errors"
	"fmt"
)

// ErrResultMissing reports a program that never assigns resultado.
var ErrResultMissing = errors.New("program does not assign resultado")

// FormatError reports a model reply that does not follow the directive
// contract (missing delimiter, wrong part count).
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("directive format: %s", e.Msg)
}

// ExecutionError reports a program that parsed but could not run:
// unknown verb or column, bad syntax, or a runtime fault such as an
// aggregate over an empty set. The message is safe to log; it carries
// no model-generated content beyond identifier names.
type ExecutionError struct {
	Msg   string
	Cause error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("program execution: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("program execution: %s", e.Msg)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func execErrorf(format string, args ...any) *ExecutionError {
	return &ExecutionError{Msg: fmt.Sprintf(format, args...)}
}
