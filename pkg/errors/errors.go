// Package errors provides structured error handling for jsonpipe
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType classifies a failure by the pipeline stage or boundary it came from
type ErrorType string

const (
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	// ErrorTypeParse is an object that is not valid JSON under any strategy
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeIO is an object store list, get or put failure
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeSchema is a column whose values map to no DDL type
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeWarehouse is a failed create-table or bulk-copy statement
	ErrorTypeWarehouse ErrorType = "warehouse"
)

const maxStackDepth = 32

// Error is a typed error carrying a cause, free-form details and the call
// site where it was first created
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is one caller in a captured stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail records key=value on e and returns e for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// New returns an error of type t
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message, Stack: callers(3)}
}

// Newf is New with a format string
func Newf(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Stack: callers(3)}
}

// Wrap returns nil for a nil err. Otherwise the result has type t, wraps err
// and reuses the stack of the innermost structured error when there is one.
func Wrap(err error, t ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := &Error{Type: t, Message: message, Cause: err}
	var inner *Error
	if stderrors.As(err, &inner) {
		wrapped.Stack = inner.Stack
	} else {
		wrapped.Stack = callers(3)
	}
	return wrapped
}

// IsType reports whether the outermost structured error in err's chain has type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == t
}

// Detail looks key up on the outermost structured error in err's chain
func Detail(err error, key string) (interface{}, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return nil, false
	}
	v, ok := e.Details[key]
	return v, ok
}

func callers(skip int) []StackFrame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	out := make([]StackFrame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		out = append(out, StackFrame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return out
}
