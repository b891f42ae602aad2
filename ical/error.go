package ical

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// The category of a CustomError. Every error produced by this package
// belongs to exactly one kind so callers can branch without string matching.
type ErrorKind int

const (
	// Conflicting or out-of-order temporal fields, invalid range modes,
	// values that don't fit a typed property.
	KindValidation ErrorKind = iota + 1
	// A required property is missing, or the input holds more than one
	// top-level calendar.
	KindSchema
	// A date-time or duration value that can't be interpreted.
	KindParse
	// Mismatched or unterminated BEGIN/END blocks.
	KindStructural
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSchema:
		return "schema"
	case KindParse:
		return "parse"
	case KindStructural:
		return "structural"
	default:
		return "unknown"
	}
}

type CustomError struct {
	kind ErrorKind
	msg  string
	args map[string]any
}

// Create a new custom error
func NewCustomError(kind ErrorKind, msg string, args map[string]any) *CustomError {
	if args == nil {
		args = make(map[string]any)
	}
	return &CustomError{
		kind: kind,
		msg:  msg,
		args: args,
	}
}

func NewValidationError(msg string, args map[string]any) *CustomError {
	return NewCustomError(KindValidation, msg, args)
}

func NewSchemaError(msg string, args map[string]any) *CustomError {
	return NewCustomError(KindSchema, msg, args)
}

func NewParseError(msg string, args map[string]any) *CustomError {
	return NewCustomError(KindParse, msg, args)
}

func NewStructuralError(msg string, args map[string]any) *CustomError {
	return NewCustomError(KindStructural, msg, args)
}

// Get the error kind
func (e *CustomError) Kind() ErrorKind {
	return e.kind
}

// Get the error message
func (e *CustomError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.msg)
	if len(e.args) > 0 {
		sb.WriteString(" |")
		keys := make([]string, 0, len(e.args))
		for key := range e.args {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf(" %s: %v", key, e.args[key]))
		}
	}
	return sb.String()
}

// Report whether err is a CustomError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.kind == kind
	}
	return false
}
