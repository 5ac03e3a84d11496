// Package oracleerr implements the error taxonomy from spec.md §7: a small
// closed set of categories that the hint interceptor, the RPC client and the
// CLI all report through, each carrying a grpc status code the way the
// teacher's scError/failureResponse types carry a numeric Code().
package oracleerr

import (
	"fmt"

	"google.golang.org/grpc/codes"
)

// Category is one of the taxonomy entries from spec.md §7.
type Category string

// The complete error taxonomy.
const (
	ConfigLoad         Category = "ConfigLoad"
	UnknownSelector    Category = "UnknownSelector"
	NoServerConfigured Category = "NoServerConfigured"
	CodecMismatch      Category = "CodecMismatch"
	RpcFailure         Category = "RpcFailure"
	PollingTimeout     Category = "PollingTimeout"
	VmError            Category = "VmError"
	RunPanicCategory   Category = "RunPanic"
)

var categoryCode = map[Category]codes.Code{
	ConfigLoad:         codes.FailedPrecondition,
	UnknownSelector:    codes.NotFound,
	NoServerConfigured: codes.FailedPrecondition,
	CodecMismatch:      codes.InvalidArgument,
	RpcFailure:         codes.Unavailable,
	PollingTimeout:     codes.DeadlineExceeded,
	VmError:            codes.Internal,
	RunPanicCategory:   codes.Aborted,
}

// Error is the common shape every taxonomy error implements.
type Error struct {
	category Category
	selector string
	phase    string
	message  string
	err      error
}

// New builds a taxonomy error. phase names the hint interceptor phase that
// failed ("deserialize"|"rpc"|"serialize"|"write"), per spec.md §4.3; it may
// be empty for errors that aren't phase-scoped (e.g. ConfigLoad).
func New(category Category, selector, phase, message string, wrapped error) *Error {
	return &Error{category: category, selector: selector, phase: phase, message: message, err: wrapped}
}

// Error implements error. The message names the selector and phase, per
// spec.md §4.3's "Any failure converts to a VM hint error whose message
// names the selector and phase".
func (e *Error) Error() string {
	switch {
	case e.selector != "" && e.phase != "":
		if e.err != nil {
			return fmt.Sprintf("%s[%s/%s]: %s: %v", e.category, e.selector, e.phase, e.message, e.err)
		}
		return fmt.Sprintf("%s[%s/%s]: %s", e.category, e.selector, e.phase, e.message)
	case e.selector != "":
		if e.err != nil {
			return fmt.Sprintf("%s[%s]: %s: %v", e.category, e.selector, e.message, e.err)
		}
		return fmt.Sprintf("%s[%s]: %s", e.category, e.selector, e.message)
	default:
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.category, e.message, e.err)
		}
		return fmt.Sprintf("%s: %s", e.category, e.message)
	}
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Category returns the taxonomy category.
func (e *Error) Category() Category {
	return e.category
}

// Code maps the taxonomy category to a stable grpc status code, giving every
// error a machine-checkable identity in addition to its message (see
// SPEC_FULL.md §7).
func (e *Error) Code() codes.Code {
	if c, ok := categoryCode[e.category]; ok {
		return c
	}
	return codes.Unknown
}

// Selector returns the cheat-code selector involved, if any.
func (e *Error) Selector() string {
	return e.selector
}

// Phase returns the interceptor phase involved, if any.
func (e *Error) Phase() string {
	return e.phase
}
