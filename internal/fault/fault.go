// Package fault defines the structured error type shared by the platform
// and persistence layers. Every expected failure carries a Kind so callers
// can branch on the class of failure instead of matching message text.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an expected failure.
type Kind int

const (
	// KindUnknown is the zero value; errors not produced by this package.
	KindUnknown Kind = iota
	// Unsupported marks operations attempted on a platform lacking the capability.
	Unsupported
	// InvalidHandle marks a window or hotkey identifier failing precondition checks.
	InvalidHandle
	// InvalidParameter marks caller-supplied values rejected before any OS call.
	InvalidParameter
	// NativeCallFailed marks an OS call that returned failure.
	NativeCallFailed
	// Conflict marks duplicate hotkey ids, key combinations, or layout names.
	Conflict
	// NotFound marks references to ids with no matching record.
	NotFound
	// StoreUnavailable marks operations against a disconnected store.
	StoreUnavailable
	// IOFailure marks failed backup/restore file operations.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case InvalidHandle:
		return "invalid handle"
	case InvalidParameter:
		return "invalid parameter"
	case NativeCallFailed:
		return "native call failed"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not found"
	case StoreUnavailable:
		return "store unavailable"
	case IOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain. Returns KindUnknown for
// nil errors and errors not produced by this package.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain contains a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
