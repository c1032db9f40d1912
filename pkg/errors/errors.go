// Package errors provides structured error handling for the hot-reload runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindNotFound indicates a missing file or directory.
	KindNotFound
	// KindInvalidArgument indicates an unusable caller-supplied value.
	KindInvalidArgument
	// KindWatch indicates a filesystem watch error.
	KindWatch
	// KindReload indicates a control reload failure.
	KindReload
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	case KindWatch:
		return "watch"
	case KindReload:
		return "reload"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ReloadError represents a structured error in the hot-reload runtime.
type ReloadError struct {
	// Op is the operation that failed (e.g., "hotreload.FromSource").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Path is the filesystem path involved, if applicable.
	Path string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ReloadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s] path=%s: %v", e.Op, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *ReloadError in err's chain.
// It returns KindUnknown for nil and for errors without a kind.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*ReloadError); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "watch.dispatch").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ControlError represents a failure to reload a live control.
type ControlError struct {
	// TypeName is the type identity of the control that failed.
	TypeName string
	// SourceURI is the control's source-location identifier.
	SourceURI string
	// Path is the definition file path whose change triggered the reload.
	Path string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ControlError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic reloading %s (%s): %v", e.TypeName, e.SourceURI, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error reloading %s (%s): %v", e.TypeName, e.SourceURI, e.Err)
	}
	return fmt.Sprintf("unknown error reloading %s (%s)", e.TypeName, e.SourceURI)
}

func (e *ControlError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the hot-reload runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ReloadError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleControlError is called when a control reload fails.
	HandleControlError(err *ControlError)
}
