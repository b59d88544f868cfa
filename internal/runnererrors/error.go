package runnererrors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Error is the closed, client-visible error envelope: a [Kind], the
// formatted message the client sees (already carrying the status prefix),
// a filtered call stack, and the underlying cause, if any.
//
// Modeled on the teacher's mongoerrors.Error: a status/name/message/cause
// envelope built through a single constructor, never by direct struct
// literal outside this package.
type Error struct {
	kind    Kind
	message string
	frames  []runtime.Frame
	cause   error

	// status and hasStatus override statusPrefix's fixed status for kinds
	// whose status is caller-supplied (currently only
	// [KindExpectedProcedureError]; see [NewExpectedProcedureError]).
	status    Status
	hasStatus bool
}

// New builds an Error of kind, formatting message with args, and capturing
// the caller's stack filtered to frames inside pkgPrefix (the procedure's
// own package, for UserAbort; the runner's packages otherwise).
func New(kind Kind, pkgPrefix, format string, args ...any) *Error {
	return &Error{
		kind:    kind,
		message: statusPrefix[kind].prefix + ": " + fmt.Sprintf(format, args...),
		frames:  captureFrames(pkgPrefix),
	}
}

// Wrap builds an Error of kind around cause, preserving cause for
// [errors.Unwrap] and [errors.Is] chains.
func Wrap(kind Kind, cause error, pkgPrefix string) *Error {
	return &Error{
		kind:    kind,
		message: statusPrefix[kind].prefix + ": " + cause.Error(),
		frames:  captureFrames(pkgPrefix),
		cause:   cause,
	}
}

// NewExpectedProcedureError builds a [KindExpectedProcedureError] around
// cause, reporting status as the client-visible status rather than looking
// one up by kind (§4.9: "expected-procedure error" maps to a
// caller-supplied status). The message unwraps cause by one layer before
// formatting, so a cause that itself wraps the HSQL backend's own error
// surfaces that inner error directly rather than the wrapping layer around
// it; causes with nothing to unwrap are used as-is.
func NewExpectedProcedureError(status Status, cause error, pkgPrefix string) *Error {
	inner := cause
	if u := errors.Unwrap(cause); u != nil {
		inner = u
	}

	return &Error{
		kind:      KindExpectedProcedureError,
		status:    status,
		hasStatus: true,
		message:   statusPrefix[KindExpectedProcedureError].prefix + ": " + inner.Error(),
		frames:    captureFrames(pkgPrefix),
		cause:     cause,
	}
}

// Kind returns the error's classified kind.
func (e *Error) Kind() Kind { return e.kind }

// Status returns the ClientResponse status this error carries: the
// caller-supplied one for [KindExpectedProcedureError], the kind's fixed
// one otherwise.
func (e *Error) Status() Status {
	if e.hasStatus {
		return e.status
	}

	return statusPrefix[e.kind].status
}

// Frames returns the filtered call stack captured at construction.
func (e *Error) Frames() []runtime.Frame { return e.frames }

// Error implements the error interface.
func (e *Error) Error() string { return e.message }

// Unwrap implements the errors.Unwrap protocol.
func (e *Error) Unwrap() error { return e.cause }

// LogValue implements [slog.LogValuer] so dispatcher logs stay compact
// regardless of how many stack frames were captured.
func (e *Error) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%s: %s (%d frames)", e.kind, e.message, len(e.frames)))
}

// Format implements fmt.Formatter, matching the teacher's Error: %v and %s
// print the message, %+v additionally prints the filtered stack.
func (e *Error) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			fmt.Fprint(f, e.message)

			for _, fr := range e.frames {
				fmt.Fprintf(f, "\n\t%s\n\t\t%s:%d", fr.Function, fr.File, fr.Line)
			}

			return
		}

		fmt.Fprint(f, e.message)
	case 's':
		fmt.Fprint(f, e.message)
	default:
		fmt.Fprintf(f, "%%!%c(runnererrors.Error=%s)", verb, e.message)
	}
}

// FatalToServer reports whether err (or any error it wraps) classifies to
// [KindFatalToServer], the one kind the dispatcher never converts to a
// ClientResponse.
func FatalToServer(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == KindFatalToServer
	}

	return false
}

// captureFrames walks the call stack starting above this package, keeping
// only frames whose function name contains pkgPrefix, mirroring the
// scenario requirement that a UserAbort's stack contain only frames inside
// the procedure's own class.
func captureFrames(pkgPrefix string) []runtime.Frame {
	var pcs [32]uintptr

	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var out []runtime.Frame

	for {
		fr, more := frames.Next()

		if pkgPrefix == "" || strings.Contains(fr.Function, pkgPrefix) {
			out = append(out, fr)
		}

		if !more {
			break
		}
	}

	return out
}
