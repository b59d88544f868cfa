package runnererrors

import (
	"fmt"
	"log/slog"

	"github.com/eoneil1942/sprunner/internal/engine"
)

// AppStatusNone is the app-status-code sentinel a procedure that never
// calls setAppStatusCode leaves in place.
const AppStatusNone int8 = -128

// Table is one result set, aliasing [engine.Table]: the runner never
// interprets its contents beyond counting rows for expectations and
// Hash/null-result coercion.
type Table = engine.Table

// Response is the ClientResponse envelope every invocation produces
// exactly one of, per the external-interfaces contract: status, optional
// application-level status, result tables, message, and the determinism
// hash when one was computed and non-zero.
type Response struct {
	Status Status

	AppStatusCode   int8
	AppStatusString string

	Results []Table
	Message string

	// Hash is valid only when HasHash is true: a successful write
	// invocation whose determinism accumulator folded in at least one
	// statement.
	Hash    int32
	HasHash bool
}

// Success builds a successful Response with the given results, attaching
// hash as the determinism CRC when hasHash is set, and carrying the
// invocation's app status (§4.7 step 6, §6's envelope) through unchanged.
func Success(results []Table, hash uint32, hasHash bool, appStatusCode int8, appStatusString string) *Response {
	r := &Response{
		Status:          StatusSuccess,
		AppStatusCode:   appStatusCode,
		AppStatusString: appStatusString,
		Results:         results,
	}

	if hasHash {
		r.Hash = int32(hash) //nolint:gosec // reinterpreting bits, not narrowing a value
		r.HasHash = true
	}

	return r
}

// Failure builds a Response from a classified Error, carrying its status
// and filtered-stack message, plus whatever app status the invocation had
// set before it failed.
func Failure(err *Error, appStatusCode int8, appStatusString string) *Response {
	return &Response{
		Status:          err.Status(),
		AppStatusCode:   appStatusCode,
		AppStatusString: appStatusString,
		Message:         fmt.Sprintf("%+v", err),
	}
}

// LogValue implements [slog.LogValuer].
func (r *Response) LogValue() slog.Value {
	if r.Message == "" {
		return slog.StringValue(fmt.Sprintf("%s (%d result sets)", r.Status, len(r.Results)))
	}

	return slog.StringValue(fmt.Sprintf("%s: %s", r.Status, r.Message))
}
