// Package testutil provides small helpers shared by this module's tests,
// following the same shape as the teacher's testutil package: a context
// bound to test cleanup, and a logger that routes through [testing.T.Log].
package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// Ctx returns a context that is canceled when the test finishes.
func Ctx(t testing.TB) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}

// Logger returns a [*slog.Logger] that writes to the test's log,
// so failures show log output inline instead of interleaved on stdout.
func Logger(t testing.TB) *slog.Logger {
	t.Helper()

	return slogt.New(t)
}
