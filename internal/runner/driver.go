package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/params"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
)

// ProcedureFunc is a registered entry point for a native-language procedure:
// given the invocation (for queueing/executing/status/RNG access) and its
// coerced call arguments, it runs user code and returns a raw result value
// for return-value coercion.
//
// This replaces the source system's reflective "scan for public run(...)"
// discovery (§9, "Reflective entry-point discovery") with an explicit table
// populated at procedure install time. Scripted-language procedures are
// registered the same way, behind the same table: no hosted script
// interpreter is implemented (out of scope), so the source's native/script
// visitor distinction collapses to one function-pointer shape.
type ProcedureFunc func(ctx context.Context, inv *Invocation, args []any) (any, error)

// Runner drives stored-procedure invocations against a catalog and a set of
// external collaborators (site executor, fragment coordinator, ad-hoc
// planner). It is single-threaded: one Invoke call runs to completion
// before the next may start, per the concurrency model.
type Runner struct {
	Store       catalog.Store
	Executor    engine.SiteExecutor
	Coordinator engine.FragmentCoordinator
	Planner     catalog.AdHocPlanner
	Hashinator  engine.Hashinator

	// Procedures holds the explicit entry-point table for native/scripted
	// procedures; single-statement procedures never consult it.
	Procedures map[string]ProcedureFunc

	// TestMode forces every sub-batch through the fast path against
	// Executor, for use with [engine/refengine] (§4.4's HSQL-backed
	// short-circuit).
	TestMode bool

	Logger *slog.Logger
}

// Invoke runs one stored-procedure call end to end: reset, sysproc
// injection, argument coercion, user-code dispatch, failure
// classification, response assembly, and teardown (§4.7). It returns a
// non-nil error only when the failure classifies as FatalToServer — the
// caller must treat that as a site crash, not a client response.
func (r *Runner) Invoke(ctx context.Context, name string, txn engine.TransactionContext, args []any) (*runnererrors.Response, error) {
	proc, err := r.Store.Procedure(ctx, name)
	if err != nil {
		return runnererrors.Failure(runnererrors.Wrap(runnererrors.KindSqlError, err, "runner"),
			runnererrors.AppStatusNone, ""), nil
	}

	inv := newInvocation(proc, txn)

	if proc.System {
		args = params.InjectSysprocContext(inv, args)
	}

	coerced, err := params.Coerce(proc.ParamTypes, args)
	if err != nil {
		return runnererrors.Failure(classifyQueueingError(err), inv.appStatusCode, inv.appStatusString), nil
	}

	raw, invokeErr := r.invokeUserCode(ctx, inv, proc, []any(coerced))
	if invokeErr != nil {
		var classified *runnererrors.Error
		if errors.As(invokeErr, &classified) && classified.Kind() == runnererrors.KindFatalToServer {
			return nil, classified
		}

		return runnererrors.Failure(classifyInvocationError(invokeErr, proc.Name),
			inv.appStatusCode, inv.appStatusString), nil
	}

	results, retErr := convertReturn(raw)
	if retErr != nil {
		return runnererrors.Failure(classifyInvocationError(retErr, proc.Name),
			inv.appStatusCode, inv.appStatusString), nil
	}

	hash := inv.queue.Hash()
	hasHash := inv.queue.HashNonZero()

	return runnererrors.Success(results, hash, hasHash, inv.appStatusCode, inv.appStatusString), nil
}

// invokeUserCode dispatches to one of the three paths described in §4.7
// step 4: a single-statement procedure flushes its cached statement as a
// final batch; everything else calls its registered entry point.
func (r *Runner) invokeUserCode(ctx context.Context, inv *Invocation, proc *catalog.Procedure, args []any) (any, error) {
	if proc.SingleStatement != nil {
		if err := inv.queue.QueueDescriptor(proc.SingleStatement, nil, args); err != nil {
			return nil, err
		}

		tables, err := r.Execute(ctx, inv, true)
		if err != nil {
			return nil, err
		}

		out := make([]engine.Table, len(tables))
		copy(out, tables)

		return out, nil
	}

	fn, ok := r.Procedures[proc.Name]
	if !ok {
		return nil, fmt.Errorf("runner: no entry point registered for procedure %q", proc.Name)
	}

	return fn(ctx, inv, args)
}

// convertReturn applies the return-value coercion rules: nil becomes an
// empty array, a single Table becomes an array of one, a []Table is
// returned as-is (rejecting any nil element), an int64 synthesizes a
// one-row, one-column BIGINT table, and anything else is a ReturnTypeError.
func convertReturn(raw any) ([]engine.Table, error) {
	switch v := raw.(type) {
	case nil:
		return []engine.Table{}, nil

	case engine.Table:
		return []engine.Table{v}, nil

	case []engine.Table:
		return v, nil

	case []*engine.Table:
		out := make([]engine.Table, len(v))

		for i, t := range v {
			if t == nil {
				return nil, InvocationReturnError{Index: i}
			}

			out[i] = *t
		}

		return out, nil

	case int64:
		return []engine.Table{{Rows: [][]any{{v}}}}, nil

	default:
		return nil, ReturnTypeError{Got: raw}
	}
}
