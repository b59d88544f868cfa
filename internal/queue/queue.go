// Package queue implements the queued statement and the pending queue:
// a statement descriptor bound to a concrete, coerced parameter set, plus
// an optional expectation and a memoized serialized-params buffer that
// feeds determinism hashing. Dispatch binds the coerced parameter set, not
// this buffer.
package queue

import (
	"context"
	"fmt"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/determinism"
	"github.com/eoneil1942/sprunner/internal/params"
)

// Statement is a statement descriptor bound to a concrete parameter set.
//
// Descriptor is shared, never owned by the Statement. Params and the
// memoized SerializedParams buffer are exclusively owned and destroyed at
// batch clearance.
type Statement struct {
	Descriptor *catalog.Descriptor
	Params     params.Set

	Expectation    *catalog.Expectation
	hasExpectation bool

	// SerializedParams is populated the first time it is needed — either
	// by the determinism accumulator (for writes) or, lazily, by a path
	// that needs it and finds it unset (ad-hoc reads, for example).
	SerializedParams []byte
}

// HasExpectation reports whether an expectation is attached.
func (s *Statement) HasExpectation() bool { return s.hasExpectation }

// Serialize returns the statement's serialized parameters, computing and
// memoizing them on first use. Subsequent calls reuse the same buffer,
// satisfying the invariant that a non-read-only statement's params are
// serialized exactly once.
func (s *Statement) Serialize() ([]byte, error) {
	if s.SerializedParams != nil {
		return s.SerializedParams, nil
	}

	buf, err := params.SerializeParams(s.Descriptor.ParamTypes, s.Params)
	if err != nil {
		return nil, err
	}

	s.SerializedParams = buf

	return buf, nil
}

// NullStatementError is returned when a nil descriptor is queued.
type NullStatementError struct{}

func (NullStatementError) Error() string { return "NullPointerException: statement descriptor is null" }

// PendingQueue is the per-invocation ordered sequence of queued statements,
// plus the determinism accumulator that runs alongside it.
//
// It is never shared across threads: an invocation runs on exactly one
// goroutine, and the queue's lifetime is exactly one invocation between
// resets.
type PendingQueue struct {
	stmts []*Statement
	acc   *determinism.Accumulator
}

// New returns an empty PendingQueue.
func New() *PendingQueue {
	return &PendingQueue{acc: determinism.New()}
}

// Reset clears the queue and the determinism accumulator, for reuse across
// invocations on the same runner.
func (q *PendingQueue) Reset() {
	q.stmts = nil
	q.acc.Reset()
}

// Len returns the number of statements currently pending.
func (q *PendingQueue) Len() int { return len(q.stmts) }

// Hash returns the determinism accumulator's current CRC32C.
func (q *PendingQueue) Hash() uint32 { return q.acc.Sum() }

// HashNonZero reports whether the accumulator has folded in at least one
// write statement with a non-zero resulting CRC.
func (q *PendingQueue) HashNonZero() bool { return q.acc.NonZero() }

// Drain removes and returns the first n statements, in queueing order,
// leaving the remainder in the queue. Used by the batch executor to carve
// sub-batches out of an oversized queue without exposing a mutable view
// into the backing slice.
func (q *PendingQueue) Drain(n int) []*Statement {
	if n > len(q.stmts) {
		n = len(q.stmts)
	}

	out := make([]*Statement, n)
	copy(out, q.stmts[:n])
	q.stmts = q.stmts[n:]

	return out
}

// QueueDescriptor coerces args against descriptor's parameter types, wraps
// them in a Statement, folds write statements into the determinism
// accumulator, and appends to the queue.
func (q *PendingQueue) QueueDescriptor(descriptor *catalog.Descriptor, expectation *catalog.Expectation, args []any) error {
	if descriptor == nil {
		return NullStatementError{}
	}

	set, err := params.Coerce(descriptor.ParamTypes, args)
	if err != nil {
		return err
	}

	stmt := &Statement{Descriptor: descriptor, Params: set}
	if expectation != nil {
		stmt.Expectation = expectation
		stmt.hasExpectation = true
	}

	if err := q.accumulate(stmt); err != nil {
		return err
	}

	q.stmts = append(q.stmts, stmt)

	return nil
}

// PlannerError wraps a message the ad-hoc planner reported.
type PlannerError struct{ Message string }

func (e *PlannerError) Error() string { return e.Message }

// DmlFromReadOnlyError is returned when a read-only procedure's ad-hoc SQL
// planned to a writing statement.
type DmlFromReadOnlyError struct{}

func (DmlFromReadOnlyError) Error() string {
	return "Server Internal Error: Write statement is not allowed from a read-only procedure."
}

// ExtractedParamsConflictError is returned when the planner extracted
// constant parameters from ad-hoc SQL and the caller also supplied
// arguments for that statement.
type ExtractedParamsConflictError struct {
	CallerArgs int
	ExtractedN int
}

func (e *ExtractedParamsConflictError) Error() string {
	return fmt.Sprintf(
		"Number of arguments provided was %d where %d was expected for statement",
		e.CallerArgs, e.ExtractedN,
	)
}

// QueueAdHoc delegates sql to planner, then coerces, accumulates, and
// appends the resulting statement, exactly as QueueDescriptor does for a
// cataloged one. readOnly is the enclosing procedure's read-only flag.
func (q *PendingQueue) QueueAdHoc(
	ctx context.Context,
	planner catalog.AdHocPlanner,
	fragments *catalog.FragmentRepository,
	loadFragment func(catalog.Fragment) (catalog.Fragment, error),
	sql string,
	readOnly bool,
	args []any,
) error {
	plan, err := planner.PlanAdHoc(ctx, sql, readOnly)
	if err != nil {
		return &PlannerError{Message: err.Error()}
	}

	d := plan.Descriptor

	if readOnly && !d.ReadOnly {
		return DmlFromReadOnlyError{}
	}

	if plan.ExtractedParamCount > 0 {
		if len(args) != 0 {
			return &ExtractedParamsConflictError{CallerArgs: len(args), ExtractedN: plan.ExtractedParamCount}
		}

		args = make([]any, plan.ExtractedParamCount)
	}

	if fragments != nil {
		agg, err := fragments.LoadOrAddRef(d.Aggregator.Hash, func() (catalog.Fragment, error) {
			return loadFragment(d.Aggregator)
		})
		if err != nil {
			return err
		}

		d.Aggregator = agg

		if d.Collector != nil {
			coll, err := fragments.LoadOrAddRef(d.Collector.Hash, func() (catalog.Fragment, error) {
				return loadFragment(*d.Collector)
			})
			if err != nil {
				return err
			}

			d.Collector = &coll
		}
	}

	return q.QueueDescriptor(d, nil, args)
}

// accumulate folds stmt into the determinism accumulator if it is a write,
// memoizing the serialized params buffer for reuse by dispatch.
func (q *PendingQueue) accumulate(stmt *Statement) error {
	if stmt.Descriptor.ReadOnly {
		return nil
	}

	buf, err := stmt.Serialize()
	if err != nil {
		return determinism.ErrSerializationFailed(err)
	}

	q.acc.Add(stmt.Descriptor.SQLCRC(), buf)

	return nil
}
