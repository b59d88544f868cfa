package runner

import (
	"context"
	"math/rand"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/queue"
)

// Invocation is the per-call state: one is created per [Runner.Invoke] and
// discarded at teardown. It is never shared across goroutines — a runner
// drives exactly one invocation to completion before starting the next.
type Invocation struct {
	Procedure *catalog.Procedure
	Txn       engine.TransactionContext

	queue *queue.PendingQueue

	batchIndex     int64
	seenFinalBatch bool

	appStatusCode   int8
	appStatusString string

	rng *rand.Rand

	depCounter engine.DependencyID

	done          bool
	needsRollback bool
}

// nextDepID allocates the next dependency id for the slow path, monotonic
// for the life of the invocation (i.e. per transaction).
func (inv *Invocation) nextDepID() engine.DependencyID {
	inv.depCounter++
	return inv.depCounter + engine.AggDepID
}

// appStatusNone mirrors runnererrors.AppStatusNone without importing that
// package here, to keep invocation.go free of the response-assembly layer.
const appStatusNone int8 = -128

// newInvocation resets per-call fields to their start-of-call values, per
// the reset step of the state machine: clears CRC (via a fresh queue),
// sets batchIndex to -1.
func newInvocation(proc *catalog.Procedure, txn engine.TransactionContext) *Invocation {
	return &Invocation{
		Procedure:     proc,
		Txn:           txn,
		queue:         queue.New(),
		batchIndex:    -1,
		appStatusCode: appStatusNone,
	}
}

// BatchIndex returns the current batch index, incremented once per
// executeSql dispatch and starting at -1 before the first.
func (inv *Invocation) BatchIndex() int64 { return inv.batchIndex }

// SeenFinalBatch reports whether a prior executeSql call was marked final.
func (inv *Invocation) SeenFinalBatch() bool { return inv.seenFinalBatch }

// SetAppStatusCode implements the user-code-visible setAppStatusCode call.
func (inv *Invocation) SetAppStatusCode(code int8) { inv.appStatusCode = code }

// SetAppStatusString implements the user-code-visible setAppStatusString call.
func (inv *Invocation) SetAppStatusString(s string) { inv.appStatusString = s }

// UniqueID returns the effective unique id for this call: the primary's
// recorded value on replay, the local one otherwise.
func (inv *Invocation) UniqueID() int64 { return inv.Txn.EffectiveUniqueID() }

// TransactionTime derives the call's timestamp from the high bits of the
// effective unique id, per the unique-id format (physical-clock timestamp
// in high bits, per-partition counter in low bits).
func (inv *Invocation) TransactionTime() int64 {
	return inv.UniqueID() >> 23 //nolint:mnd // low 23 bits are the per-partition counter, matching the unique-id format
}

// SeededRng returns the invocation's cached RNG, seeding it lazily from the
// unique id on first use. Every call within the invocation observes the
// same generator; it is discarded at teardown.
func (inv *Invocation) SeededRng() *rand.Rand {
	if inv.rng == nil {
		inv.rng = rand.New(rand.NewSource(inv.UniqueID())) //nolint:gosec // deterministic replay seed, not cryptographic use
	}

	return inv.rng
}

// QueueDescriptor queues a cataloged statement by descriptor reference.
func (inv *Invocation) QueueDescriptor(d *catalog.Descriptor, args []any) error {
	if inv.seenFinalBatch {
		return DoubleFinalBatchError{Context: "queueSql"}
	}

	return inv.queue.QueueDescriptor(d, nil, args)
}

// QueueDescriptorWithExpectation queues a cataloged statement, attaching an
// expectation checked against its result row count after dispatch.
func (inv *Invocation) QueueDescriptorWithExpectation(d *catalog.Descriptor, exp catalog.Expectation, args []any) error {
	if inv.seenFinalBatch {
		return DoubleFinalBatchError{Context: "queueSql"}
	}

	return inv.queue.QueueDescriptor(d, &exp, args)
}

// QueueAdHoc plans sql through r's ad-hoc planner and queues the resulting
// statement, the third queueing entry point alongside QueueDescriptor and
// QueueDescriptorWithExpectation (§4.3's queueSqlAdhoc). readOnly is taken
// from the invocation's own procedure, matching QueueDescriptor's implicit
// use of the enclosing procedure's context.
func (inv *Invocation) QueueAdHoc(ctx context.Context, r *Runner, sql string, args []any) error {
	if inv.seenFinalBatch {
		return DoubleFinalBatchError{Context: "queueSqlAdhoc"}
	}

	if r.Planner == nil {
		return &queue.PlannerError{Message: "no ad-hoc planner configured"}
	}

	var fragments *catalog.FragmentRepository
	if r.Store != nil {
		fragments = r.Store.Fragments()
	}

	loadFragment := func(f catalog.Fragment) (catalog.Fragment, error) { return f, nil }

	return inv.queue.QueueAdHoc(ctx, r.Planner, fragments, loadFragment, sql, inv.Procedure.ReadOnly, args)
}
