package runner

import (
	"context"

	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/queue"
)

// Execute flushes inv's pending queue, splitting it into sub-batches of at
// most [MaxBatchSize], dispatching each via the fast or slow path, and
// concatenating their result arrays back into one array aligned to
// queueing order. It always clears the queue before returning, including
// on error.
func (r *Runner) Execute(ctx context.Context, inv *Invocation, isFinal bool) ([]engine.Table, error) {
	if inv.seenFinalBatch {
		return nil, DoubleFinalBatchError{Context: "executeSql"}
	}

	inv.seenFinalBatch = isFinal
	inv.batchIndex++

	var (
		allStmts   []*queue.Statement
		allResults []engine.Table
	)

	defer func() {
		inv.queue.Drain(inv.queue.Len())
	}()

	for inv.queue.Len() > 0 {
		remaining := inv.queue.Len()

		n := remaining
		if n > MaxBatchSize {
			n = MaxBatchSize
		}

		finalSubBatch := isFinal && n == remaining

		stmts := inv.queue.Drain(n)

		sub, err := r.dispatchSubBatch(ctx, inv, stmts, finalSubBatch)
		if err != nil {
			return nil, err
		}

		allStmts = append(allStmts, stmts...)
		allResults = append(allResults, sub...)
	}

	for i, stmt := range allStmts {
		if !stmt.HasExpectation() {
			continue
		}

		if err := stmt.Expectation.Check(allResults[i].RowCount()); err != nil {
			return nil, &ExpectationMismatchError{Index: i, Cause: err}
		}
	}

	return allResults, nil
}

// dispatchSubBatch chooses between the fast and slow path for one
// sub-batch: fast if the procedure is single-partition and every statement
// in the sub-batch has no collector fragment, or if the runner is
// configured in embedded test mode (§4.4's HSQL-backed short-circuit).
// Slow otherwise.
func (r *Runner) dispatchSubBatch(ctx context.Context, inv *Invocation, stmts []*queue.Statement, finalSubBatch bool) ([]engine.Table, error) {
	if r.TestMode || (inv.Procedure.SinglePartition && allSinglePartition(stmts)) {
		return r.fastPath(ctx, inv, stmts)
	}

	return r.slowPath(ctx, inv, stmts, finalSubBatch)
}

func allSinglePartition(stmts []*queue.Statement) bool {
	for _, s := range stmts {
		if s.Descriptor.TwoFragment() {
			return false
		}
	}

	return true
}
