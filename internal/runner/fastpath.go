package runner

import (
	"context"
	"fmt"

	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/queue"
)

// fastPath packs stmts into parallel fragment-id/parameter calls and
// invokes the site executor once, per §4.5: single-partition dispatch in
// one engine call. Writes reuse their memoized serialized params only for
// the determinism accumulator; the raw coerced parameter set is what the
// site executor actually binds.
func (r *Runner) fastPath(ctx context.Context, inv *Invocation, stmts []*queue.Statement) ([]engine.Table, error) {
	calls := make([]engine.FragmentCall, len(stmts))

	for i, s := range stmts {
		if s.Descriptor.TwoFragment() {
			return nil, fmt.Errorf("fast path: statement %d has a collector fragment, slow path required", i)
		}

		calls[i] = engine.FragmentCall{
			FragmentID: s.Descriptor.Aggregator.ID,
			Params:     s.Params,
		}
	}

	return r.Executor.ExecutePlanFragments(ctx, inv.Txn, inv.Procedure.ReadOnly, calls)
}
