package runner

import (
	"context"

	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/queue"
)

// slowPath builds the local and distributed fragment messages for a
// multi-partition sub-batch and drives the dependency-collection loop to
// completion, per §4.6.
func (r *Runner) slowPath(ctx context.Context, inv *Invocation, stmts []*queue.Statement, finalSubBatch bool) ([]engine.Table, error) {
	depsToResume := make([]engine.DependencyID, len(stmts))
	distributed := make([]engine.DistributedFragmentCall, 0, len(stmts))
	local := make([]engine.LocalFragmentCall, 0, len(stmts))

	localNonTransactional := true

	for i, s := range stmts {
		d := inv.nextDepID()
		depsToResume[i] = d

		if _, err := s.Serialize(); err != nil {
			return nil, err
		}

		if !s.Descriptor.TwoFragment() {
			call := engine.DistributedFragmentCall{
				PlanHash:         s.Descriptor.Aggregator.Hash,
				Output:           d,
				IsReplicatedRead: true,
				Params:           s.Params,
			}

			if s.Descriptor.Aggregator.PlanBytes != nil {
				call.PlanBytes = s.Descriptor.Aggregator.PlanBytes
			}

			distributed = append(distributed, call)

			continue
		}

		o := engine.WithMultipartition(inv.nextDepID())

		collector := s.Descriptor.Collector

		distCall := engine.DistributedFragmentCall{
			PlanHash:         collector.Hash,
			Output:           o,
			IsReplicatedRead: false,
			Params:           s.Params,
		}
		if collector.PlanBytes != nil {
			distCall.PlanBytes = collector.PlanBytes
		}

		distributed = append(distributed, distCall)

		local = append(local, engine.LocalFragmentCall{
			PlanHash: s.Descriptor.Aggregator.Hash,
			Output:   d,
			Input:    o,
			Params:   s.Params,
		})

		if s.Descriptor.Aggregator.Transactional {
			localNonTransactional = false
		}
	}

	results, err := r.Coordinator.RecursableRun(
		ctx, inv.Txn, depsToResume, local, localNonTransactional && finalSubBatch, distributed,
	)
	if err != nil {
		return nil, err
	}

	out := make([]engine.Table, len(stmts))

	for i, d := range depsToResume {
		out[i] = results[d]
	}

	return out, nil
}
