package runner

import (
	"github.com/eoneil1942/sprunner/internal/catalog"
)

// CheckPartition implements §4.8: before first execution, asks whether the
// currently assigned partition is consistent with the invocation's
// partitioning parameter. Multi-partition procedures and legacy hashinators
// are never checked (the latter is a documented workaround carried forward
// from the source system's legacy-cluster compatibility path, not a design
// goal — see DESIGN.md). Hashing failures are logged as warnings and
// treated as a mismatch, so the caller restarts the transaction rather than
// risk routing to the wrong partition.
func (r *Runner) CheckPartition(proc *catalog.Procedure, args []any, localPartition int32) bool {
	if !proc.SinglePartition || r.Hashinator == nil || r.Hashinator.Legacy() {
		return true
	}

	col := proc.PartitionColumn
	if col < 0 || col >= len(args) {
		return true
	}

	partition, err := r.Hashinator.Hash(args[col])
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("partition hash failed", "procedure", proc.Name, "error", err)
		}

		return false
	}

	return partition == localPartition
}
