// Package engine declares the external collaborators the runner drives but
// does not implement: the site execution context, the distributed fragment
// coordinator, and the partitioning hash function. Per the purpose-and-scope
// Non-goals, no SQL execution, transport, or partitioning logic lives here —
// only the narrow interfaces internal/runner depends on, plus one concrete,
// swappable test-mode implementation in [engine/refengine].
package engine

import (
	"context"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/params"
)

// Table is one result set, as produced by plan-fragment execution: an
// ordered list of rows, each an ordered list of column values.
type Table struct {
	Rows [][]any
}

// RowCount reports the number of rows in the table, treating a nil Table
// the same as an empty one.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// FragmentCall is one aggregator dispatch: the engine-assigned fragment id
// and the coerced parameter set to bind against it.
type FragmentCall struct {
	FragmentID int64
	Params     params.Set
}

// SiteExecutor is the local execution context that actually runs plan
// fragments against engine-resident data. The fast path calls it once per
// sub-batch; [engine/refengine] provides the HSQL-backed test-mode
// implementation, indistinguishable to the batch executor from a real site.
type SiteExecutor interface {
	// ExecutePlanFragments runs calls against the site identified by the
	// given transaction context, returning one result table per call, in
	// order.
	ExecutePlanFragments(ctx context.Context, txn TransactionContext, readOnly bool, calls []FragmentCall) ([]Table, error)
}

// TransactionContext is the immutable-for-the-call transaction handle the
// coordinator supplies at invocation setup.
type TransactionContext struct {
	TxnID    int64
	SPHandle int64
	UniqueID int64

	// Replay is set when this invocation replays a primary's recorded
	// decisions rather than making its own.
	Replay bool

	// Primary* hold the values TxnID/SPHandle/UniqueID accessors must
	// return instead of the local ones when Replay is true.
	PrimaryTxnID    int64
	PrimarySPHandle int64
	PrimaryUniqueID int64
}

// EffectiveUniqueID returns the unique id the invocation driver should
// expose to user code: the primary's recorded id on replay, the local one
// otherwise.
func (t TransactionContext) EffectiveUniqueID() int64 {
	if t.Replay {
		return t.PrimaryUniqueID
	}

	return t.UniqueID
}

// EffectiveTxnID mirrors EffectiveUniqueID for the transaction id.
func (t TransactionContext) EffectiveTxnID() int64 {
	if t.Replay {
		return t.PrimaryTxnID
	}

	return t.TxnID
}

// DependencyID names an expected intermediate result in the
// dependency-collection protocol. The high bit, set via [WithMultipartition],
// flags a dependency produced by a collector fragment running on every
// partition rather than a single aggregator.
type DependencyID int32

// multipartitionFlag is the high bit of a 32-bit dependency id.
const multipartitionFlag DependencyID = -1 << 31

// AggDepID is the reserved dependency id used internally by the aggregator
// protocol; never allocated to a statement.
const AggDepID DependencyID = 1

// WithMultipartition ORs the multipartition flag into id.
func WithMultipartition(id DependencyID) DependencyID {
	return id | multipartitionFlag
}

// IsMultipartition reports whether id carries the multipartition flag.
func IsMultipartition(id DependencyID) bool {
	return id&multipartitionFlag != 0
}

// DistributedFragmentCall is one entry of the distributed-fragment message
// the slow path builds: a plan hash to run on every partition (or, for an
// ad-hoc fragment, raw plan bytes alongside it), the dependency id its
// result is published under, and whether it is a replicated read scheduled
// on exactly one site.
type DistributedFragmentCall struct {
	PlanHash         catalog.PlanHash
	PlanBytes        []byte // non-nil only for ad-hoc, non-cataloged fragments
	Output           DependencyID
	IsReplicatedRead bool
	Params           params.Set
}

// LocalFragmentCall is one entry of the local-fragment message: an
// aggregator plan hash, its output dependency, and the input dependency it
// consumes from the distributed phase.
type LocalFragmentCall struct {
	PlanHash catalog.PlanHash
	Output   DependencyID
	Input    DependencyID
	Params   params.Set
}

// FragmentCoordinator is the distributed fragment router / initiator
// mailbox: it accepts the local and distributed fragment messages the slow
// path builds and drives the dependency-collection loop to completion.
type FragmentCoordinator interface {
	// RecursableRun registers depsToResume, installs local and
	// distributed work, and blocks until every dependency id has a
	// result, returning them keyed by id.
	RecursableRun(
		ctx context.Context,
		txn TransactionContext,
		depsToResume []DependencyID,
		local []LocalFragmentCall,
		localNonTransactional bool,
		distributed []DistributedFragmentCall,
	) (map[DependencyID]Table, error)
}

// Hashinator computes the partition a partitioning-column value belongs to,
// for the partition-consistency check described in the partition-check
// component.
type Hashinator interface {
	// Hash returns the partition id value routes to.
	Hash(value any) (int32, error)

	// Legacy reports whether this is a legacy hashinator, which disables
	// the partition check entirely (a documented workaround, not a design
	// goal — see DESIGN.md).
	Legacy() bool
}
