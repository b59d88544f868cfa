// Package catalog holds the immutable, post-compile description of
// installed SQL statements (the statement descriptor), the process-wide
// ref-counted plan-fragment repository, and the storage-agnostic [Store]
// interface a concrete catalog loader implements.
package catalog

import (
	"github.com/eoneil1942/sprunner/internal/determinism"
	"github.com/eoneil1942/sprunner/internal/params"
)

// PlanHash is the 20-byte plan hash the planner assigns to a compiled
// fragment.
type PlanHash [20]byte

// Fragment describes one plan fragment (aggregator or collector) of a
// statement: the engine-assigned fragment id, its plan hash, and whether it
// must run inside the enclosing transaction.
type Fragment struct {
	ID            int64
	Hash          PlanHash
	Transactional bool

	// PlanBytes is non-nil only for ad-hoc (non-cataloged) fragments; it is
	// submitted alongside Hash via the "addCustomFragment" dispatch variant.
	PlanBytes []byte
}

// Descriptor is the immutable, post-compile description of one SQL
// statement: the aggregator fragment, an optional collector fragment
// (multi-partition statements only), the parameter type vector, and the
// pre-computed properties the runner needs without re-parsing SQL on every
// call.
//
// A Descriptor is created when a procedure is installed and is retained
// for the life of its catalog generation; it is never mutated afterward.
type Descriptor struct {
	SQL string

	Aggregator Fragment
	// Collector is nil for single-fragment (read-only, single-partition)
	// statements and non-nil for two-fragment, multi-partition statements.
	Collector *Fragment

	ParamTypes []params.Type

	ReadOnly           bool
	ReplicatedTableDML bool
	sqlCRC             uint32
}

// NewDescriptor builds a Descriptor, pre-computing the CRC32 of sql used by
// the determinism accumulator.
func NewDescriptor(sql string, agg Fragment, collector *Fragment, types []params.Type, readOnly, replicatedDML bool) *Descriptor {
	return &Descriptor{
		SQL:                sql,
		Aggregator:         agg,
		Collector:          collector,
		ParamTypes:         types,
		ReadOnly:           readOnly,
		ReplicatedTableDML: replicatedDML,
		sqlCRC:             determinism.SQLCRC(sql),
	}
}

// SQLCRC returns the descriptor's pre-computed SQL CRC32, used as the
// descriptor-identity half of the determinism hash input.
func (d *Descriptor) SQLCRC() uint32 {
	return d.sqlCRC
}

// TwoFragment reports whether this statement has a collector fragment and
// therefore requires the slow (multi-partition) path.
func (d *Descriptor) TwoFragment() bool {
	return d.Collector != nil
}

// InstallWidenedTypes rewrites d's declared parameter types using the
// install-time widening rule (narrow integers to BIGINT, NUMERIC to FLOAT).
// Called once, by the catalog loader, for single-statement procedures.
func (d *Descriptor) InstallWidenedTypes() {
	d.ParamTypes = params.WidenDeclaredTypes(d.ParamTypes)
}
