package runner

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/catalog/memstore"
	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/params"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
)

// stubCoordinator records the messages the slow path built and answers every
// requested dependency with a fixed one-row table, so tests can inspect the
// message shape without a real distributed fragment router.
type stubCoordinator struct {
	gotDepsToResume          []engine.DependencyID
	gotLocal                 []engine.LocalFragmentCall
	gotDistributed           []engine.DistributedFragmentCall
	gotLocalNonTransactional bool
}

func (c *stubCoordinator) RecursableRun(
	_ context.Context,
	_ engine.TransactionContext,
	depsToResume []engine.DependencyID,
	local []engine.LocalFragmentCall,
	localNonTransactional bool,
	distributed []engine.DistributedFragmentCall,
) (map[engine.DependencyID]engine.Table, error) {
	c.gotDepsToResume = depsToResume
	c.gotLocal = local
	c.gotDistributed = distributed
	c.gotLocalNonTransactional = localNonTransactional

	out := make(map[engine.DependencyID]engine.Table, len(depsToResume))
	for _, d := range depsToResume {
		out[d] = engine.Table{Rows: [][]any{{int64(1)}}}
	}

	return out, nil
}

func twoFragmentDescriptor(sql string, aggID, collID int64, readOnly bool, types []params.Type) *catalog.Descriptor {
	coll := catalog.Fragment{ID: collID}
	return catalog.NewDescriptor(sql, catalog.Fragment{ID: aggID}, &coll, types, readOnly, false)
}

// TestSlowPathTwoFragmentMultiPartition exercises the multi-statement,
// two-fragment, multi-partition batch: a read (SELECT) followed by a write
// (UPDATE), both collector+aggregator statements, dispatched through one
// final executeSql call.
func TestSlowPathTwoFragmentMultiPartition(t *testing.T) {
	ctx := context.Background()

	selectDesc := twoFragmentDescriptor("select id from widgets", 10, 11, true, nil)
	updateDesc := twoFragmentDescriptor("update widgets set name = ?", 20, 21, false,
		[]params.Type{params.TypeString})

	store := memstore.New()
	store.Install(&catalog.Procedure{
		Name:            "Everywhere",
		SinglePartition: false,
	}, nil)

	coord := &stubCoordinator{}

	r := &Runner{
		Store:       store,
		Coordinator: coord,
		Procedures:  map[string]ProcedureFunc{},
		Logger:      slog.Default(),
	}

	r.Procedures["Everywhere"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		if err := inv.QueueDescriptor(selectDesc, nil); err != nil {
			return nil, err
		}

		if err := inv.QueueDescriptor(updateDesc, []any{"new-name"}); err != nil {
			return nil, err
		}

		return r.Execute(ctx, inv, true)
	}

	resp, err := r.Invoke(ctx, "Everywhere", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	require.Equal(t, runnererrors.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 2)

	require.Len(t, coord.gotDepsToResume, 2)
	require.Len(t, coord.gotDistributed, 2)
	require.Len(t, coord.gotLocal, 2)

	for _, d := range coord.gotDistributed {
		assert.False(t, d.IsReplicatedRead)
	}

	inputs := []engine.DependencyID{coord.gotLocal[0].Input, coord.gotLocal[1].Input}
	outputs := []engine.DependencyID{coord.gotDistributed[0].Output, coord.gotDistributed[1].Output}
	assert.ElementsMatch(t, inputs, outputs)

	for _, d := range coord.gotDepsToResume {
		assert.False(t, engine.IsMultipartition(d))
	}

	for _, o := range outputs {
		assert.True(t, engine.IsMultipartition(o))
	}

	assert.True(t, coord.gotLocalNonTransactional)

	// The SELECT is read-only and never folds into the determinism hash;
	// only the UPDATE does.
	assert.True(t, resp.HasHash)
}
