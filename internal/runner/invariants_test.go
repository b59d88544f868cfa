package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/params"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
)

// TestBatchIndexMonotonic checks that batchIndex counts executeSql/Execute
// dispatches one-for-one, starting at -1 before the first call.
func TestBatchIndexMonotonic(t *testing.T) {
	r, store, _ := newTestRunner(t)

	store.Install(&catalog.Procedure{
		Name:            "ThreeBatches",
		SinglePartition: true,
	}, nil)

	var seen []int64

	r.Procedures["ThreeBatches"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		seen = append(seen, inv.BatchIndex())

		if _, err := r.Execute(ctx, inv, false); err != nil {
			return nil, err
		}

		seen = append(seen, inv.BatchIndex())

		if _, err := r.Execute(ctx, inv, false); err != nil {
			return nil, err
		}

		seen = append(seen, inv.BatchIndex())

		return r.Execute(ctx, inv, true)
	}

	resp, err := r.Invoke(context.Background(), "ThreeBatches", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	require.Equal(t, runnererrors.StatusSuccess, resp.Status)

	assert.Equal(t, []int64{-1, 0, 1}, seen)
}

// TestPendingQueueEmptyAfterException checks that a queueing failure inside
// user code leaves no residue that could leak into a later invocation on the
// same Runner: each call builds a fresh [Invocation] and its own pending
// queue, so a failed call can never poison an unrelated one that follows it.
func TestPendingQueueEmptyAfterException(t *testing.T) {
	r, store, eng := newTestRunner(t)

	insert := installSingleStatement(t, store, eng, "Insert", "insert into widgets (id) values (?)", false,
		[]params.Type{params.TypeBigInt})

	store.Install(&catalog.Procedure{
		Name:            "Bad",
		SinglePartition: true,
	}, nil)

	r.Procedures["Bad"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		if err := inv.QueueDescriptor(insert, []any{int64(1)}); err != nil {
			return nil, err
		}

		if err := inv.QueueDescriptor(insert, []any{int64(2)}); err != nil {
			return nil, err
		}

		return nil, errBoom{}
	}

	resp, err := r.Invoke(context.Background(), "Bad", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, runnererrors.StatusUnexpectedFailure, resp.Status)

	resp2, err := r.Invoke(context.Background(), "Insert", engine.TransactionContext{UniqueID: 2}, []any{int64(3)})
	require.NoError(t, err)
	assert.Equal(t, runnererrors.StatusSuccess, resp2.Status)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// TestInvokeCarriesAppStatusThrough checks that a procedure's
// setAppStatusCode/setAppStatusString calls reach the ClientResponse on
// both the success and failure paths, instead of being silently dropped.
func TestInvokeCarriesAppStatusThrough(t *testing.T) {
	r, store, _ := newTestRunner(t)

	store.Install(&catalog.Procedure{Name: "Ok", SinglePartition: true}, nil)
	store.Install(&catalog.Procedure{Name: "Bad", SinglePartition: true}, nil)

	r.Procedures["Ok"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		inv.SetAppStatusCode(42)
		inv.SetAppStatusString("halfway there")

		return nil, nil
	}

	r.Procedures["Bad"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		inv.SetAppStatusCode(7)
		inv.SetAppStatusString("failed partway")

		return nil, errBoom{}
	}

	okResp, err := r.Invoke(context.Background(), "Ok", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, runnererrors.StatusSuccess, okResp.Status)
	assert.Equal(t, int8(42), okResp.AppStatusCode)
	assert.Equal(t, "halfway there", okResp.AppStatusString)

	badResp, err := r.Invoke(context.Background(), "Bad", engine.TransactionContext{UniqueID: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, runnererrors.StatusUnexpectedFailure, badResp.Status)
	assert.Equal(t, int8(7), badResp.AppStatusCode)
	assert.Equal(t, "failed partway", badResp.AppStatusString)
}

// stubAdHocPlanner implements [catalog.AdHocPlanner] for one fixed plan.
type stubAdHocPlanner struct {
	plan *catalog.AdHocPlan
	err  error
}

func (p *stubAdHocPlanner) PlanAdHoc(_ context.Context, _ string, _ bool) (*catalog.AdHocPlan, error) {
	return p.plan, p.err
}

// TestQueueAdHocReachableFromUserCode checks that Invocation.QueueAdHoc
// actually plumbs the runner's planner through, so queueSqlAdhoc has a
// working entry point for procedures, not just the queue package's own
// unit tests.
func TestQueueAdHocReachableFromUserCode(t *testing.T) {
	r, store, eng := newTestRunner(t)

	require.NoError(t, eng.Exec(context.Background(), "insert into widgets (id, name) values (1, 'a')"))

	d := catalog.NewDescriptor("select count(*) from widgets", catalog.Fragment{ID: 99}, nil,
		nil, true, false)
	eng.RegisterFragment(d)

	r.Planner = &stubAdHocPlanner{plan: &catalog.AdHocPlan{Descriptor: d}}

	store.Install(&catalog.Procedure{Name: "AdHocRead", SinglePartition: true, ReadOnly: true}, nil)

	r.Procedures["AdHocRead"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		if err := inv.QueueAdHoc(ctx, r, "select count(*) from widgets", nil); err != nil {
			return nil, err
		}

		return r.Execute(ctx, inv, true)
	}

	resp, err := r.Invoke(context.Background(), "AdHocRead", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	require.Equal(t, runnererrors.StatusSuccess, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), resp.Results[0].Rows[0][0])
}

// TestQueueAdHocWithoutPlannerConfigured checks the no-planner guard
// surfaces as a planner error rather than a nil-pointer panic.
func TestQueueAdHocWithoutPlannerConfigured(t *testing.T) {
	r, store, _ := newTestRunner(t)

	store.Install(&catalog.Procedure{Name: "NoPlanner", SinglePartition: true, ReadOnly: true}, nil)

	r.Procedures["NoPlanner"] = func(ctx context.Context, inv *Invocation, args []any) (any, error) {
		return nil, inv.QueueAdHoc(ctx, r, "select 1", nil)
	}

	resp, err := r.Invoke(context.Background(), "NoPlanner", engine.TransactionContext{UniqueID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, runnererrors.StatusGracefulFailure, resp.Status)
}
