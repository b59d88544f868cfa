package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/params"
)

func bigintDescriptor(sql string, readOnly bool) *catalog.Descriptor {
	return catalog.NewDescriptor(sql, catalog.Fragment{ID: 1}, nil, []params.Type{params.TypeBigInt}, readOnly, false)
}

func TestQueueDescriptorNullStatement(t *testing.T) {
	q := New()
	err := q.QueueDescriptor(nil, nil, []any{int64(1)})
	assert.ErrorIs(t, err, NullStatementError{})
}

func TestQueueDescriptorArityMismatchPropagates(t *testing.T) {
	q := New()
	d := bigintDescriptor("select * from t where id = ?", true)

	err := q.QueueDescriptor(d, nil, []any{int64(1), int64(2)})
	require.Error(t, err)

	var arityErr *params.ArityMismatchError
	assert.ErrorAs(t, err, &arityErr)
}

func TestQueueDescriptorReadOnlyDoesNotAccumulate(t *testing.T) {
	q := New()
	d := bigintDescriptor("select * from t where id = ?", true)

	require.NoError(t, q.QueueDescriptor(d, nil, []any{int64(42)}))

	assert.Equal(t, 1, q.Len())
	assert.False(t, q.HashNonZero())
	assert.Equal(t, uint32(0), q.Hash())
}

func TestQueueDescriptorWriteAccumulates(t *testing.T) {
	q := New()
	d := bigintDescriptor("update t set v = v + 1 where id = ?", false)

	require.NoError(t, q.QueueDescriptor(d, nil, []any{int64(42)}))

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.HashNonZero())
}

func TestQueueDescriptorDeterministic(t *testing.T) {
	d := bigintDescriptor("update t set v = v + 1 where id = ?", false)

	q1 := New()
	require.NoError(t, q1.QueueDescriptor(d, nil, []any{int64(1)}))
	require.NoError(t, q1.QueueDescriptor(d, nil, []any{int64(2)}))

	q2 := New()
	require.NoError(t, q2.QueueDescriptor(d, nil, []any{int64(1)}))
	require.NoError(t, q2.QueueDescriptor(d, nil, []any{int64(2)}))

	assert.Equal(t, q1.Hash(), q2.Hash())
}

func TestQueueDescriptorWithExpectation(t *testing.T) {
	q := New()
	d := bigintDescriptor("select * from t where id = ?", true)
	exp := catalog.ExpectExactlyOneRow()

	require.NoError(t, q.QueueDescriptor(d, &exp, []any{int64(1)}))

	stmts := q.Drain(1)
	require.Len(t, stmts, 1)
	assert.True(t, stmts[0].HasExpectation())
	assert.NoError(t, stmts[0].Expectation.Check(1))
	assert.Error(t, stmts[0].Expectation.Check(0))
}

func TestStatementSerializeMemoizes(t *testing.T) {
	d := bigintDescriptor("update t set v = ? where id = ?", false)
	d.ParamTypes = []params.Type{params.TypeBigInt, params.TypeBigInt}

	stmt := &Statement{Descriptor: d, Params: params.Set{int64(1), int64(2)}}

	buf1, err := stmt.Serialize()
	require.NoError(t, err)

	buf2, err := stmt.Serialize()
	require.NoError(t, err)

	assert.Same(t, &buf1[0], &buf2[0])
}

func TestDrainLeavesRemainder(t *testing.T) {
	q := New()
	d := bigintDescriptor("select * from t where id = ?", true)

	for i := 0; i < 3; i++ {
		require.NoError(t, q.QueueDescriptor(d, nil, []any{int64(i)}))
	}

	first := q.Drain(2)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, q.Len())

	rest := q.Drain(10)
	assert.Len(t, rest, 1)
	assert.Equal(t, 0, q.Len())
}

func TestResetClearsQueueAndHash(t *testing.T) {
	q := New()
	d := bigintDescriptor("update t set v = v + 1 where id = ?", false)

	require.NoError(t, q.QueueDescriptor(d, nil, []any{int64(1)}))
	require.True(t, q.HashNonZero())

	q.Reset()

	assert.Equal(t, 0, q.Len())
	assert.False(t, q.HashNonZero())
}

type stubPlanner struct {
	plan *catalog.AdHocPlan
	err  error
}

func (s *stubPlanner) PlanAdHoc(_ context.Context, _ string, _ bool) (*catalog.AdHocPlan, error) {
	return s.plan, s.err
}

func TestQueueAdHocDmlFromReadOnly(t *testing.T) {
	q := New()
	planner := &stubPlanner{plan: &catalog.AdHocPlan{Descriptor: bigintDescriptor("update t set v=1", false)}}

	err := q.QueueAdHoc(context.Background(), planner, nil, nil, "update t set v=1", true, nil)
	assert.ErrorIs(t, err, DmlFromReadOnlyError{})
}

func TestQueueAdHocExtractedParamsConflict(t *testing.T) {
	q := New()
	planner := &stubPlanner{
		plan: &catalog.AdHocPlan{
			Descriptor:          bigintDescriptor("select * from t where id = 1", true),
			ExtractedParamCount: 1,
		},
	}

	err := q.QueueAdHoc(context.Background(), planner, nil, nil, "select * from t where id = 1", true, []any{int64(1)})

	var conflict *ExtractedParamsConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.CallerArgs)
	assert.Equal(t, 1, conflict.ExtractedN)
}

func TestQueueAdHocPlannerError(t *testing.T) {
	q := New()
	planner := &stubPlanner{err: assertError("bad sql")}

	err := q.QueueAdHoc(context.Background(), planner, nil, nil, "garbage", true, nil)

	var plannerErr *PlannerError
	assert.ErrorAs(t, err, &plannerErr)
}

type assertError string

func (e assertError) Error() string { return string(e) }

func TestQueueAdHocLoadsFragmentsThroughRepository(t *testing.T) {
	q := New()
	repo := catalog.NewFragmentRepository()

	collector := catalog.Fragment{ID: 2, Hash: catalog.PlanHash{2}}
	d := catalog.NewDescriptor("select * from t", catalog.Fragment{ID: 1, Hash: catalog.PlanHash{1}}, &collector, nil, true, false)

	planner := &stubPlanner{plan: &catalog.AdHocPlan{Descriptor: d}}

	loads := 0
	loadFragment := func(f catalog.Fragment) (catalog.Fragment, error) {
		loads++
		return f, nil
	}

	require.NoError(t, q.QueueAdHoc(context.Background(), planner, repo, loadFragment, "select * from t", true, nil))
	assert.Equal(t, 2, loads)
	assert.Equal(t, 1, q.Len())
}
