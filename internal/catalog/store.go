package catalog

import "context"

// Store is the catalog loader's interface, as consumed by the runner.
// The catalog loader itself — procedures, statements, parameters — is an
// external collaborator per spec; this module only defines the shape it
// must have. [catalog/memstore] and [catalog/pgstore] each provide one
// concrete implementation.
type Store interface {
	// Procedure looks up a procedure's catalog entry by name.
	Procedure(ctx context.Context, name string) (*Procedure, error)

	// Descriptor looks up a statement descriptor by its catalog id, used
	// when queueing by descriptor reference.
	Descriptor(ctx context.Context, id int64) (*Descriptor, error)

	// Fragments is the process-wide ref-counted plan-fragment repository
	// backing this generation of the catalog.
	Fragments() *FragmentRepository
}

// AdHocPlan is the result of planning one ad-hoc SQL statement: the single
// planned statement. Planner failures are reported through the error
// returned by [AdHocPlanner.PlanAdHoc], not through this type.
type AdHocPlan struct {
	Descriptor *Descriptor

	// ExtractedParamCount is the number of constants the planner pulled out
	// of literal SQL text, when the caller passed none of its own (§4.3,
	// ExtractedParamsConflict).
	ExtractedParamCount int
}

// AdHocPlanner is the external ad-hoc SQL planner: given SQL text and the
// read-only flag of the enclosing procedure, it returns a planned-statement
// batch of size exactly one, or an error.
type AdHocPlanner interface {
	PlanAdHoc(ctx context.Context, sql string, readOnly bool) (*AdHocPlan, error)
}
