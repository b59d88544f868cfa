package runner

import (
	"errors"

	"github.com/eoneil1942/sprunner/internal/params"
	"github.com/eoneil1942/sprunner/internal/queue"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
)

// classifyQueueingError maps a coercion failure discovered while coercing
// the procedure's own call arguments into the closed taxonomy.
func classifyQueueingError(err error) *runnererrors.Error {
	var (
		arity          *params.ArityMismatchError
		typeErr        *params.TypeError
		unknownForNull *params.UnknownTypeForNullError
	)

	switch {
	case errors.As(err, &arity):
		return runnererrors.Wrap(runnererrors.KindArityMismatch, err, "runner")
	case errors.As(err, &typeErr):
		return runnererrors.Wrap(runnererrors.KindTypeError, err, "runner")
	case errors.As(err, &unknownForNull):
		return runnererrors.Wrap(runnererrors.KindUnknownTypeForNull, err, "runner")
	default:
		return runnererrors.Wrap(runnererrors.KindUnexpectedFailure, err, "runner")
	}
}

// classifyInvocationError maps any error surfaced by queueing, execution,
// or user code during an invocation into the closed taxonomy, filtering
// the captured stack to frames inside procPkg for every recognized kind.
// An error matching none of them becomes an unexpected failure carrying
// the full, unfiltered stack.
func classifyInvocationError(err error, procPkg string) *runnererrors.Error {
	var (
		existing            *runnererrors.Error
		nullStmt            queue.NullStatementError
		arity               *params.ArityMismatchError
		typeErr             *params.TypeError
		unknownForNull      *params.UnknownTypeForNullError
		plannerErr          *queue.PlannerError
		dmlFromReadOnly     queue.DmlFromReadOnlyError
		extractedConflict   *queue.ExtractedParamsConflictError
		doubleFinal         DoubleFinalBatchError
		expectationMismatch *ExpectationMismatchError
		invocationReturn    InvocationReturnError
		returnType          ReturnTypeError
	)

	switch {
	case errors.As(err, &existing):
		return existing
	case errors.As(err, &nullStmt):
		return runnererrors.Wrap(runnererrors.KindNullStatement, err, procPkg)
	case errors.As(err, &arity):
		return runnererrors.Wrap(runnererrors.KindArityMismatch, err, procPkg)
	case errors.As(err, &typeErr):
		return runnererrors.Wrap(runnererrors.KindTypeError, err, procPkg)
	case errors.As(err, &unknownForNull):
		return runnererrors.Wrap(runnererrors.KindUnknownTypeForNull, err, procPkg)
	case errors.As(err, &plannerErr):
		return runnererrors.Wrap(runnererrors.KindPlannerError, err, procPkg)
	case errors.As(err, &dmlFromReadOnly):
		return runnererrors.Wrap(runnererrors.KindDmlFromReadOnly, err, procPkg)
	case errors.As(err, &extractedConflict):
		return runnererrors.Wrap(runnererrors.KindExtractedParamsConflict, err, procPkg)
	case errors.As(err, &doubleFinal):
		return runnererrors.Wrap(runnererrors.KindDoubleFinalBatch, err, procPkg)
	case errors.As(err, &expectationMismatch):
		return runnererrors.Wrap(runnererrors.KindExpectationMismatch, err, procPkg)
	case errors.As(err, &invocationReturn):
		return runnererrors.Wrap(runnererrors.KindInvocationReturnError, err, procPkg)
	case errors.As(err, &returnType):
		return runnererrors.Wrap(runnererrors.KindReturnTypeError, err, procPkg)
	default:
		return runnererrors.Wrap(runnererrors.KindUnexpectedFailure, err, "")
	}
}
