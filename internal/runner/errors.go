package runner

import "fmt"

// DoubleFinalBatchError is returned when queueing or executing is attempted
// after a prior executeSql call was marked final.
type DoubleFinalBatchError struct {
	Context string // "queueSql" or "executeSql"
}

func (e DoubleFinalBatchError) Error() string {
	return fmt.Sprintf("%s called after a final batch was already executed", e.Context)
}

// ExpectationMismatchError is returned when a queued statement's expectation
// is violated by its observed result row count.
type ExpectationMismatchError struct {
	Index int
	Cause error
}

func (e *ExpectationMismatchError) Error() string {
	return fmt.Sprintf("statement %d: %s", e.Index, e.Cause)
}

func (e *ExpectationMismatchError) Unwrap() error { return e.Cause }

// InvocationReturnError is returned when user code returns a VoltTable[]
// containing a nil element.
type InvocationReturnError struct{ Index int }

func (e InvocationReturnError) Error() string {
	return fmt.Sprintf("null result table at index %d", e.Index)
}

// ReturnTypeError is returned when user code returns a value of a type the
// return-value coercion rules do not recognize.
type ReturnTypeError struct{ Got any }

func (e ReturnTypeError) Error() string {
	return fmt.Sprintf("unsupported return type %T", e.Got)
}
