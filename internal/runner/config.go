// Package runner implements the batch executor, fast and slow dispatch
// paths, and the invocation driver: the per-call state machine that takes a
// stored-procedure call from parameter coercion through result assembly,
// determinism hashing, and structured error response. It is wrapped by
// [Dispatcher], which adds panic recovery, metrics, tracing, and logging
// around one call to [Runner.Invoke].
package runner

// MaxBatchSize is the largest sub-batch the executor will dispatch in one
// fast- or slow-path call; it must match the corresponding constant on the
// engine side.
const MaxBatchSize = 200
