package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
	"github.com/eoneil1942/sprunner/internal/util/logging"
)

// Dispatcher wraps one [Runner], handling panics and response metrics,
// tracing, and logging around every call to [Runner.Invoke] — directly
// grounded in the teacher's request dispatcher: recover panics, measure
// latency, count outcomes, start/end a span, log once per call at a level
// chosen by outcome.
type Dispatcher struct {
	Runner  *Runner
	Logger  *slog.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
}

// Dispatch sends one invocation to the wrapped runner. It never returns a
// nil response: a FatalToServer classification or a recovered panic both
// re-panic instead, matching §5's "Fatal-to-server errors ... crash the
// site deterministically."
func (d *Dispatcher) Dispatch(ctx context.Context, name string, txn engine.TransactionContext, args []any) *runnererrors.Response {
	start := time.Now()

	ctx, span := d.startSpan(ctx, name)
	defer span.End()

	resp, _ := d.invoke(ctx, name, txn, args)

	d.observe(ctx, name, resp, start, span)

	return resp
}

// invoke calls the runner, converting a recovered panic into the same
// crash-the-site behavior a FatalToServer classification produces: it
// re-panics after recording the outcome, never silently swallowing it.
func (d *Dispatcher) invoke(ctx context.Context, name string, txn engine.TransactionContext, args []any) (resp *runnererrors.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.Logger.LogAttrs(ctx, logging.LevelDPanic, fmt.Sprintf("panic in invocation: %v", p))
			panic(p)
		}
	}()

	resp, crashErr := d.Runner.Invoke(ctx, name, txn, args)
	if crashErr != nil {
		d.Logger.LogAttrs(ctx, slog.LevelError, "fatal-to-server error, crashing site", logging.Error(crashErr))
		panic(crashErr)
	}

	if resp == nil {
		msg := "Runner.Invoke broke its contract: nil response with no crash error"
		d.Logger.LogAttrs(ctx, logging.LevelDPanic, msg)
		panic(msg)
	}

	return resp, nil
}

func (d *Dispatcher) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if d.Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return d.Tracer.Start(ctx, "Invoke "+name)
}

func (d *Dispatcher) observe(ctx context.Context, name string, resp *runnererrors.Response, start time.Time, span trace.Span) {
	status := resp.Status.String()

	if d.Metrics != nil {
		d.Metrics.responses.With(prometheus.Labels{"procedure": name, "status": status}).Inc()
		d.Metrics.latency.With(prometheus.Labels{"procedure": name}).Observe(time.Since(start).Seconds())
	}

	if resp.Status == runnererrors.StatusSuccess {
		span.SetStatus(otelcodes.Ok, "")
	} else {
		span.SetStatus(otelcodes.Error, status)
	}

	attrs := []slog.Attr{
		slog.String("procedure", name),
		slog.String("status", status),
		slog.String("duration", time.Since(start).String()),
	}

	level := slog.LevelInfo

	switch resp.Status {
	case runnererrors.StatusSuccess:
		level = slog.LevelInfo
	case runnererrors.StatusUserAbort, runnererrors.StatusGracefulFailure, runnererrors.StatusTxnRestart:
		level = slog.LevelWarn
	case runnererrors.StatusUnexpectedFailure:
		level = slog.LevelError
	}

	if resp.Message != "" {
		attrs = append(attrs, slog.String("message", resp.Message))
	}

	d.Logger.LogAttrs(ctx, level, "invocation handled", attrs...)
}
