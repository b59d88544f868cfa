package pgstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/eoneil1942/sprunner/internal/util/logging"
)

// Parts of Prometheus metric names.
const (
	namespace = "sprunner"
	subsystem = "pgstore"
)

type contextKey struct{}

var queryStartKey = contextKey{}

// tracer implements the pgx connect/query tracer interfaces, reporting
// Prometheus counters and OpenTelemetry spans for every statement the
// catalog store runs against PostgreSQL.
type tracer struct {
	tl       *tracelog.TraceLog
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newTracer(l *slog.Logger) *tracer {
	return &tracer{
		tl: &tracelog.TraceLog{
			Logger:   logging.NewPgxLogger(l),
			LogLevel: tracelog.LogLevelTrace,
		},
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of queries issued against the PostgreSQL catalog.",
			},
			[]string{},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "query_duration_seconds",
				Help:      "Duration of catalog queries against PostgreSQL.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{},
		),
	}
}

// TraceConnectStart implements [pgx.ConnectTracer].
func (t *tracer) TraceConnectStart(ctx context.Context, data pgx.TraceConnectStartData) context.Context {
	return t.tl.TraceConnectStart(ctx, data)
}

// TraceConnectEnd implements [pgx.ConnectTracer].
func (t *tracer) TraceConnectEnd(ctx context.Context, data pgx.TraceConnectEndData) {
	t.tl.TraceConnectEnd(ctx, data)
}

// TraceQueryStart implements [pgx.QueryTracer].
func (t *tracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, queryStartKey, time.Now())

	t.requests.With(prometheus.Labels{}).Inc()

	ctx, _ = otel.Tracer("").Start(ctx, "pgstore.Query", oteltrace.WithSpanKind(oteltrace.SpanKindClient))

	return t.tl.TraceQueryStart(ctx, conn, data)
}

// TraceQueryEnd implements [pgx.QueryTracer].
func (t *tracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if start, ok := ctx.Value(queryStartKey).(time.Time); ok {
		t.duration.With(prometheus.Labels{}).Observe(time.Since(start).Seconds())
	}

	t.tl.TraceQueryEnd(ctx, conn, data)

	span := oteltrace.SpanFromContext(ctx)

	if data.Err == nil {
		span.SetStatus(otelcodes.Ok, "")
	} else {
		span.SetStatus(otelcodes.Error, "")
		span.RecordError(data.Err)
	}

	span.End()
}

// Describe implements [prometheus.Collector].
func (t *tracer) Describe(ch chan<- *prometheus.Desc) {
	t.requests.Describe(ch)
	t.duration.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (t *tracer) Collect(ch chan<- prometheus.Metric) {
	t.requests.Collect(ch)
	t.duration.Collect(ch)
}

var (
	_ pgx.ConnectTracer    = (*tracer)(nil)
	_ pgx.QueryTracer      = (*tracer)(nil)
	_ prometheus.Collector = (*tracer)(nil)
)
