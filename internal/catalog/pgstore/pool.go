package pgstore

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/AlekSi/lazyerrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// pool wraps [*pgxpool.Pool] with the tracer and default connection
// parameters every catalog query goes through.
type pool struct {
	p *pgxpool.Pool
	t *tracer
}

// newPool connects (lazily — no connection is made until first use) to uri,
// raising the default pool size to 16 connections unless uri sets one, and
// forcing the application name and the UTC timezone.
func newPool(ctx context.Context, uri string, l *slog.Logger) (*pool, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	q := u.Query()
	if !q.Has("pool_max_conns") {
		q.Set("pool_max_conns", "16")
	}

	q.Set("application_name", "sprunner")
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	config, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	t := newTracer(l)

	config.ConnConfig.Tracer = t
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return &pool{p: p, t: t}, nil
}

// close releases the underlying pool.
func (pl *pool) close() { pl.p.Close() }

// Describe implements [prometheus.Collector].
func (pl *pool) Describe(ch chan<- *prometheus.Desc) { prometheus.DescribeByCollect(pl, ch) }

// Collect implements [prometheus.Collector].
func (pl *pool) Collect(ch chan<- prometheus.Metric) {
	pl.t.Collect(ch)

	stat := pl.p.Stat()

	ch <- prometheus.MustNewConstMetric(
		prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "acquired"), "Acquired connections.", nil, nil),
		prometheus.GaugeValue, float64(stat.AcquiredConns()),
	)
	ch <- prometheus.MustNewConstMetric(
		prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "idle"), "Idle connections.", nil, nil),
		prometheus.GaugeValue, float64(stat.IdleConns()),
	)
	ch <- prometheus.MustNewConstMetric(
		prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "total"), "Total connections.", nil, nil),
		prometheus.GaugeValue, float64(stat.TotalConns()),
	)
}

var _ prometheus.Collector = (*pool)(nil)
