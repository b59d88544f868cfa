// Package main is the entry point for the sprunner demonstration host.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/catalog/memstore"
	"github.com/eoneil1942/sprunner/internal/catalog/pgstore"
	"github.com/eoneil1942/sprunner/internal/engine"
	"github.com/eoneil1942/sprunner/internal/engine/refengine"
	"github.com/eoneil1942/sprunner/internal/runner"
	"github.com/eoneil1942/sprunner/internal/util/logging"
)

// cli mirrors the shape of a real server's flag struct, trimmed to what
// this demonstration host actually wires: a catalog connection, a debug
// listener for metrics, and logging.
//
//nolint:lll // for readability
var cli struct {
	PostgreSQLURL string `name:"postgresql-url" default:""          help:"PostgreSQL URL for the catalog store. If empty, an in-memory demo catalog is used." group:"Storage"`
	DebugAddr     string `name:"debug-addr"      default:"127.0.0.1:8088" help:"Listen address for the Prometheus /metrics handler."                            group:"Interfaces"`
	LogLevel      string `name:"log-level"       default:"info"      help:"Log level: 'debug', 'info', 'warn', 'error'."                                         group:"Miscellaneous"`
	Invoke        string `name:"invoke"          default:"Echo"      help:"Name of the demo procedure to run once at startup."                                   group:"Miscellaneous"`
}

func main() {
	kong.Parse(&cli, kong.DefaultEnvars("SPRUNNER"))

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %s\n", cli.LogLevel, err)
		os.Exit(1)
	}

	instanceID := uuid.NewString()
	logger := logging.Setup(level, "").With(slog.String("instance", instanceID))

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		logger.Info(fmt.Sprintf(format, a...))
	})); err != nil {
		logger.Warn("failed to set GOMAXPROCS", logging.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, executor, closeFn, err := openCatalog(ctx, cli.PostgreSQLURL, logger)
	if err != nil {
		logger.LogAttrs(ctx, logging.LevelFatal, "failed to open catalog", logging.Error(err))
		os.Exit(1)
	}
	defer closeFn()

	metrics := runner.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics)

	if ps, ok := store.(*pgstore.Store); ok {
		registry.MustRegister(ps)
	}

	r := &runner.Runner{
		Store:      store,
		Executor:   executor,
		Procedures: demoProcedures(),
		TestMode:   true,
		Logger:     logging.WithName(logger, "runner"),
	}

	dispatcher := &runner.Dispatcher{
		Runner:  r,
		Logger:  logging.WithName(logger, "dispatcher"),
		Metrics: metrics,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	srv := &http.Server{Addr: cli.DebugAddr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogAttrs(ctx, logging.LevelFatal, "debug listener failed", logging.Error(err))
		}
	}()

	if executor != nil {
		resp := dispatcher.Dispatch(ctx, cli.Invoke, engine.TransactionContext{UniqueID: time.Now().UnixNano()}, nil)
		logger.LogAttrs(ctx, slog.LevelInfo, "demo invocation complete",
			slog.String("status", resp.Status.String()), slog.Int("results", len(resp.Results)))
	} else {
		logger.InfoContext(ctx, "connected to external catalog; no in-process site executor, skipping demo invocation")
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}

// openCatalog opens a Postgres-backed catalog when uri is non-empty,
// otherwise falls back to an in-memory catalog and reference engine seeded
// with the single-statement demo procedure "Echo", so the host always has
// something to run.
func openCatalog(ctx context.Context, uri string, logger *slog.Logger) (catalog.Store, engine.SiteExecutor, func(), error) {
	if uri != "" {
		s, err := pgstore.New(ctx, uri, logging.WithName(logger, "pgstore"))
		if err != nil {
			return nil, nil, nil, err
		}

		return s, nil, func() { s.Close() }, nil
	}

	eng, err := refengine.Open(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := eng.Exec(ctx, "create table widgets (id integer primary key, name text)"); err != nil {
		eng.Close()
		return nil, nil, nil, err
	}

	store := memstore.New()

	selectDesc := catalog.NewDescriptor("select count(*) from widgets", catalog.Fragment{ID: 1}, nil, nil, true, false)
	eng.RegisterFragment(selectDesc)
	store.Install(&catalog.Procedure{
		Name:            "Echo",
		ReadOnly:        true,
		SinglePartition: true,
		SingleStatement: selectDesc,
	}, nil)

	return store, eng, func() { eng.Close() }, nil
}

// demoProcedures returns the native entry-point table for the demo host.
// It is empty: the in-memory demo catalog installs only the
// single-statement procedure "Echo", which never consults this map.
func demoProcedures() map[string]runner.ProcedureFunc {
	return map[string]runner.ProcedureFunc{}
}
