// Package refengine implements the HSQL-backed test mode described for the
// batch executor's path choice: an embedded SQL reference implementation
// that satisfies [engine.SiteExecutor] directly, so the executor cannot
// distinguish it from a real site. It uses modernc.org/sqlite, a pure-Go
// engine, in the same role HSQLDB plays for the source system.
package refengine

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/engine"
)

// Engine is an in-memory sqlite-backed [engine.SiteExecutor], used for
// deterministic unit and integration testing of procedures without a real
// cluster.
type Engine struct {
	db *sql.DB

	mu        sync.RWMutex
	fragments map[int64]fragmentInfo
}

type fragmentInfo struct {
	sql      string
	readOnly bool
}

// Open returns a fresh Engine backed by a private, in-memory sqlite
// database.
func Open(ctx context.Context) (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("refengine: open: %w", err)
	}

	db.SetMaxOpenConns(1) // single-threaded runner, single-connection reference engine

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("refengine: ping: %w", err)
	}

	return &Engine{db: db, fragments: map[int64]fragmentInfo{}}, nil
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Exec runs DDL directly against the reference database, for test fixture
// setup (schema creation, seed data) outside the fragment-call protocol.
func (e *Engine) Exec(ctx context.Context, sqlText string, args ...any) error {
	_, err := e.db.ExecContext(ctx, sqlText, args...)
	return err
}

// RegisterFragment associates a fragment id with the SQL text the aggregator
// descriptor for that id was built from, so that ExecutePlanFragments can
// run it. Called once per statement descriptor installed against this
// engine, mirroring the role the catalog loader plays for a real site.
func (e *Engine) RegisterFragment(d *catalog.Descriptor) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fragments[d.Aggregator.ID] = fragmentInfo{sql: d.SQL, readOnly: d.ReadOnly}
}

// ExecutePlanFragments implements [engine.SiteExecutor], running each call's
// registered SQL text against the reference database in order and
// collecting its result rows (for reads) or affected-row count (for
// writes, reported as a single-row, single-column table).
func (e *Engine) ExecutePlanFragments(
	ctx context.Context,
	_ engine.TransactionContext,
	readOnly bool,
	calls []engine.FragmentCall,
) ([]engine.Table, error) {
	results := make([]engine.Table, len(calls))

	for i, call := range calls {
		e.mu.RLock()
		info, ok := e.fragments[call.FragmentID]
		e.mu.RUnlock()

		if !ok {
			return nil, fmt.Errorf("refengine: no fragment registered for id %d", call.FragmentID)
		}

		args := make([]any, len(call.Params))
		copy(args, call.Params)

		if info.readOnly {
			table, err := e.query(ctx, info.sql, args)
			if err != nil {
				return nil, err
			}

			results[i] = table

			continue
		}

		if readOnly {
			return nil, fmt.Errorf("refengine: write fragment %d dispatched on a read-only call", call.FragmentID)
		}

		res, err := e.db.ExecContext(ctx, info.sql, args...)
		if err != nil {
			return nil, fmt.Errorf("refengine: exec fragment %d: %w", call.FragmentID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("refengine: rows affected for fragment %d: %w", call.FragmentID, err)
		}

		results[i] = engine.Table{Rows: [][]any{{n}}}
	}

	return results, nil
}

func (e *Engine) query(ctx context.Context, sqlText string, args []any) (engine.Table, error) {
	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return engine.Table{}, fmt.Errorf("refengine: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return engine.Table{}, fmt.Errorf("refengine: columns: %w", err)
	}

	var table engine.Table

	for rows.Next() {
		scanTargets := make([]any, len(cols))
		vals := make([]any, len(cols))

		for i := range scanTargets {
			scanTargets[i] = &vals[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return engine.Table{}, fmt.Errorf("refengine: scan: %w", err)
		}

		table.Rows = append(table.Rows, vals)
	}

	if err := rows.Err(); err != nil {
		return engine.Table{}, fmt.Errorf("refengine: rows: %w", err)
	}

	return table, nil
}

var _ engine.SiteExecutor = (*Engine)(nil)
