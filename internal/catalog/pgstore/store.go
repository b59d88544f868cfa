package pgstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/params"
	"github.com/eoneil1942/sprunner/internal/runnererrors"
)

// Store is a [catalog.Store] backed by PostgreSQL: procedures and compiled
// statement descriptors are rows, loaded on every lookup (the runner's own
// [catalog.FragmentRepository] is the cache that keeps repeated ad-hoc
// lookups off the hot path; single-statement and native procedures are
// looked up once per catalog generation by the embedder, not per call).
type Store struct {
	pool      *pool
	fragments *catalog.FragmentRepository
}

// New opens a Store against uri, without establishing a connection until
// the first query.
func New(ctx context.Context, uri string, l *slog.Logger) (*Store, error) {
	p, err := newPool(ctx, uri, l)
	if err != nil {
		return nil, err
	}

	return &Store{pool: p, fragments: catalog.NewFragmentRepository()}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.close() }

// Procedure implements [catalog.Store].
func (s *Store) Procedure(ctx context.Context, name string) (*catalog.Procedure, error) {
	row := s.pool.p.QueryRow(ctx, `
		select read_only, system, language, param_types, single_partition,
		       partition_column, partition_col_type, single_statement
		from sprunner_procedures where name = $1`, name)

	var (
		readOnly, system, singlePartition bool
		language, partitionColType        int16
		partitionColumn                   int32
		paramTypes                        []int16
		singleStatementID                 *int64
	)

	if err := row.Scan(&readOnly, &system, &language, &paramTypes, &singlePartition,
		&partitionColumn, &partitionColType, &singleStatementID); err != nil {
		return nil, classify(err)
	}

	proc := &catalog.Procedure{
		Name:             name,
		ReadOnly:         readOnly,
		System:           system,
		Language:         catalog.Language(language),
		ParamTypes:       toParamTypes(paramTypes),
		SinglePartition:  singlePartition,
		PartitionColumn:  int(partitionColumn),
		PartitionColType: params.Type(partitionColType),
	}

	if singleStatementID != nil {
		d, err := s.Descriptor(ctx, *singleStatementID)
		if err != nil {
			return nil, err
		}

		proc.SingleStatement = d
	}

	return proc, nil
}

// Descriptor implements [catalog.Store].
func (s *Store) Descriptor(ctx context.Context, id int64) (*catalog.Descriptor, error) {
	row := s.pool.p.QueryRow(ctx, `
		select sql, agg_fragment_id, agg_plan_hash, agg_transactional,
		       coll_fragment_id, coll_plan_hash, coll_transactional,
		       param_types, read_only, replicated_table_dml
		from sprunner_descriptors where id = $1`, id)

	var (
		sql               string
		aggFragmentID     int64
		aggPlanHash       []byte
		aggTransactional  bool
		collFragmentID    *int64
		collPlanHash      []byte
		collTransactional *bool
		paramTypes        []int16
		readOnly          bool
		replicatedDML     bool
	)

	if err := row.Scan(&sql, &aggFragmentID, &aggPlanHash, &aggTransactional,
		&collFragmentID, &collPlanHash, &collTransactional,
		&paramTypes, &readOnly, &replicatedDML); err != nil {
		return nil, classify(err)
	}

	agg := catalog.Fragment{ID: aggFragmentID, Hash: toPlanHash(aggPlanHash), Transactional: aggTransactional}

	var coll *catalog.Fragment
	if collFragmentID != nil {
		coll = &catalog.Fragment{
			ID:            *collFragmentID,
			Hash:          toPlanHash(collPlanHash),
			Transactional: collTransactional != nil && *collTransactional,
		}
	}

	return catalog.NewDescriptor(sql, agg, coll, toParamTypes(paramTypes), readOnly, replicatedDML), nil
}

// Fragments implements [catalog.Store].
func (s *Store) Fragments() *catalog.FragmentRepository { return s.fragments }

// Describe implements [prometheus.Collector].
func (s *Store) Describe(ch chan<- *prometheus.Desc) { s.pool.Describe(ch) }

// Collect implements [prometheus.Collector], reporting pool and query metrics.
func (s *Store) Collect(ch chan<- prometheus.Metric) { s.pool.Collect(ch) }

func toParamTypes(raw []int16) []params.Type {
	out := make([]params.Type, len(raw))
	for i, v := range raw {
		out[i] = params.Type(v)
	}

	return out
}

func toPlanHash(raw []byte) catalog.PlanHash {
	var h catalog.PlanHash
	copy(h[:], raw)

	return h
}

// classify turns a storage-layer error into the closed failure taxonomy,
// treating "no rows" as a not-found condition the runner surfaces as a
// graceful failure rather than a crash.
func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return runnererrors.New(runnererrors.KindSqlError, "pgstore", "catalog: not found")
	}

	return runnererrors.ClassifyStorageError(err, "pgstore")
}

var _ catalog.Store = (*Store)(nil)
