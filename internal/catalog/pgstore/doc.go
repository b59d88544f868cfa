// Package pgstore implements [catalog.Store] against a PostgreSQL-backed
// catalog: one row per installed procedure in
// "sprunner_procedures" keyed by procedure name, one row per compiled
// statement in "sprunner_descriptors" keyed by its catalog id.
//
// Schema (kept here rather than in a migrations directory, since this
// package is the only thing that reads it):
//
//	create table sprunner_descriptors (
//		id                   bigint primary key,
//		sql                  text not null,
//		agg_fragment_id      bigint not null,
//		agg_plan_hash        bytea not null,
//		agg_transactional    boolean not null,
//		coll_fragment_id     bigint,
//		coll_plan_hash       bytea,
//		coll_transactional   boolean,
//		param_types          smallint[] not null,
//		read_only            boolean not null,
//		replicated_table_dml boolean not null
//	);
//
//	create table sprunner_procedures (
//		name               text primary key,
//		read_only          boolean not null,
//		system             boolean not null,
//		language           smallint not null,
//		param_types        smallint[] not null,
//		single_partition   boolean not null,
//		partition_column   integer not null,
//		partition_col_type smallint not null,
//		single_statement   bigint references sprunner_descriptors(id)
//	);
package pgstore
