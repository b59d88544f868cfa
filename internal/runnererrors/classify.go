package runnererrors

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyStorageError maps a storage-layer failure surfaced by the catalog
// store into the closed taxonomy, switching on the Postgres error code the
// same way the teacher's mongoerrors.Make switches on pgconn.PgError.Code.
// Errors that are not a *pgconn.PgError classify as SqlError with no
// further detail.
func ClassifyStorageError(err error, pkgPrefix string) *Error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Wrap(KindSqlError, err, pkgPrefix)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation,
		pgerrcode.ForeignKeyViolation,
		pgerrcode.CheckViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.ExclusionViolation:
		return Wrap(KindConstraintViolation, err, pkgPrefix)

	case pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected:
		return Wrap(KindTransactionRestart, err, pkgPrefix)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.DiskFull,
		pgerrcode.OutOfMemory:
		return Wrap(KindFatalToServer, err, pkgPrefix)

	case pgerrcode.QueryCanceled:
		return Wrap(KindInterrupt, err, pkgPrefix)

	default:
		return Wrap(KindSqlError, err, pkgPrefix)
	}
}
