package runnererrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageHasStatusPrefix(t *testing.T) {
	err := New(KindUserAbort, "internal/runnererrors", "boom")
	assert.Equal(t, "USER ABORT: boom", err.Error())
	assert.Equal(t, StatusUserAbort, err.Status())
}

func TestArityMismatchMessage(t *testing.T) {
	err := New(KindArityMismatch, "internal/runnererrors", "EXPECTS %d PARAMS, BUT RECEIVED %d", 3, 2)
	assert.Contains(t, err.Error(), "EXPECTS 3 PARAMS, BUT RECEIVED 2")
	assert.Equal(t, StatusGracefulFailure, err.Status())
}

func TestUserAbortStackFilteredToPackage(t *testing.T) {
	err := callThroughHelper()

	for _, fr := range err.Frames() {
		assert.Contains(t, fr.Function, "runnererrors")
	}

	assert.NotEmpty(t, err.Frames())
}

func callThroughHelper() *Error {
	return New(KindUserAbort, "runnererrors", "boom")
}

func TestFormatPlusVIncludesStack(t *testing.T) {
	err := New(KindUserAbort, "runnererrors", "boom")

	plain := fmt.Sprintf("%v", err)
	verbose := fmt.Sprintf("%+v", err)

	assert.Equal(t, "USER ABORT: boom", plain)
	assert.Greater(t, len(verbose), len(plain))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindSqlError, cause, "runnererrors")

	assert.ErrorIs(t, err, cause)
}

func TestFatalToServerDetection(t *testing.T) {
	fatal := New(KindFatalToServer, "runnererrors", "out of memory")
	other := New(KindUserAbort, "runnererrors", "boom")

	assert.True(t, FatalToServer(fatal))
	assert.False(t, FatalToServer(other))
	assert.False(t, FatalToServer(errors.New("plain")))
}

func TestClassifyStorageErrorConstraintViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: "duplicate key"}

	err := ClassifyStorageError(pgErr, "runnererrors")
	assert.Equal(t, KindConstraintViolation, err.Kind())
}

func TestClassifyStorageErrorSerializationFailureIsTxnRestart(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	err := ClassifyStorageError(pgErr, "runnererrors")
	assert.Equal(t, KindTransactionRestart, err.Kind())
	assert.Equal(t, StatusTxnRestart, err.Status())
}

func TestClassifyStorageErrorFatalCodes(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.OutOfMemory}

	err := ClassifyStorageError(pgErr, "runnererrors")
	require.True(t, FatalToServer(err))
}

func TestClassifyStorageErrorNonPgFallsBackToSqlError(t *testing.T) {
	err := ClassifyStorageError(errors.New("connection reset"), "runnererrors")
	assert.Equal(t, KindSqlError, err.Kind())
}

func TestResponseSuccessWithHash(t *testing.T) {
	resp := Success([]Table{{Rows: [][]any{{int64(1)}}}}, 0xDEADBEEF, true, AppStatusNone, "")

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.True(t, resp.HasHash)
	assert.Equal(t, int32(-559038737), resp.Hash) // the bits of 0xDEADBEEF read as int32
}

func TestResponseSuccessWithoutHash(t *testing.T) {
	resp := Success(nil, 0, false, AppStatusNone, "")
	assert.False(t, resp.HasHash)
}

func TestResponseSuccessCarriesAppStatus(t *testing.T) {
	resp := Success(nil, 0, false, int8(7), "almost done")

	assert.Equal(t, int8(7), resp.AppStatusCode)
	assert.Equal(t, "almost done", resp.AppStatusString)
}

func TestResponseFailureCarriesMessage(t *testing.T) {
	err := New(KindUserAbort, "runnererrors", "boom")
	resp := Failure(err, AppStatusNone, "")

	assert.Equal(t, StatusUserAbort, resp.Status)
	assert.Contains(t, resp.Message, "USER ABORT: boom")
}

func TestResponseFailureCarriesAppStatus(t *testing.T) {
	err := New(KindUserAbort, "runnererrors", "boom")
	resp := Failure(err, int8(3), "partial progress")

	assert.Equal(t, int8(3), resp.AppStatusCode)
	assert.Equal(t, "partial progress", resp.AppStatusString)
}

func TestSqlErrorPrefix(t *testing.T) {
	err := Wrap(KindSqlError, errors.New("connection reset"), "runnererrors")

	assert.Equal(t, StatusGracefulFailure, err.Status())
	assert.Contains(t, err.Error(), "SQL ERROR: connection reset")
}

func TestInterruptMapsToGracefulFailure(t *testing.T) {
	err := New(KindInterrupt, "runnererrors", "timed out")

	assert.Equal(t, StatusGracefulFailure, err.Status())
	assert.Contains(t, err.Error(), "Transaction Interrupted: timed out")
}

func TestExpectedProcedureErrorUsesCallerSuppliedStatus(t *testing.T) {
	cause := fmt.Errorf("wrapping: %w", errors.New("division by zero"))

	err := NewExpectedProcedureError(StatusUserAbort, cause, "runnererrors")

	assert.Equal(t, StatusUserAbort, err.Status())
	assert.Equal(t, KindExpectedProcedureError, err.Kind())
	assert.Contains(t, err.Error(), "HSQL-BACKEND ERROR: division by zero")
	assert.NotContains(t, err.Error(), "wrapping:")
	assert.ErrorIs(t, err, cause)
}

func TestExpectedProcedureErrorWithoutWrappedCause(t *testing.T) {
	cause := errors.New("division by zero")

	err := NewExpectedProcedureError(StatusGracefulFailure, cause, "runnererrors")

	assert.Contains(t, err.Error(), "HSQL-BACKEND ERROR: division by zero")
}
