package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DecodeError turns a driver error into a *sqlerr.SqlResultError with the
// best SQLSTATE the driver lets us know. Errors that already are a
// SqlResultError pass through.
func DecodeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sre *sqlerr.SqlResultError
	if errors.As(err, &sre) {
		return err
	}
	state, native := "", 0
	var pgErr *pgconn.PgError
	var liteErr *sqlite.Error
	var duckErr *duckdb.Error
	switch {
	case errors.As(err, &pgErr):
		state = pgErr.Code
	case errors.As(err, &liteErr):
		native = liteErr.Code()
		state = sqliteState(native)
	case errors.As(err, &duckErr):
		state = duckdbState(duckErr.Type)
	case errors.Is(err, context.DeadlineExceeded):
		state = "HYT00"
	case errors.Is(err, context.Canceled):
		state = "HY008"
	}
	return sqlerr.NewSqlResultError(op, state, native, err)
}

// sqliteState maps the primary result code, the low byte of an extended code.
func sqliteState(code int) string {
	switch code & 0xff {
	case sqlite3.SQLITE_ERROR:
		return "42000"
	case sqlite3.SQLITE_CONSTRAINT:
		return "23000"
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return "HYT00"
	case sqlite3.SQLITE_INTERRUPT:
		return "HY008"
	case sqlite3.SQLITE_TOOBIG:
		return "22001"
	case sqlite3.SQLITE_MISMATCH:
		return "22018"
	case sqlite3.SQLITE_RANGE:
		return "07009"
	case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
		return "42501"
	}
	return ""
}

func duckdbState(t duckdb.ErrorType) string {
	switch t {
	case duckdb.ErrorTypeConstraint:
		return "23000"
	case duckdb.ErrorTypeCatalog:
		return "42S02"
	case duckdb.ErrorTypeParser:
		return "42000"
	case duckdb.ErrorTypeConversion:
		return "22018"
	case duckdb.ErrorTypeOutOfRange:
		return "22003"
	case duckdb.ErrorTypeDivideByZero:
		return "22012"
	case duckdb.ErrorTypeTransaction:
		return "25000"
	}
	return ""
}
