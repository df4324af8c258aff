// Package sqlerr defines the errors surfaced by buffers, statements and tables.
//
// There are four families:
//
//   - driver errors (*SqlResultError) carry the SQLSTATE and native code
//   - programmer misuse (*AssertionError), not recoverable
//   - capability errors (*NotSupportedError, *PrivilegeError, *NotFoundError)
//   - value-domain errors (*NullValueError, *NarrowingError, *IllegalArgumentError)
//
// Every type matches one of the sentinels below with errors.Is, so callers can
// branch on the family without caring about the concrete type.
package sqlerr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrSqlResult       = errors.New("sql result error")
	ErrAssertion       = errors.New("assertion failed")
	ErrNotSupported    = errors.New("not supported")
	ErrPrivilege       = errors.New("missing privilege")
	ErrNotFound        = errors.New("not found")
	ErrNullValue       = errors.New("null value")
	ErrNarrowing       = errors.New("narrowing conversion")
	ErrIllegalArgument = errors.New("illegal argument")
	ErrNoData          = errors.New("no data")
)

// SqlResultError is returned when the driver reports a failure.
type SqlResultError struct {
	Op          string
	SqlState    string
	NativeError int
	Message     string
	cause       error
}

// NewSqlResultError wraps a driver error. An empty sqlState becomes the
// general error class HY000.
func NewSqlResultError(op string, sqlState string, native int, cause error) *SqlResultError {
	if sqlState == "" {
		sqlState = "HY000"
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &SqlResultError{Op: op, SqlState: sqlState, NativeError: native, Message: msg, cause: cause}
}

func (e *SqlResultError) Error() string {
	return fmt.Sprintf("%s: SQLSTATE %s (%d): %s", e.Op, e.SqlState, e.NativeError, e.Message)
}

func (e *SqlResultError) Is(target error) bool { return target == ErrSqlResult }
func (e *SqlResultError) Unwrap() error        { return e.cause }

// AssertionError reports a programming error such as opening a table twice.
type AssertionError struct {
	Msg string
}

func Assertion(format string, args ...any) error {
	return errors.WithStack(&AssertionError{Msg: fmt.Sprintf(format, args...)})
}

func (e *AssertionError) Error() string        { return "assertion failed: " + e.Msg }
func (e *AssertionError) Is(target error) bool { return target == ErrAssertion }

// NotSupportedError reports a feature the driver, the type map or the
// cursor cannot provide.
type NotSupportedError struct {
	What string
}

func NotSupported(format string, args ...any) error {
	return errors.WithStack(&NotSupportedError{What: fmt.Sprintf(format, args...)})
}

func (e *NotSupportedError) Error() string        { return "not supported: " + e.What }
func (e *NotSupportedError) Is(target error) bool { return target == ErrNotSupported }

// PrivilegeError lists the privileges the catalog did not grant on a table.
type PrivilegeError struct {
	Table   string
	Missing []string
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("missing privileges on %s: %v", e.Table, e.Missing)
}
func (e *PrivilegeError) Is(target error) bool { return target == ErrPrivilege }

// NotFoundError reports a table, column or key that does not exist.
type NotFoundError struct {
	What string
}

func NotFound(format string, args ...any) error {
	return errors.WithStack(&NotFoundError{What: fmt.Sprintf(format, args...)})
}

func (e *NotFoundError) Error() string        { return "not found: " + e.What }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NullValueError is returned when reading a value that is currently NULL.
type NullValueError struct {
	Column string
}

func NullValue(column string) error {
	return errors.WithStack(&NullValueError{Column: column})
}

func (e *NullValueError) Error() string        { return fmt.Sprintf("column '%s' is NULL", e.Column) }
func (e *NullValueError) Is(target error) bool { return target == ErrNullValue }

// NarrowingError is returned when a value is requested as a narrower type
// than the buffer holds.
type NarrowingError struct {
	Column string
	From   string
	To     string
}

func Narrowing(column, from, to string) error {
	return errors.WithStack(&NarrowingError{Column: column, From: from, To: to})
}

func (e *NarrowingError) Error() string {
	return fmt.Sprintf("column '%s': cannot narrow %s to %s", e.Column, e.From, e.To)
}
func (e *NarrowingError) Is(target error) bool { return target == ErrNarrowing }

// IllegalArgumentError reports a value outside the domain of a buffer.
type IllegalArgumentError struct {
	Msg string
}

func IllegalArgument(format string, args ...any) error {
	return errors.WithStack(&IllegalArgumentError{Msg: fmt.Sprintf(format, args...)})
}

func (e *IllegalArgumentError) Error() string        { return "illegal argument: " + e.Msg }
func (e *IllegalArgumentError) Is(target error) bool { return target == ErrIllegalArgument }

// NoDataError is returned by write operations that affected no row when the
// caller asked to fail on that.
type NoDataError struct {
	SqlText string
}

func NoData(sqlText string) error {
	return errors.WithStack(&NoDataError{SqlText: sqlText})
}

func (e *NoDataError) Error() string        { return "no data: " + e.SqlText }
func (e *NoDataError) Is(target error) bool { return target == ErrNoData }
