// Package buffer implements the typed memory regions bound to result columns
// and statement parameters.
//
// A ColumnBuffer is one of a closed set of variants:
//
//   - *Scalar[T]: a single fixed size value (integers, floats, NUMERIC, DATE, TIME, TIMESTAMP)
//   - *Array[E]: a fixed capacity sequence of narrow chars, wide chars or bytes
//   - *RawPointer: caller owned memory described only by its C type
//
// Every buffer carries a LengthIndicator. A buffer is NULL when its indicator
// holds the NULL sentinel; reading the value of a NULL buffer fails with a
// NullValueError.
package buffer

import (
	"database/sql/driver"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// ParamDesc describes a statement parameter the way SQLDescribeParam does.
// A negative DecimalDigits means the digits are unknown.
type ParamDesc struct {
	SqlType       sqltype.SqlType
	ColumnSize    int
	DecimalDigits int
	Nullable      sqltype.Nullability
}

// Target is the statement facing side of a buffer. A statement stores fetched
// values into it, and loads parameter values from it when it executes.
type Target interface {
	QueryName() string
	CType() sqltype.CType
	Indicator() *LengthIndicator

	// Store copies a fetched driver value into the buffer. A nil src sets
	// the buffer NULL.
	Store(src any) error

	// Load returns the value to send for a parameter described by desc,
	// nil when the buffer is NULL.
	Load(desc ParamDesc) (driver.Value, error)
}

// Binder is implemented by statements. Buffers bind themselves through it.
type Binder interface {
	BindCol(ordinal int, target Target) error
	BindParam(ordinal int, target Target, desc ParamDesc) error
	DescribeParam(ordinal int) (ParamDesc, error)
}

// ColumnBuffer is the common interface of all buffer variants.
type ColumnBuffer interface {
	Target

	SqlType() sqltype.SqlType
	SetSqlType(t sqltype.SqlType)

	// ColumnSize reports the column size, ok is false if it was never set.
	ColumnSize() (size int, ok bool)
	SetColumnSize(size int)
	// DecimalDigits reports the decimal digits, ok is false if it was never set.
	DecimalDigits() (digits int, ok bool)
	SetDecimalDigits(digits int)

	Flags() ColumnFlags
	SetFlags(flags ColumnFlags)
	SetFlag(flag ColumnFlags)
	ClearFlag(flag ColumnFlags)
	Is(flag ColumnFlags) bool

	IsNull() bool
	SetNull()
	Cb() int64
	SetCb(cb int64)

	// BufferLength is the byte size of the memory region.
	BufferLength() int

	// BindColumn binds the buffer as the result column at the 1-based ordinal.
	BindColumn(ordinal int, b Binder) error

	// BindParameter binds the buffer as the parameter at the 1-based ordinal.
	// If queryParamInfo is true the statement is asked to describe the
	// parameter, otherwise SqlType, ColumnSize and DecimalDigits of the
	// buffer are used and must have been set.
	BindParameter(ordinal int, b Binder, queryParamInfo bool) error

	// Accept dispatches to the visitor method of the concrete variant.
	Accept(v Visitor) error

	sealed()
}

type base struct {
	queryName     string
	sqlType       sqltype.SqlType
	cType         sqltype.CType
	columnSize    int
	decimalDigits int
	flags         ColumnFlags
	ind           LengthIndicator
}

func newBase(queryName string, sqlType sqltype.SqlType, cType sqltype.CType, flags ColumnFlags) base {
	return base{
		queryName:     queryName,
		sqlType:       sqlType,
		cType:         cType,
		columnSize:    -1,
		decimalDigits: -1,
		flags:         flags,
		ind:           NewLengthIndicator(),
	}
}

func (b *base) QueryName() string            { return b.queryName }
func (b *base) CType() sqltype.CType         { return b.cType }
func (b *base) Indicator() *LengthIndicator  { return &b.ind }
func (b *base) SqlType() sqltype.SqlType     { return b.sqlType }
func (b *base) SetSqlType(t sqltype.SqlType) { b.sqlType = t }
func (b *base) Flags() ColumnFlags           { return b.flags }
func (b *base) SetFlags(flags ColumnFlags)   { b.flags = flags }
func (b *base) SetFlag(flag ColumnFlags)     { b.flags.Set(flag) }
func (b *base) ClearFlag(flag ColumnFlags)   { b.flags.Clear(flag) }
func (b *base) Is(flag ColumnFlags) bool     { return b.flags.Has(flag) }
func (b *base) IsNull() bool                 { return b.ind.IsNull() }
func (b *base) SetNull()                     { b.ind.SetNull() }
func (b *base) Cb() int64                    { return b.ind.Cb() }
func (b *base) SetCb(cb int64)               { b.ind.SetCb(cb) }
func (b *base) SetColumnSize(size int)       { b.columnSize = size }
func (b *base) SetDecimalDigits(digits int)  { b.decimalDigits = digits }
func (b *base) ColumnSize() (int, bool)      { return b.columnSize, b.columnSize >= 0 }
func (b *base) DecimalDigits() (int, bool)   { return b.decimalDigits, b.decimalDigits >= 0 }
func (b *base) nullValue() error             { return sqlerr.NullValue(b.queryName) }

func bindColumn(c ColumnBuffer, ordinal int, b Binder) error {
	if ordinal < 1 {
		return sqlerr.Assertion("column ordinal must be 1 or greater, got %d", ordinal)
	}
	if err := b.BindCol(ordinal, c); err != nil {
		return errors.Wrapf(err, "bind column %d '%s'", ordinal, c.QueryName())
	}
	return nil
}

func bindParameter(c ColumnBuffer, ordinal int, b Binder, queryParamInfo bool) error {
	if ordinal < 1 {
		return sqlerr.Assertion("parameter ordinal must be 1 or greater, got %d", ordinal)
	}
	var desc ParamDesc
	if queryParamInfo {
		d, err := b.DescribeParam(ordinal)
		if err != nil {
			return errors.Wrapf(err, "describe parameter %d '%s'", ordinal, c.QueryName())
		}
		desc = d
	} else {
		if c.SqlType() == sqltype.Unknown {
			return sqlerr.Assertion("parameter %d '%s' has no sql type set", ordinal, c.QueryName())
		}
		size, hasSize := c.ColumnSize()
		digits, hasDigits := c.DecimalDigits()
		switch c.SqlType() {
		case sqltype.Numeric, sqltype.Decimal:
			if !hasSize || !hasDigits {
				return sqlerr.Assertion("parameter %d '%s' of type %s needs column size and decimal digits", ordinal, c.QueryName(), c.SqlType())
			}
		case sqltype.TypeTimestamp, sqltype.DateTime:
			if !hasDigits {
				return sqlerr.Assertion("parameter %d '%s' of type %s needs decimal digits", ordinal, c.QueryName(), c.SqlType())
			}
		}
		if !hasSize {
			size = 0
		}
		desc = ParamDesc{SqlType: c.SqlType(), ColumnSize: size, DecimalDigits: digits, Nullable: sqltype.NullableUnknown}
		if c.Is(FlagNullable) {
			desc.Nullable = sqltype.Nullable
		}
	}
	if err := b.BindParam(ordinal, c, desc); err != nil {
		return errors.Wrapf(err, "bind parameter %d '%s'", ordinal, c.QueryName())
	}
	return nil
}
