package buffer

import (
	"database/sql/driver"
	"math"
	"strconv"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// ScalarValue lists the value types a Scalar buffer can hold.
type ScalarValue interface {
	int16 | int32 | int64 | float32 | float64 | Numeric | Date | Time | Timestamp
}

// Scalar is a buffer holding a single fixed size value.
type Scalar[T ScalarValue] struct {
	base
	value T
}

var (
	_ ColumnBuffer = (*Scalar[int16])(nil)
	_ ColumnBuffer = (*Scalar[Numeric])(nil)
	_ ColumnBuffer = (*Scalar[Timestamp])(nil)
)

// NewScalar creates a NULL scalar buffer. The C type follows from T; an
// Unknown sqlType is replaced by the SQL type matching T.
func NewScalar[T ScalarValue](queryName string, sqlType sqltype.SqlType, flags ColumnFlags) *Scalar[T] {
	cType := scalarCType[T]()
	if sqlType == sqltype.Unknown {
		sqlType = defaultSqlType(cType)
	}
	return &Scalar[T]{base: newBase(queryName, sqlType, cType, flags)}
}

func NewShort(queryName string, flags ColumnFlags) *Scalar[int16] {
	return NewScalar[int16](queryName, sqltype.SmallInt, flags)
}

func NewLong(queryName string, flags ColumnFlags) *Scalar[int32] {
	return NewScalar[int32](queryName, sqltype.Integer, flags)
}

func NewBigInt(queryName string, flags ColumnFlags) *Scalar[int64] {
	return NewScalar[int64](queryName, sqltype.BigInt, flags)
}

func NewReal(queryName string, flags ColumnFlags) *Scalar[float32] {
	return NewScalar[float32](queryName, sqltype.Real, flags)
}

func NewDouble(queryName string, flags ColumnFlags) *Scalar[float64] {
	return NewScalar[float64](queryName, sqltype.Double, flags)
}

// NewNumericBuffer creates a NUMERIC buffer with the given precision and scale,
// which are also used as column size and decimal digits when binding.
func NewNumericBuffer(queryName string, precision, scale uint8, flags ColumnFlags) *Scalar[Numeric] {
	s := NewScalar[Numeric](queryName, sqltype.Numeric, flags)
	s.SetColumnSize(int(precision))
	s.SetDecimalDigits(int(scale))
	return s
}

func NewDate(queryName string, flags ColumnFlags) *Scalar[Date] {
	return NewScalar[Date](queryName, sqltype.TypeDate, flags)
}

func NewTime(queryName string, flags ColumnFlags) *Scalar[Time] {
	return NewScalar[Time](queryName, sqltype.TypeTime, flags)
}

func NewTimestamp(queryName string, flags ColumnFlags) *Scalar[Timestamp] {
	return NewScalar[Timestamp](queryName, sqltype.TypeTimestamp, flags)
}

func scalarCType[T ScalarValue]() sqltype.CType {
	var zero T
	switch any(zero).(type) {
	case int16:
		return sqltype.CSShort
	case int32:
		return sqltype.CSLong
	case int64:
		return sqltype.CSBigInt
	case float32:
		return sqltype.CFloat
	case float64:
		return sqltype.CDouble
	case Numeric:
		return sqltype.CNumeric
	case Date:
		return sqltype.CTypeDate
	case Time:
		return sqltype.CTypeTime
	default:
		return sqltype.CTimestamp
	}
}

func defaultSqlType(c sqltype.CType) sqltype.SqlType {
	switch c {
	case sqltype.CSShort:
		return sqltype.SmallInt
	case sqltype.CSLong:
		return sqltype.Integer
	case sqltype.CSBigInt:
		return sqltype.BigInt
	case sqltype.CFloat:
		return sqltype.Real
	case sqltype.CDouble:
		return sqltype.Double
	case sqltype.CNumeric:
		return sqltype.Numeric
	case sqltype.CTypeDate:
		return sqltype.TypeDate
	case sqltype.CTypeTime:
		return sqltype.TypeTime
	}
	return sqltype.TypeTimestamp
}

// Value returns the value, or a NullValueError if the buffer is NULL.
func (s *Scalar[T]) Value() (T, error) {
	if s.IsNull() {
		var zero T
		return zero, s.nullValue()
	}
	return s.value, nil
}

// SetValue stores v and clears NULL.
func (s *Scalar[T]) SetValue(v T) {
	s.value = v
	s.ind.SetCb(int64(s.BufferLength()))
}

func (s *Scalar[T]) BufferLength() int {
	return s.cType.Size()
}

func (s *Scalar[T]) BindColumn(ordinal int, b Binder) error {
	return bindColumn(s, ordinal, b)
}

func (s *Scalar[T]) BindParameter(ordinal int, b Binder, queryParamInfo bool) error {
	return bindParameter(s, ordinal, b, queryParamInfo)
}

func (s *Scalar[T]) Accept(v Visitor) error {
	switch b := any(s).(type) {
	case *Scalar[int16]:
		return v.VisitShort(b)
	case *Scalar[int32]:
		return v.VisitLong(b)
	case *Scalar[int64]:
		return v.VisitBigInt(b)
	case *Scalar[float32]:
		return v.VisitReal(b)
	case *Scalar[float64]:
		return v.VisitDouble(b)
	case *Scalar[Numeric]:
		return v.VisitNumeric(b)
	case *Scalar[Date]:
		return v.VisitDate(b)
	case *Scalar[Time]:
		return v.VisitTime(b)
	case *Scalar[Timestamp]:
		return v.VisitTimestamp(b)
	}
	return sqlerr.Assertion("unhandled scalar type %T", s)
}

func (s *Scalar[T]) sealed() {}

// numericShape returns precision and scale for conversions into a NUMERIC
// buffer: the bound column size and decimal digits, else those of the value.
func (s *Scalar[T]) numericShape() (uint8, uint8) {
	var precision, scale uint8
	if n, ok := any(s.value).(Numeric); ok {
		precision, scale = n.Precision, n.Scale
	}
	if size, ok := s.ColumnSize(); ok {
		precision = uint8(size)
	}
	if digits, ok := s.DecimalDigits(); ok {
		scale = uint8(digits)
	}
	return precision, scale
}

func (s *Scalar[T]) Store(src any) error {
	if src == nil {
		s.SetNull()
		return nil
	}
	var v any
	switch any(s.value).(type) {
	case int16:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		if i < math.MinInt16 || i > math.MaxInt16 {
			return sqlerr.IllegalArgument("value %d of '%s' is out of range for %s", i, s.queryName, s.cType)
		}
		v = int16(i)
	case int32:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return sqlerr.IllegalArgument("value %d of '%s' is out of range for %s", i, s.queryName, s.cType)
		}
		v = int32(i)
	case int64:
		i, err := convertInt64(src)
		if err != nil {
			return err
		}
		v = i
	case float32:
		f, err := convertFloat64(src)
		if err != nil {
			return err
		}
		v = float32(f)
	case float64:
		f, err := convertFloat64(src)
		if err != nil {
			return err
		}
		v = f
	case Numeric:
		precision, scale := s.numericShape()
		n, err := convertNumeric(src, precision, scale)
		if err != nil {
			return err
		}
		v = n
	case Date:
		ts, err := convertTimestamp(src)
		if err != nil {
			return err
		}
		v = ts.Date()
	case Time:
		t, err := convertTime(src)
		if err != nil {
			return err
		}
		v = t
	case Timestamp:
		ts, err := convertTimestamp(src)
		if err != nil {
			return err
		}
		v = ts
	}
	s.SetValue(v.(T))
	return nil
}

func (s *Scalar[T]) Load(desc ParamDesc) (driver.Value, error) {
	if s.IsNull() {
		return nil, nil
	}
	switch v := any(s.value).(type) {
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float32:
		// widen through the shortest decimal form, 3.14 stays 3.14
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		return f, nil
	case float64:
		return v, nil
	case Numeric:
		return driverNumeric(v, desc)
	case Date:
		return v.String(), nil
	case Time:
		return v.String(), nil
	case Timestamp:
		return driverTimestamp(v, desc), nil
	}
	return nil, errors.Errorf("Load() does not support %T", s.value)
}
