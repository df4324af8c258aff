package buffer

import (
	"maps"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
)

// Sql2BufferTypeMap selects the C buffer type for an SQL type when buffers
// are created from catalog metadata.
type Sql2BufferTypeMap map[sqltype.SqlType]sqltype.CType

// DefaultSql2BufferMap binds narrow character data to CHAR and wide
// character data to WCHAR buffers.
func DefaultSql2BufferMap() Sql2BufferTypeMap {
	return Sql2BufferTypeMap{
		sqltype.SmallInt:      sqltype.CSShort,
		sqltype.TinyInt:       sqltype.CSShort,
		sqltype.Bit:           sqltype.CSShort,
		sqltype.Integer:       sqltype.CSLong,
		sqltype.BigInt:        sqltype.CSBigInt,
		sqltype.Real:          sqltype.CFloat,
		sqltype.Float:         sqltype.CDouble,
		sqltype.Double:        sqltype.CDouble,
		sqltype.Numeric:       sqltype.CNumeric,
		sqltype.Decimal:       sqltype.CNumeric,
		sqltype.TypeDate:      sqltype.CTypeDate,
		sqltype.TypeTime:      sqltype.CTypeTime,
		sqltype.TypeTimestamp: sqltype.CTimestamp,
		sqltype.DateTime:      sqltype.CTimestamp,
		sqltype.Char:          sqltype.CChar,
		sqltype.VarChar:       sqltype.CChar,
		sqltype.LongVarChar:   sqltype.CChar,
		sqltype.WChar:         sqltype.CWChar,
		sqltype.WVarChar:      sqltype.CWChar,
		sqltype.WLongVarChar:  sqltype.CWChar,
		sqltype.Binary:        sqltype.CBinary,
		sqltype.VarBinary:     sqltype.CBinary,
		sqltype.LongVarBinary: sqltype.CBinary,
		sqltype.Guid:          sqltype.CBinary,
	}
}

// WCharSql2BufferMap binds all character data to WCHAR buffers.
func WCharSql2BufferMap() Sql2BufferTypeMap {
	m := DefaultSql2BufferMap()
	for _, t := range []sqltype.SqlType{sqltype.Char, sqltype.VarChar, sqltype.LongVarChar, sqltype.WChar, sqltype.WVarChar, sqltype.WLongVarChar} {
		m[t] = sqltype.CWChar
	}
	return m
}

// CharSql2BufferMap binds all character data to CHAR buffers.
func CharSql2BufferMap() Sql2BufferTypeMap {
	m := DefaultSql2BufferMap()
	for _, t := range []sqltype.SqlType{sqltype.WChar, sqltype.WVarChar, sqltype.WLongVarChar} {
		m[t] = sqltype.CChar
	}
	return m
}

// Register maps t to c, replacing an existing entry.
func (m Sql2BufferTypeMap) Register(t sqltype.SqlType, c sqltype.CType) {
	m[t] = c
}

// Unregister removes t; columns of that type become unsupported.
func (m Sql2BufferTypeMap) Unregister(t sqltype.SqlType) {
	delete(m, t)
}

// With returns a copy of the map with the given overrides applied.
func (m Sql2BufferTypeMap) With(overrides map[sqltype.SqlType]sqltype.CType) Sql2BufferTypeMap {
	ret := maps.Clone(m)
	if ret == nil {
		ret = Sql2BufferTypeMap{}
	}
	maps.Copy(ret, overrides)
	return ret
}

// BufferType returns the C type for t, or a NotSupportedError.
func (m Sql2BufferTypeMap) BufferType(t sqltype.SqlType) (sqltype.CType, error) {
	if c, ok := m[t]; ok {
		return c, nil
	}
	return 0, sqlerr.NotSupported("no buffer type for %s", t)
}

// ColumnDesc is the metadata a buffer is created from.
type ColumnDesc struct {
	QueryName     string
	SqlType       sqltype.SqlType
	ColumnSize    int  // characters or bytes, precision for NUMERIC
	DecimalDigits int  // scale for NUMERIC, fraction digits for TIMESTAMP
	HasSize       bool // ColumnSize was reported
	HasDigits     bool // DecimalDigits was reported
}

// defaultLongSize is the capacity given to character and binary columns
// reported without a size, such as TEXT and BLOB.
const defaultLongSize = 4096

// NewColumnBuffer creates the buffer m selects for d.
func NewColumnBuffer(m Sql2BufferTypeMap, d ColumnDesc, flags ColumnFlags) (ColumnBuffer, error) {
	cType, err := m.BufferType(d.SqlType)
	if err != nil {
		return nil, err
	}
	size := d.ColumnSize
	clamped := d.HasSize && d.SqlType.IsLong() && size > defaultLongSize
	if !d.HasSize || size <= 0 || clamped {
		size = defaultLongSize
	}
	var b ColumnBuffer
	switch cType {
	case sqltype.CShort, sqltype.CSShort:
		b = NewScalar[int16](d.QueryName, d.SqlType, flags)
	case sqltype.CLong, sqltype.CSLong:
		b = NewScalar[int32](d.QueryName, d.SqlType, flags)
	case sqltype.CSBigInt:
		b = NewScalar[int64](d.QueryName, d.SqlType, flags)
	case sqltype.CFloat:
		b = NewScalar[float32](d.QueryName, d.SqlType, flags)
	case sqltype.CDouble:
		b = NewScalar[float64](d.QueryName, d.SqlType, flags)
	case sqltype.CNumeric:
		b = NewScalar[Numeric](d.QueryName, d.SqlType, flags)
	case sqltype.CTypeDate:
		b = NewScalar[Date](d.QueryName, d.SqlType, flags)
	case sqltype.CTypeTime:
		b = NewScalar[Time](d.QueryName, d.SqlType, flags)
	case sqltype.CTimestamp:
		b = NewScalar[Timestamp](d.QueryName, d.SqlType, flags)
	case sqltype.CChar:
		b = NewChar(d.QueryName, d.SqlType, size, flags)
	case sqltype.CWChar:
		b = NewWChar(d.QueryName, d.SqlType, size, flags)
	case sqltype.CBinary:
		if d.SqlType == sqltype.Guid && !d.HasSize {
			size = 16
		}
		b = NewBinary(d.QueryName, d.SqlType, size, flags)
	default:
		return nil, sqlerr.NotSupported("buffer type %s for column '%s'", cType, d.QueryName)
	}
	switch {
	case clamped:
		// a long column is bound with what the buffer holds
		b.SetColumnSize(size)
	case d.HasSize:
		b.SetColumnSize(d.ColumnSize)
	}
	if d.HasDigits {
		b.SetDecimalDigits(d.DecimalDigits)
	}
	return b, nil
}
