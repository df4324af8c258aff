// Package sqltype holds the SQL and C type codes shared by buffers, statements
// and the catalog. The numeric values are the ODBC 3.x codes so metadata read
// from a driver can be compared without translation.
package sqltype

import "fmt"

// SqlType is an SQL data type code as reported by the catalog (DATA_TYPE).
type SqlType int16

const (
	Unknown       SqlType = 0
	Char          SqlType = 1
	Numeric       SqlType = 2
	Decimal       SqlType = 3
	Integer       SqlType = 4
	SmallInt      SqlType = 5
	Float         SqlType = 6
	Real          SqlType = 7
	Double        SqlType = 8
	DateTime      SqlType = 9
	VarChar       SqlType = 12
	TypeDate      SqlType = 91
	TypeTime      SqlType = 92
	TypeTimestamp SqlType = 93
	LongVarChar   SqlType = -1
	Binary        SqlType = -2
	VarBinary     SqlType = -3
	LongVarBinary SqlType = -4
	BigInt        SqlType = -5
	TinyInt       SqlType = -6
	Bit           SqlType = -7
	WChar         SqlType = -8
	WVarChar      SqlType = -9
	WLongVarChar  SqlType = -10
	Guid          SqlType = -11
	// SQL Server specific.
	SSXml SqlType = -152
)

func (t SqlType) String() string {
	switch t {
	case Unknown:
		return "SQL_UNKNOWN_TYPE"
	case Char:
		return "SQL_CHAR"
	case Numeric:
		return "SQL_NUMERIC"
	case Decimal:
		return "SQL_DECIMAL"
	case Integer:
		return "SQL_INTEGER"
	case SmallInt:
		return "SQL_SMALLINT"
	case Float:
		return "SQL_FLOAT"
	case Real:
		return "SQL_REAL"
	case Double:
		return "SQL_DOUBLE"
	case DateTime:
		return "SQL_DATETIME"
	case VarChar:
		return "SQL_VARCHAR"
	case TypeDate:
		return "SQL_TYPE_DATE"
	case TypeTime:
		return "SQL_TYPE_TIME"
	case TypeTimestamp:
		return "SQL_TYPE_TIMESTAMP"
	case LongVarChar:
		return "SQL_LONGVARCHAR"
	case Binary:
		return "SQL_BINARY"
	case VarBinary:
		return "SQL_VARBINARY"
	case LongVarBinary:
		return "SQL_LONGVARBINARY"
	case BigInt:
		return "SQL_BIGINT"
	case TinyInt:
		return "SQL_TINYINT"
	case Bit:
		return "SQL_BIT"
	case WChar:
		return "SQL_WCHAR"
	case WVarChar:
		return "SQL_WVARCHAR"
	case WLongVarChar:
		return "SQL_WLONGVARCHAR"
	case Guid:
		return "SQL_GUID"
	case SSXml:
		return "SQL_SS_XML"
	default:
		return fmt.Sprintf("SQL_TYPE(%d)", int16(t))
	}
}

// IsCharacter returns true for the narrow and wide character types.
func (t SqlType) IsCharacter() bool {
	switch t {
	case Char, VarChar, LongVarChar, WChar, WVarChar, WLongVarChar:
		return true
	}
	return false
}

// IsWide returns true for the wide (unicode) character types.
func (t SqlType) IsWide() bool {
	return t == WChar || t == WVarChar || t == WLongVarChar
}

// IsBinary returns true for the binary types.
func (t SqlType) IsBinary() bool {
	return t == Binary || t == VarBinary || t == LongVarBinary
}

// IsFixedLength returns true for types whose values are padded to the column size.
func (t SqlType) IsFixedLength() bool {
	return t == Char || t == WChar || t == Binary
}

// IsLong returns true for the long variable types, whose reported column size
// is not usable as a buffer capacity.
func (t SqlType) IsLong() bool {
	return t == LongVarChar || t == WLongVarChar || t == LongVarBinary || t == SSXml
}

// CType is a C buffer type code (the TargetType / ValueType of a bind).
type CType int16

const (
	CDefault   CType = 99
	CChar      CType = CType(Char)
	CWChar     CType = CType(WChar)
	CBinary    CType = CType(Binary)
	CShort     CType = CType(SmallInt)
	CLong      CType = CType(Integer)
	CFloat     CType = CType(Real)
	CDouble    CType = CType(Double)
	CNumeric   CType = CType(Numeric)
	CBit       CType = CType(Bit)
	CGuid      CType = CType(Guid)
	CTypeDate  CType = CType(TypeDate)
	CTypeTime  CType = CType(TypeTime)
	CTimestamp CType = CType(TypeTimestamp)

	signedOffset   = -20
	unsignedOffset = -22

	CSShort   CType = CShort + signedOffset
	CSLong    CType = CLong + signedOffset
	CSBigInt  CType = CType(BigInt) + signedOffset
	CUBigInt  CType = CType(BigInt) + unsignedOffset
	CSTinyInt CType = CType(TinyInt) + signedOffset
)

func (t CType) String() string {
	switch t {
	case CDefault:
		return "SQL_C_DEFAULT"
	case CChar:
		return "SQL_C_CHAR"
	case CWChar:
		return "SQL_C_WCHAR"
	case CBinary:
		return "SQL_C_BINARY"
	case CShort:
		return "SQL_C_SHORT"
	case CLong:
		return "SQL_C_LONG"
	case CFloat:
		return "SQL_C_FLOAT"
	case CDouble:
		return "SQL_C_DOUBLE"
	case CNumeric:
		return "SQL_C_NUMERIC"
	case CBit:
		return "SQL_C_BIT"
	case CGuid:
		return "SQL_C_GUID"
	case CTypeDate:
		return "SQL_C_TYPE_DATE"
	case CTypeTime:
		return "SQL_C_TYPE_TIME"
	case CTimestamp:
		return "SQL_C_TYPE_TIMESTAMP"
	case CSShort:
		return "SQL_C_SSHORT"
	case CSLong:
		return "SQL_C_SLONG"
	case CSBigInt:
		return "SQL_C_SBIGINT"
	case CUBigInt:
		return "SQL_C_UBIGINT"
	case CSTinyInt:
		return "SQL_C_STINYINT"
	default:
		return fmt.Sprintf("SQL_C_TYPE(%d)", int16(t))
	}
}

// Size returns the fixed byte size of a C type, or 0 for the variable
// length types (CHAR, WCHAR, BINARY).
func (t CType) Size() int {
	switch t {
	case CShort, CSShort:
		return 2
	case CLong, CSLong, CFloat:
		return 4
	case CSBigInt, CUBigInt, CDouble:
		return 8
	case CSTinyInt, CBit:
		return 1
	case CNumeric:
		return NumericStructSize
	case CTypeDate:
		return DateStructSize
	case CTypeTime:
		return TimeStructSize
	case CTimestamp:
		return TimestampStructSize
	case CGuid:
		return 16
	}
	return 0
}

// Byte sizes of the fixed C structs.
const (
	NumericStructSize   = 19 // precision, scale, sign, val[16]
	DateStructSize      = 6  // year int16, month uint16, day uint16
	TimeStructSize      = 6  // hour, minute, second uint16
	TimestampStructSize = 16 // year int16, 5 x uint16, fraction uint32
	NumericMaxLen       = 16
)

// Length/indicator sentinels.
const (
	NullData   int64 = -1
	DataAtExec int64 = -2
	NTS        int64 = -3
	NoTotal    int64 = -4
)

// FetchOrientation selects the row a scrollable fetch moves to.
type FetchOrientation int16

const (
	FetchNext     FetchOrientation = 1
	FetchFirst    FetchOrientation = 2
	FetchLast     FetchOrientation = 3
	FetchPrior    FetchOrientation = 4
	FetchAbsolute FetchOrientation = 5
	FetchRelative FetchOrientation = 6
)

func (o FetchOrientation) String() string {
	switch o {
	case FetchNext:
		return "SQL_FETCH_NEXT"
	case FetchFirst:
		return "SQL_FETCH_FIRST"
	case FetchLast:
		return "SQL_FETCH_LAST"
	case FetchPrior:
		return "SQL_FETCH_PRIOR"
	case FetchAbsolute:
		return "SQL_FETCH_ABSOLUTE"
	case FetchRelative:
		return "SQL_FETCH_RELATIVE"
	default:
		return fmt.Sprintf("SQL_FETCH(%d)", int16(o))
	}
}

// Nullability as reported by the catalog.
type Nullability int16

const (
	NoNulls         Nullability = 0
	Nullable        Nullability = 1
	NullableUnknown Nullability = 2
)
