package sqltype_test

import (
	"testing"

	"github.com/machbase/neo-odbc/sqltype"
	"github.com/stretchr/testify/require"
)

func TestSqlTypeString(t *testing.T) {
	require.Equal(t, "SQL_SMALLINT", sqltype.SmallInt.String())
	require.Equal(t, "SQL_TYPE_TIMESTAMP", sqltype.TypeTimestamp.String())
	require.Equal(t, "SQL_WVARCHAR", sqltype.WVarChar.String())
	require.Equal(t, "SQL_TYPE(-154)", sqltype.SqlType(-154).String())
}

func TestSqlTypeClasses(t *testing.T) {
	require.True(t, sqltype.WChar.IsCharacter())
	require.True(t, sqltype.WChar.IsWide())
	require.False(t, sqltype.VarChar.IsWide())
	require.True(t, sqltype.VarBinary.IsBinary())
	require.True(t, sqltype.Char.IsFixedLength())
	require.False(t, sqltype.VarChar.IsFixedLength())
	require.True(t, sqltype.LongVarChar.IsLong())
}

func TestCType(t *testing.T) {
	require.Equal(t, sqltype.CType(-15), sqltype.CSShort)
	require.Equal(t, sqltype.CType(-16), sqltype.CSLong)
	require.Equal(t, sqltype.CType(-25), sqltype.CSBigInt)
	require.Equal(t, sqltype.CType(-27), sqltype.CUBigInt)
	require.Equal(t, "SQL_C_SBIGINT", sqltype.CSBigInt.String())

	require.Equal(t, 2, sqltype.CSShort.Size())
	require.Equal(t, 8, sqltype.CDouble.Size())
	require.Equal(t, 19, sqltype.CNumeric.Size())
	require.Equal(t, 16, sqltype.CTimestamp.Size())
	require.Equal(t, 0, sqltype.CChar.Size())
}

func TestFetchOrientation(t *testing.T) {
	require.Equal(t, "SQL_FETCH_RELATIVE", sqltype.FetchRelative.String())
	require.Equal(t, "SQL_FETCH(9)", sqltype.FetchOrientation(9).String())
}
