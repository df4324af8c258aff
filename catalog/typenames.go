package catalog

import (
	"strconv"
	"strings"

	"github.com/machbase/neo-odbc/sqltype"
)

// TypeDesc is what a declared type name tells about a column.
type TypeDesc struct {
	SqlType       sqltype.SqlType
	ColumnSize    int
	DecimalDigits int
	HasSize       bool
	HasDigits     bool
}

var typeNames = map[string]sqltype.SqlType{
	"SMALLINT":                    sqltype.SmallInt,
	"INT2":                        sqltype.SmallInt,
	"TINYINT":                     sqltype.TinyInt,
	"INT":                         sqltype.Integer,
	"INTEGER":                     sqltype.Integer,
	"INT4":                        sqltype.Integer,
	"MEDIUMINT":                   sqltype.Integer,
	"BIGINT":                      sqltype.BigInt,
	"INT8":                        sqltype.BigInt,
	"REAL":                        sqltype.Real,
	"FLOAT4":                      sqltype.Real,
	"FLOAT":                       sqltype.Float,
	"DOUBLE":                      sqltype.Double,
	"DOUBLE PRECISION":            sqltype.Double,
	"FLOAT8":                      sqltype.Double,
	"NUMERIC":                     sqltype.Numeric,
	"DECIMAL":                     sqltype.Decimal,
	"DATE":                        sqltype.TypeDate,
	"TIME":                        sqltype.TypeTime,
	"TIME WITHOUT TIME ZONE":      sqltype.TypeTime,
	"TIMESTAMP":                   sqltype.TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": sqltype.TypeTimestamp,
	"DATETIME":                    sqltype.TypeTimestamp,
	"DATETIME2":                   sqltype.TypeTimestamp,
	"CHAR":                        sqltype.Char,
	"CHARACTER":                   sqltype.Char,
	"BPCHAR":                      sqltype.Char,
	"VARCHAR":                     sqltype.VarChar,
	"CHARACTER VARYING":           sqltype.VarChar,
	"TEXT":                        sqltype.LongVarChar,
	"CLOB":                        sqltype.LongVarChar,
	"NCHAR":                       sqltype.WChar,
	"NVARCHAR":                    sqltype.WVarChar,
	"NTEXT":                       sqltype.WLongVarChar,
	"BINARY":                      sqltype.Binary,
	"VARBINARY":                   sqltype.VarBinary,
	"BLOB":                        sqltype.LongVarBinary,
	"BYTEA":                       sqltype.LongVarBinary,
	"UUID":                        sqltype.Guid,
	"GUID":                        sqltype.Guid,
	"UNIQUEIDENTIFIER":            sqltype.Guid,
	"XML":                         sqltype.SSXml,
}

// ParseTypeName interprets a declared type such as "NUMERIC(18,10)",
// "VARCHAR(128)" or "timestamp without time zone". Unknown names yield
// sqltype.Unknown.
func ParseTypeName(name string) TypeDesc {
	n := strings.ToUpper(strings.TrimSpace(name))
	var args []int
	if open := strings.Index(n, "("); open >= 0 {
		if end := strings.Index(n[open:], ")"); end > 0 {
			for _, a := range strings.Split(n[open+1:open+end], ",") {
				if v, err := strconv.Atoi(strings.TrimSpace(a)); err == nil {
					args = append(args, v)
				}
			}
			n = strings.TrimSpace(n[:open] + n[open+end+1:])
		}
	}
	n = strings.Join(strings.Fields(n), " ")
	td := TypeDesc{SqlType: typeNames[n]}
	if td.SqlType == sqltype.Unknown {
		n = strings.TrimSuffix(n, " UNSIGNED")
		td.SqlType = typeNames[n]
	}
	switch td.SqlType {
	case sqltype.SmallInt:
		td.ColumnSize, td.HasSize = 5, true
		td.DecimalDigits, td.HasDigits = 0, true
	case sqltype.TinyInt:
		td.ColumnSize, td.HasSize = 3, true
		td.DecimalDigits, td.HasDigits = 0, true
	case sqltype.Integer:
		td.ColumnSize, td.HasSize = 10, true
		td.DecimalDigits, td.HasDigits = 0, true
	case sqltype.BigInt:
		td.ColumnSize, td.HasSize = 19, true
		td.DecimalDigits, td.HasDigits = 0, true
	case sqltype.Real:
		td.ColumnSize, td.HasSize = 7, true
	case sqltype.Float, sqltype.Double:
		td.ColumnSize, td.HasSize = 15, true
	case sqltype.Numeric, sqltype.Decimal:
		if len(args) > 0 {
			td.ColumnSize, td.HasSize = args[0], true
			td.DecimalDigits, td.HasDigits = 0, true
		}
		if len(args) > 1 {
			td.DecimalDigits = args[1]
		}
	case sqltype.TypeDate:
		td.ColumnSize, td.HasSize = 10, true
	case sqltype.TypeTime:
		td.ColumnSize, td.HasSize = 8, true
		td.DecimalDigits, td.HasDigits = 0, true
	case sqltype.TypeTimestamp:
		if len(args) > 0 {
			td.DecimalDigits, td.HasDigits = args[0], true
			td.ColumnSize, td.HasSize = 19, true
			if args[0] > 0 {
				td.ColumnSize += 1 + args[0]
			}
		}
	case sqltype.Guid:
		td.ColumnSize, td.HasSize = 16, true
	default:
		if len(args) > 0 {
			td.ColumnSize, td.HasSize = args[0], true
		}
	}
	return td
}
