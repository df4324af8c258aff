package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// pgDescriber describes parameters by preparing the statement text as an
// unnamed statement and reading the parameter type OIDs.
type pgDescriber struct {
	db *Database
}

func (p pgDescriber) DescribeParams(ctx context.Context, sqlText string) ([]buffer.ParamDesc, error) {
	var sd *pgconn.StatementDescription
	err := p.db.conn.Raw(func(dc any) error {
		c, ok := dc.(*stdlib.Conn)
		if !ok {
			return sqlerr.NotSupported("describe parameters on %T", dc)
		}
		var err error
		sd, err = c.Conn().PgConn().Prepare(ctx, "", sqlText, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, sqlerr.ErrNotSupported) {
			return nil, err
		}
		return nil, DecodeError("SQLDescribeParam", err)
	}
	ret := make([]buffer.ParamDesc, len(sd.ParamOIDs))
	for i, oid := range sd.ParamOIDs {
		ret[i] = pgParamDesc(oid, p.db.caps)
	}
	return ret, nil
}

// pgParamDesc derives an ODBC parameter description from a type OID. The
// OID carries no size or scale, so NUMERIC digits stay unknown.
func pgParamDesc(oid uint32, caps dbms.Capabilities) buffer.ParamDesc {
	d := buffer.ParamDesc{DecimalDigits: -1, Nullable: sqltype.NullableUnknown}
	switch oid {
	case pgtype.Int2OID:
		d.SqlType, d.ColumnSize, d.DecimalDigits = sqltype.SmallInt, 5, 0
	case pgtype.Int4OID:
		d.SqlType, d.ColumnSize, d.DecimalDigits = sqltype.Integer, 10, 0
	case pgtype.Int8OID:
		d.SqlType, d.ColumnSize, d.DecimalDigits = sqltype.BigInt, 19, 0
	case pgtype.Float4OID:
		d.SqlType, d.ColumnSize = sqltype.Real, 7
	case pgtype.Float8OID:
		d.SqlType, d.ColumnSize = sqltype.Double, 15
	case pgtype.NumericOID:
		d.SqlType = sqltype.Numeric
	case pgtype.DateOID:
		d.SqlType, d.ColumnSize = sqltype.TypeDate, 10
	case pgtype.TimeOID:
		d.SqlType, d.ColumnSize, d.DecimalDigits = sqltype.TypeTime, 8, 0
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		d.SqlType, d.DecimalDigits = sqltype.TypeTimestamp, caps.TimestampDigits
		d.ColumnSize = 19
		if caps.TimestampDigits > 0 {
			d.ColumnSize += 1 + caps.TimestampDigits
		}
	case pgtype.BPCharOID:
		d.SqlType = sqltype.Char
	case pgtype.VarcharOID:
		d.SqlType = sqltype.VarChar
	case pgtype.TextOID:
		d.SqlType = sqltype.LongVarChar
	case pgtype.ByteaOID:
		d.SqlType = sqltype.LongVarBinary
	case pgtype.UUIDOID:
		d.SqlType, d.ColumnSize = sqltype.Guid, 16
	case pgtype.BoolOID:
		d.SqlType, d.ColumnSize = sqltype.Bit, 1
	}
	return d
}
