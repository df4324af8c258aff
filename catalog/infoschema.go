package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// InformationSchema reads metadata from the standard information_schema
// views, available on PostgreSQL, DuckDB, MySQL and SQL Server.
type InformationSchema struct {
	q             Querier
	ph            dbms.Placeholder
	defaultSchema string
	privileges    bool
}

var _ Catalog = (*InformationSchema)(nil)

// NewInformationSchema creates a catalog for a product, using its
// placeholder style and default schema.
func NewInformationSchema(q Querier, caps dbms.Capabilities) *InformationSchema {
	return &InformationSchema{
		q:             q,
		ph:            caps.Placeholder,
		defaultSchema: caps.DefaultSchema,
		privileges:    caps.SupportsPrivileges,
	}
}

func (c *InformationSchema) schemaOf(table TableInfo) string {
	if table.Schema != "" {
		return table.Schema
	}
	return c.defaultSchema
}

func (c *InformationSchema) FindTables(ctx context.Context, name, schema, catalog, tableType string) ([]TableInfo, error) {
	//nolint:gosec // placeholders come from dbms.Placeholder
	sqlText := fmt.Sprintf(`
		select
			table_catalog, table_schema, table_name, table_type
		from
			information_schema.tables
		where
			table_name like %s
			and table_schema like %s
			and table_catalog like %s
			and table_type like %s
		order by table_schema, table_name`,
		c.ph.Format(1), c.ph.Format(2), c.ph.Format(3), c.ph.Format(4))
	// information_schema reports "BASE TABLE", ODBC reports "TABLE"
	typ := strings.ToUpper(tableType)
	if typ == "TABLE" {
		typ = "BASE TABLE"
	}
	rows, err := c.q.QueryContext(ctx, sqlText, likePattern(name), likePattern(schema), likePattern(catalog), likePattern(typ))
	if err != nil {
		return nil, errors.Wrap(err, "find tables")
	}
	defer rows.Close()

	var ret []TableInfo
	for rows.Next() {
		var ti TableInfo
		var cat sql.NullString
		if err := rows.Scan(&cat, &ti.Schema, &ti.Name, &ti.Type); err != nil {
			return nil, errors.Wrap(err, "find tables")
		}
		ti.Catalog = cat.String
		if ti.Type == "BASE TABLE" {
			ti.Type = "TABLE"
		}
		ret = append(ret, ti)
	}
	return ret, errors.Wrap(rows.Err(), "find tables")
}

func (c *InformationSchema) ReadTableColumnInfo(ctx context.Context, table TableInfo) ([]ColumnInfo, error) {
	//nolint:gosec // placeholders come from dbms.Placeholder
	sqlText := fmt.Sprintf(`
		select
			table_catalog, table_schema, table_name, column_name, data_type,
			character_maximum_length, character_octet_length,
			numeric_precision, numeric_precision_radix, numeric_scale, datetime_precision,
			is_nullable, column_default, ordinal_position
		from
			information_schema.columns
		where
			table_schema = %s and table_name = %s
		order by ordinal_position`, c.ph.Format(1), c.ph.Format(2))
	rows, err := c.q.QueryContext(ctx, sqlText, c.schemaOf(table), table.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "read columns of %s", table)
	}
	defer rows.Close()

	var ret []ColumnInfo
	for rows.Next() {
		var ci ColumnInfo
		var cat, dflt sql.NullString
		var charLen, octetLen, precision, radix, scale, dtPrecision sql.NullInt64
		err := rows.Scan(&cat, &ci.Schema, &ci.Table, &ci.Column, &ci.TypeName,
			&charLen, &octetLen, &precision, &radix, &scale, &dtPrecision,
			&ci.IsNullable, &dflt, &ci.OrdinalPosition)
		if err != nil {
			return nil, errors.Wrapf(err, "read columns of %s", table)
		}
		ci.Catalog, ci.Default = cat.String, dflt.String
		td := ParseTypeName(ci.TypeName)
		ci.SqlType = td.SqlType
		ci.ColumnSize, ci.ColumnSizeNull = td.ColumnSize, !td.HasSize
		ci.DecimalDigits, ci.DecimalDigitsNull = td.DecimalDigits, !td.HasDigits
		switch {
		case charLen.Valid:
			ci.ColumnSize, ci.ColumnSizeNull = int(charLen.Int64), false
		case precision.Valid && (td.SqlType == sqltype.Numeric || td.SqlType == sqltype.Decimal):
			ci.ColumnSize, ci.ColumnSizeNull = int(precision.Int64), false
		}
		switch {
		case scale.Valid && (td.SqlType == sqltype.Numeric || td.SqlType == sqltype.Decimal):
			ci.DecimalDigits, ci.DecimalDigitsNull = int(scale.Int64), false
		case dtPrecision.Valid && td.SqlType == sqltype.TypeTimestamp:
			ci.DecimalDigits, ci.DecimalDigitsNull = int(dtPrecision.Int64), false
		}
		ci.CharOctetLength = int(octetLen.Int64)
		ci.NumPrecRadix = int(radix.Int64)
		ci.Nullable = sqltype.Nullable
		if strings.EqualFold(ci.IsNullable, "NO") {
			ci.Nullable = sqltype.NoNulls
		}
		ret = append(ret, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read columns of %s", table)
	}
	if len(ret) == 0 {
		return nil, sqlerr.NotFound("table %s", table)
	}
	return ret, nil
}

func (c *InformationSchema) ReadTablePrimaryKeys(ctx context.Context, table TableInfo) ([]PrimaryKeyInfo, error) {
	//nolint:gosec // placeholders come from dbms.Placeholder
	sqlText := fmt.Sprintf(`
		select
			kcu.table_catalog, kcu.table_schema, kcu.table_name, kcu.column_name,
			kcu.ordinal_position, tc.constraint_name
		from
			information_schema.table_constraints tc
			join information_schema.key_column_usage kcu
				on tc.constraint_name = kcu.constraint_name
				and tc.table_schema = kcu.table_schema
				and tc.table_name = kcu.table_name
		where
			tc.constraint_type = 'PRIMARY KEY'
			and tc.table_schema = %s and tc.table_name = %s
		order by kcu.ordinal_position`, c.ph.Format(1), c.ph.Format(2))
	rows, err := c.q.QueryContext(ctx, sqlText, c.schemaOf(table), table.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "read primary keys of %s", table)
	}
	defer rows.Close()

	var ret []PrimaryKeyInfo
	for rows.Next() {
		var pk PrimaryKeyInfo
		var cat sql.NullString
		if err := rows.Scan(&cat, &pk.Schema, &pk.Table, &pk.Column, &pk.KeySequence, &pk.PKName); err != nil {
			return nil, errors.Wrapf(err, "read primary keys of %s", table)
		}
		pk.Catalog = cat.String
		ret = append(ret, pk)
	}
	return ret, errors.Wrapf(rows.Err(), "read primary keys of %s", table)
}

func (c *InformationSchema) ReadTablePrivileges(ctx context.Context, table TableInfo) ([]TablePrivilege, error) {
	if !c.privileges {
		return nil, sqlerr.NotSupported("table privileges")
	}
	//nolint:gosec // placeholders come from dbms.Placeholder
	sqlText := fmt.Sprintf(`
		select
			table_catalog, table_schema, table_name, grantor, grantee, privilege_type, is_grantable
		from
			information_schema.table_privileges
		where
			table_schema = %s and table_name = %s`, c.ph.Format(1), c.ph.Format(2))
	rows, err := c.q.QueryContext(ctx, sqlText, c.schemaOf(table), table.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "read privileges of %s", table)
	}
	defer rows.Close()

	var ret []TablePrivilege
	for rows.Next() {
		var p TablePrivilege
		var cat, grantor sql.NullString
		if err := rows.Scan(&cat, &p.Schema, &p.Table, &grantor, &p.Grantee, &p.Privilege, &p.Grantable); err != nil {
			return nil, errors.Wrapf(err, "read privileges of %s", table)
		}
		p.Catalog, p.Grantor = cat.String, grantor.String
		ret = append(ret, p)
	}
	return ret, errors.Wrapf(rows.Err(), "read privileges of %s", table)
}
