package catalog

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// SQLite reads metadata from sqlite_master and the table_info pragma.
// SQLite has no privileges, ReadTablePrivileges reports not supported.
type SQLite struct {
	q Querier
}

var _ Catalog = (*SQLite)(nil)

func NewSQLite(q Querier) *SQLite {
	return &SQLite{q: q}
}

func (c *SQLite) FindTables(ctx context.Context, name, schema, catalog, tableType string) ([]TableInfo, error) {
	if schema != "" && !strings.EqualFold(schema, "main") && schema != "%" {
		return nil, nil
	}
	sqlText := `
		select
			name, type
		from
			sqlite_master
		where
			type in ('table', 'view')
			and name not like 'sqlite\_%' escape '\'
			and name like ?
			and upper(type) like ?
		order by name`
	rows, err := c.q.QueryContext(ctx, sqlText, likePattern(name), strings.ToUpper(likePattern(tableType)))
	if err != nil {
		return nil, errors.Wrap(err, "find tables")
	}
	defer rows.Close()

	var ret []TableInfo
	for rows.Next() {
		ti := TableInfo{Schema: "main"}
		if err := rows.Scan(&ti.Name, &ti.Type); err != nil {
			return nil, errors.Wrap(err, "find tables")
		}
		ti.Type = strings.ToUpper(ti.Type)
		ret = append(ret, ti)
	}
	return ret, errors.Wrap(rows.Err(), "find tables")
}

type pragmaColumn struct {
	cid     int
	name    string
	typ     string
	notNull bool
	dflt    sql.NullString
	pk      int
}

func (c *SQLite) tableInfo(ctx context.Context, table TableInfo) ([]pragmaColumn, error) {
	rows, err := c.q.QueryContext(ctx, `select cid, name, type, "notnull", dflt_value, pk from pragma_table_info(?) order by cid`, table.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "read columns of %s", table)
	}
	defer rows.Close()

	var ret []pragmaColumn
	for rows.Next() {
		var pc pragmaColumn
		if err := rows.Scan(&pc.cid, &pc.name, &pc.typ, &pc.notNull, &pc.dflt, &pc.pk); err != nil {
			return nil, errors.Wrapf(err, "read columns of %s", table)
		}
		ret = append(ret, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read columns of %s", table)
	}
	if len(ret) == 0 {
		return nil, sqlerr.NotFound("table %s", table)
	}
	return ret, nil
}

func (c *SQLite) ReadTableColumnInfo(ctx context.Context, table TableInfo) ([]ColumnInfo, error) {
	cols, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	ret := make([]ColumnInfo, 0, len(cols))
	for _, pc := range cols {
		td := ParseTypeName(pc.typ)
		ci := ColumnInfo{
			Schema:            "main",
			Table:             table.Name,
			Column:            pc.name,
			SqlType:           td.SqlType,
			TypeName:          pc.typ,
			ColumnSize:        td.ColumnSize,
			DecimalDigits:     td.DecimalDigits,
			ColumnSizeNull:    !td.HasSize,
			DecimalDigitsNull: !td.HasDigits,
			Nullable:          sqltype.Nullable,
			IsNullable:        "YES",
			Default:           pc.dflt.String,
			OrdinalPosition:   pc.cid + 1,
		}
		if td.HasDigits {
			ci.NumPrecRadix = 10
		}
		if pc.notNull {
			ci.Nullable = sqltype.NoNulls
			ci.IsNullable = "NO"
		}
		if td.SqlType.IsCharacter() || td.SqlType.IsBinary() {
			ci.CharOctetLength = td.ColumnSize
			ci.BufferLength = td.ColumnSize
		}
		ret = append(ret, ci)
	}
	return ret, nil
}

func (c *SQLite) ReadTablePrimaryKeys(ctx context.Context, table TableInfo) ([]PrimaryKeyInfo, error) {
	cols, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	var ret []PrimaryKeyInfo
	for _, pc := range cols {
		if pc.pk == 0 {
			continue
		}
		ret = append(ret, PrimaryKeyInfo{Schema: "main", Table: table.Name, Column: pc.name, KeySequence: pc.pk})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].KeySequence < ret[j].KeySequence })
	return ret, nil
}

func (c *SQLite) ReadTablePrivileges(ctx context.Context, table TableInfo) ([]TablePrivilege, error) {
	return nil, sqlerr.NotSupported("table privileges on sqlite")
}
