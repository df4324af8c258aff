package catalog_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		name   string
		expect catalog.TypeDesc
	}{
		{"smallint", catalog.TypeDesc{SqlType: sqltype.SmallInt, ColumnSize: 5, HasSize: true, HasDigits: true}},
		{"INTEGER", catalog.TypeDesc{SqlType: sqltype.Integer, ColumnSize: 10, HasSize: true, HasDigits: true}},
		{"int unsigned", catalog.TypeDesc{SqlType: sqltype.Integer, ColumnSize: 10, HasSize: true, HasDigits: true}},
		{"bigint", catalog.TypeDesc{SqlType: sqltype.BigInt, ColumnSize: 19, HasSize: true, HasDigits: true}},
		{"double precision", catalog.TypeDesc{SqlType: sqltype.Double, ColumnSize: 15, HasSize: true}},
		{"NUMERIC(18, 10)", catalog.TypeDesc{SqlType: sqltype.Numeric, ColumnSize: 18, DecimalDigits: 10, HasSize: true, HasDigits: true}},
		{"decimal(5)", catalog.TypeDesc{SqlType: sqltype.Decimal, ColumnSize: 5, HasSize: true, HasDigits: true}},
		{"numeric", catalog.TypeDesc{SqlType: sqltype.Numeric}},
		{"varchar(128)", catalog.TypeDesc{SqlType: sqltype.VarChar, ColumnSize: 128, HasSize: true}},
		{"character varying(20)", catalog.TypeDesc{SqlType: sqltype.VarChar, ColumnSize: 20, HasSize: true}},
		{"nchar(10)", catalog.TypeDesc{SqlType: sqltype.WChar, ColumnSize: 10, HasSize: true}},
		{"text", catalog.TypeDesc{SqlType: sqltype.LongVarChar}},
		{"varbinary(20)", catalog.TypeDesc{SqlType: sqltype.VarBinary, ColumnSize: 20, HasSize: true}},
		{"date", catalog.TypeDesc{SqlType: sqltype.TypeDate, ColumnSize: 10, HasSize: true}},
		{"time", catalog.TypeDesc{SqlType: sqltype.TypeTime, ColumnSize: 8, HasSize: true, HasDigits: true}},
		{"timestamp", catalog.TypeDesc{SqlType: sqltype.TypeTimestamp}},
		{"timestamp(3)", catalog.TypeDesc{SqlType: sqltype.TypeTimestamp, ColumnSize: 23, DecimalDigits: 3, HasSize: true, HasDigits: true}},
		{"timestamp(0)", catalog.TypeDesc{SqlType: sqltype.TypeTimestamp, ColumnSize: 19, HasSize: true, HasDigits: true}},
		{"timestamp without time zone", catalog.TypeDesc{SqlType: sqltype.TypeTimestamp}},
		{"uuid", catalog.TypeDesc{SqlType: sqltype.Guid, ColumnSize: 16, HasSize: true}},
		{"xml", catalog.TypeDesc{SqlType: sqltype.SSXml}},
		{"geometry", catalog.TypeDesc{SqlType: sqltype.Unknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expect, catalog.ParseTypeName(tt.name))
		})
	}
}

func TestTableInfo(t *testing.T) {
	ti := catalog.TableInfo{Schema: "main", Name: "integertypes"}
	require.Equal(t, "main.integertypes", ti.QueryName())
	require.Equal(t, "main.integertypes", ti.String())

	ti = catalog.TableInfo{Name: "Sheet1$", SpecialQueryName: "[Sheet1$]"}
	require.Equal(t, "[Sheet1$]", ti.QueryName())
	require.Equal(t, "Sheet1$", ti.String())

	privs := []catalog.TablePrivilege{{Privilege: "select"}, {Privilege: "INSERT"}}
	require.True(t, catalog.HasPrivilege(privs, catalog.PrivSelect))
	require.True(t, catalog.HasPrivilege(privs, catalog.PrivInsert))
	require.False(t, catalog.HasPrivilege(privs, catalog.PrivDelete))
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`
		create table numerictypes (
			id integer not null,
			tnumeric_18_10 numeric(18,10),
			tvarchar varchar(20) default 'x',
			primary key (id)
		);
		create table pairkeys (a integer, b integer, v text, primary key (b, a));
		create view v_numerictypes as select id from numerictypes;`)
	require.NoError(t, err)
	return db
}

func TestSQLiteFindTables(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewSQLite(openSQLite(t))

	tables, err := cat.FindTables(ctx, "", "", "", "")
	require.NoError(t, err)
	require.Equal(t, []catalog.TableInfo{
		{Schema: "main", Name: "numerictypes", Type: "TABLE"},
		{Schema: "main", Name: "pairkeys", Type: "TABLE"},
		{Schema: "main", Name: "v_numerictypes", Type: "VIEW"},
	}, tables)

	tables, err = cat.FindTables(ctx, "num%", "main", "", "table")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Equal(t, "numerictypes", tables[0].Name)

	tables, err = cat.FindTables(ctx, "", "public", "", "")
	require.NoError(t, err)
	require.Empty(t, tables)
}

func TestSQLiteColumns(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewSQLite(openSQLite(t))

	cols, err := cat.ReadTableColumnInfo(ctx, catalog.TableInfo{Name: "numerictypes"})
	require.NoError(t, err)
	require.Len(t, cols, 3)

	require.Equal(t, "id", cols[0].Column)
	require.Equal(t, sqltype.Integer, cols[0].SqlType)
	require.Equal(t, sqltype.NoNulls, cols[0].Nullable)
	require.Equal(t, 1, cols[0].OrdinalPosition)

	require.Equal(t, sqltype.Numeric, cols[1].SqlType)
	require.Equal(t, 18, cols[1].ColumnSize)
	require.Equal(t, 10, cols[1].DecimalDigits)
	require.False(t, cols[1].DecimalDigitsNull)
	require.Equal(t, sqltype.Nullable, cols[1].Nullable)

	require.Equal(t, sqltype.VarChar, cols[2].SqlType)
	require.Equal(t, 20, cols[2].ColumnSize)
	require.Equal(t, 20, cols[2].CharOctetLength)
	require.Equal(t, "'x'", cols[2].Default)

	_, err = cat.ReadTableColumnInfo(ctx, catalog.TableInfo{Name: "missing"})
	require.ErrorIs(t, err, sqlerr.ErrNotFound)
}

func TestSQLitePrimaryKeys(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewSQLite(openSQLite(t))

	pks, err := cat.ReadTablePrimaryKeys(ctx, catalog.TableInfo{Name: "pairkeys"})
	require.NoError(t, err)
	require.Len(t, pks, 2)
	require.Equal(t, "b", pks[0].Column)
	require.Equal(t, 1, pks[0].KeySequence)
	require.Equal(t, "a", pks[1].Column)

	_, err = cat.ReadTablePrivileges(ctx, catalog.TableInfo{Name: "pairkeys"})
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)
}

func TestInformationSchemaFindTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`from\s+information_schema\.tables`).
		WithArgs("num%", "%", "%", "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"table_catalog", "table_schema", "table_name", "table_type"}).
			AddRow("neo", "public", "numerictypes", "BASE TABLE"))

	cat := catalog.NewInformationSchema(db, dbms.CapabilitiesOf(dbms.PostgreSQL))
	tables, err := cat.FindTables(context.Background(), "num%", "", "", "TABLE")
	require.NoError(t, err)
	require.Equal(t, []catalog.TableInfo{{Catalog: "neo", Schema: "public", Name: "numerictypes", Type: "TABLE"}}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInformationSchemaColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{
		"table_catalog", "table_schema", "table_name", "column_name", "data_type",
		"character_maximum_length", "character_octet_length",
		"numeric_precision", "numeric_precision_radix", "numeric_scale", "datetime_precision",
		"is_nullable", "column_default", "ordinal_position",
	}
	mock.ExpectQuery(`table_schema = \$1 and table_name = \$2`).
		WithArgs("public", "numerictypes").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("neo", "public", "numerictypes", "id", "integer", nil, nil, 32, 2, 0, nil, "NO", nil, 1).
			AddRow("neo", "public", "numerictypes", "tnumeric_18_10", "numeric", nil, nil, 18, 10, 10, nil, "YES", nil, 2).
			AddRow("neo", "public", "numerictypes", "tts", "timestamp without time zone", nil, nil, nil, nil, nil, 6, "YES", nil, 3).
			AddRow("neo", "public", "numerictypes", "tname", "character varying", 20, 80, nil, nil, nil, nil, "YES", "'x'::character varying", 4))

	cat := catalog.NewInformationSchema(db, dbms.CapabilitiesOf(dbms.PostgreSQL))
	infos, err := cat.ReadTableColumnInfo(context.Background(), catalog.TableInfo{Name: "numerictypes"})
	require.NoError(t, err)
	require.Len(t, infos, 4)

	require.Equal(t, sqltype.Integer, infos[0].SqlType)
	require.Equal(t, 10, infos[0].ColumnSize)
	require.Equal(t, sqltype.NoNulls, infos[0].Nullable)

	require.Equal(t, sqltype.Numeric, infos[1].SqlType)
	require.Equal(t, 18, infos[1].ColumnSize)
	require.Equal(t, 10, infos[1].DecimalDigits)
	require.False(t, infos[1].ColumnSizeNull)

	require.Equal(t, sqltype.TypeTimestamp, infos[2].SqlType)
	require.Equal(t, 6, infos[2].DecimalDigits)
	require.False(t, infos[2].DecimalDigitsNull)

	require.Equal(t, sqltype.VarChar, infos[3].SqlType)
	require.Equal(t, 20, infos[3].ColumnSize)
	require.Equal(t, 80, infos[3].CharOctetLength)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInformationSchemaPrimaryKeysAndPrivileges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`constraint_type = 'PRIMARY KEY'`).
		WithArgs("main", "pairkeys").
		WillReturnRows(sqlmock.NewRows([]string{"table_catalog", "table_schema", "table_name", "column_name", "ordinal_position", "constraint_name"}).
			AddRow(nil, "main", "pairkeys", "b", 1, "pairkeys_pkey").
			AddRow(nil, "main", "pairkeys", "a", 2, "pairkeys_pkey"))

	duck := catalog.NewInformationSchema(db, dbms.CapabilitiesOf(dbms.DuckDB))
	pks, err := duck.ReadTablePrimaryKeys(context.Background(), catalog.TableInfo{Name: "pairkeys"})
	require.NoError(t, err)
	require.Equal(t, []catalog.PrimaryKeyInfo{
		{Schema: "main", Table: "pairkeys", Column: "b", KeySequence: 1, PKName: "pairkeys_pkey"},
		{Schema: "main", Table: "pairkeys", Column: "a", KeySequence: 2, PKName: "pairkeys_pkey"},
	}, pks)

	_, err = duck.ReadTablePrivileges(context.Background(), catalog.TableInfo{Name: "pairkeys"})
	require.ErrorIs(t, err, sqlerr.ErrNotSupported)

	mock.ExpectQuery(`information_schema\.table_privileges`).
		WithArgs("public", "pairkeys").
		WillReturnRows(sqlmock.NewRows([]string{"table_catalog", "table_schema", "table_name", "grantor", "grantee", "privilege_type", "is_grantable"}).
			AddRow("neo", "public", "pairkeys", "neo", "neo", "SELECT", "YES").
			AddRow("neo", "public", "pairkeys", "neo", "neo", "INSERT", "YES"))

	pg := catalog.NewInformationSchema(db, dbms.CapabilitiesOf(dbms.PostgreSQL))
	privs, err := pg.ReadTablePrivileges(context.Background(), catalog.TableInfo{Name: "pairkeys"})
	require.NoError(t, err)
	require.True(t, catalog.HasPrivilege(privs, catalog.PrivSelect))
	require.False(t, catalog.HasPrivilege(privs, catalog.PrivUpdate))
	require.NoError(t, mock.ExpectationsWereMet())
}
