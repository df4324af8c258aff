// Package catalog reads table, column, primary key and privilege metadata.
//
// The records mirror the result sets of the ODBC catalog functions
// (SQLTables, SQLColumns, SQLPrimaryKeys, SQLTablePrivileges). They are only
// used while a table discovers its columns and are not kept afterwards.
package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/machbase/neo-odbc/sqltype"
)

// Querier is implemented by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Catalog is the metadata provider a table consumes. Implementations return
// a NotSupportedError for functions the underlying database cannot serve.
type Catalog interface {
	// FindTables lists tables matching the given patterns. Empty patterns
	// match everything, '%' and '_' are wildcards.
	FindTables(ctx context.Context, name, schema, catalog, tableType string) ([]TableInfo, error)
	ReadTableColumnInfo(ctx context.Context, table TableInfo) ([]ColumnInfo, error)
	ReadTablePrimaryKeys(ctx context.Context, table TableInfo) ([]PrimaryKeyInfo, error)
	ReadTablePrivileges(ctx context.Context, table TableInfo) ([]TablePrivilege, error)
}

// TableInfo identifies a table. SpecialQueryName overrides the name used in
// generated statements, for sources whose catalog name differs from the name
// they can be queried by (spreadsheet sheets reported as "Sheet1$" but
// queried as "[Sheet1$]").
type TableInfo struct {
	Catalog          string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Schema           string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name             string `json:"name" yaml:"name"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty"`
	SpecialQueryName string `json:"special_query_name,omitempty" yaml:"special_query_name,omitempty"`
}

// QueryName returns the name to use in SQL text.
func (ti TableInfo) QueryName() string {
	if ti.SpecialQueryName != "" {
		return ti.SpecialQueryName
	}
	if ti.Schema != "" {
		return ti.Schema + "." + ti.Name
	}
	return ti.Name
}

func (ti TableInfo) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ti.Catalog, ti.Schema, ti.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// ColumnInfo is one row of SQLColumns.
type ColumnInfo struct {
	Catalog         string              `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Schema          string              `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table           string              `json:"table" yaml:"table"`
	Column          string              `json:"column" yaml:"column"`
	SqlType         sqltype.SqlType     `json:"sql_type" yaml:"sql_type"`
	TypeName        string              `json:"type_name" yaml:"type_name"`
	ColumnSize      int                 `json:"column_size" yaml:"column_size"`
	BufferLength    int                 `json:"buffer_length" yaml:"buffer_length"`
	DecimalDigits   int                 `json:"decimal_digits" yaml:"decimal_digits"`
	NumPrecRadix    int                 `json:"num_prec_radix,omitempty" yaml:"num_prec_radix,omitempty"`
	Nullable        sqltype.Nullability `json:"nullable" yaml:"nullable"`
	Remarks         string              `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Default         string              `json:"default,omitempty" yaml:"default,omitempty"`
	CharOctetLength int                 `json:"char_octet_length,omitempty" yaml:"char_octet_length,omitempty"`
	OrdinalPosition int                 `json:"ordinal_position" yaml:"ordinal_position"`
	IsNullable      string              `json:"is_nullable" yaml:"is_nullable"`

	// ColumnSizeNull and DecimalDigitsNull are set when the catalog
	// reported NULL for the respective field.
	ColumnSizeNull    bool `json:"-" yaml:"-"`
	DecimalDigitsNull bool `json:"-" yaml:"-"`
}

// PrimaryKeyInfo is one row of SQLPrimaryKeys.
type PrimaryKeyInfo struct {
	Catalog     string
	Schema      string
	Table       string
	Column      string
	KeySequence int
	PKName      string
}

// TablePrivilege is one row of SQLTablePrivileges.
type TablePrivilege struct {
	Catalog   string
	Schema    string
	Table     string
	Grantor   string
	Grantee   string
	Privilege string
	Grantable string
}

// Privilege names as reported by the catalog.
const (
	PrivSelect = "SELECT"
	PrivInsert = "INSERT"
	PrivUpdate = "UPDATE"
	PrivDelete = "DELETE"
)

// HasPrivilege reports whether privs grant priv, comparing case-insensitively.
func HasPrivilege(privs []TablePrivilege, priv string) bool {
	for _, p := range privs {
		if strings.EqualFold(p.Privilege, priv) {
			return true
		}
	}
	return false
}

// likePattern turns an empty search pattern into a match-all pattern.
func likePattern(p string) string {
	if p == "" {
		return "%"
	}
	return p
}
