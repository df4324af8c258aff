// Package dbms identifies the database product behind a connection and holds
// the per-vendor capability table. The table is consulted once, when a
// connection is opened and when a table binds its buffers, instead of
// branching on the vendor wherever a quirk matters.
package dbms

import (
	"strings"
)

type DatabaseProduct int

const (
	UnknownProduct DatabaseProduct = iota
	DB2
	MySQL
	SQLServer
	Access
	Excel
	SQLite
	PostgreSQL
	DuckDB
)

func (p DatabaseProduct) String() string {
	switch p {
	case DB2:
		return "db2"
	case MySQL:
		return "mysql"
	case SQLServer:
		return "mssql"
	case Access:
		return "access"
	case Excel:
		return "excel"
	case SQLite:
		return "sqlite"
	case PostgreSQL:
		return "postgres"
	case DuckDB:
		return "duckdb"
	default:
		return "unknown"
	}
}

// ParseProduct maps a product name, as written in configuration or reported
// by SQL_DBMS_NAME, to a DatabaseProduct.
func ParseProduct(name string) DatabaseProduct {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "":
		return UnknownProduct
	case strings.HasPrefix(n, "db2"):
		return DB2
	case strings.Contains(n, "mysql"):
		return MySQL
	case n == "mssql" || n == "sqlserver" || strings.Contains(n, "sql server"):
		return SQLServer
	case strings.Contains(n, "access") || strings.Contains(n, "ms jet") || n == "ace":
		return Access
	case n == "excel":
		return Excel
	case strings.HasPrefix(n, "sqlite"):
		return SQLite
	case n == "pgx" || strings.HasPrefix(n, "postgres"):
		return PostgreSQL
	case strings.HasPrefix(n, "duckdb"):
		return DuckDB
	}
	return UnknownProduct
}

// ProductForDriver guesses the product from a database/sql driver name.
// Generic bridges such as "odbc" yield UnknownProduct, the product must then
// be configured on the data source.
func ProductForDriver(driverName string) DatabaseProduct {
	switch strings.ToLower(driverName) {
	case "sqlite", "sqlite3":
		return SQLite
	case "pgx", "postgres", "postgresql":
		return PostgreSQL
	case "duckdb":
		return DuckDB
	case "mysql":
		return MySQL
	case "sqlserver", "mssql":
		return SQLServer
	}
	return UnknownProduct
}
