package dbms

import (
	"strconv"

	"github.com/machbase/neo-odbc/sqltype"
)

// Placeholder selects the positional parameter marker style.
type Placeholder int

const (
	PlaceholderQuestion Placeholder = iota // ?
	PlaceholderDollar                      // $1, $2, ...
)

// Format returns the marker for the 1-based parameter ordinal.
func (p Placeholder) Format(ordinal int) string {
	if p == PlaceholderDollar {
		return "$" + strconv.Itoa(ordinal)
	}
	return "?"
}

// Capabilities describes what a product's driver does and does not do.
// None of the entries are bugs to correct; they are the contract a table
// has to work with.
type Capabilities struct {
	Product DatabaseProduct

	// DescribesParameters is false when the driver cannot describe statement
	// parameters (SQLDescribeParam). Buffers then bind with the SQL type,
	// column size and decimal digits set on them.
	DescribesParameters bool
	// ReportsNumericParams is false when the driver describes parameters but
	// misreports the size and scale of NUMERIC parameters.
	ReportsNumericParams bool
	// TimestampDigits is the number of fractional second digits the product
	// stores. Values with more digits are truncated before binding.
	TimestampDigits int
	// TrimsCharOnWrite is true when trailing spaces of fixed CHAR values are
	// silently removed on insert.
	TrimsCharOnWrite bool
	// PadsWideGlyphs is true when non-ASCII glyphs use a wider on-disk encoding
	// and the padding of CHAR columns grows accordingly.
	PadsWideGlyphs bool
	// MultipleActiveStatements is false when a second open cursor on the same
	// connection blocks or fails until the first one is closed.
	MultipleActiveStatements bool
	// ReportsNoData is false when a searched UPDATE/DELETE that touched no row
	// is not reported as such.
	ReportsNoData bool
	// SupportsPrivileges is false when the catalog cannot list table privileges.
	SupportsPrivileges bool
	// RelativeFetchNeedsBase is true when SQL_FETCH_RELATIVE is only meaningful
	// after an absolute or next fetch established a position.
	RelativeFetchNeedsBase bool
	// ExactNumerics is false when NUMERIC values with a fraction are stored as
	// binary floating point and keep only 15 significant digits.
	ExactNumerics bool
	// UpperCaseIdentifiers is true when unquoted names are stored upper case.
	UpperCaseIdentifiers bool

	Placeholder   Placeholder
	DefaultSchema string

	// Sql2Buffer overrides the default SQL type to buffer type mapping.
	Sql2Buffer map[sqltype.SqlType]sqltype.CType
}

var capabilityTable = map[DatabaseProduct]Capabilities{
	DB2: {
		DescribesParameters:      true,
		ReportsNumericParams:     true,
		TimestampDigits:          6,
		PadsWideGlyphs:           true,
		MultipleActiveStatements: true,
		ReportsNoData:            true,
		SupportsPrivileges:       true,
		ExactNumerics:            true,
		UpperCaseIdentifiers:     true,
	},
	MySQL: {
		DescribesParameters:      true,
		ReportsNumericParams:     false,
		TimestampDigits:          0,
		TrimsCharOnWrite:         true,
		MultipleActiveStatements: true,
		ReportsNoData:            true,
		SupportsPrivileges:       true,
		RelativeFetchNeedsBase:   true,
		ExactNumerics:            true,
	},
	SQLServer: {
		DescribesParameters:      true,
		ReportsNumericParams:     true,
		TimestampDigits:          3,
		MultipleActiveStatements: false,
		ReportsNoData:            true,
		SupportsPrivileges:       true,
		ExactNumerics:            true,
		DefaultSchema:            "dbo",
	},
	Access: {
		DescribesParameters:      false,
		TimestampDigits:          0,
		TrimsCharOnWrite:         true,
		MultipleActiveStatements: true,
		ReportsNoData:            false,
		ExactNumerics:            true,
	},
	Excel: {
		DescribesParameters:      false,
		TimestampDigits:          0,
		MultipleActiveStatements: true,
		ReportsNoData:            false,
	},
	SQLite: {
		DescribesParameters:      false,
		TimestampDigits:          9,
		MultipleActiveStatements: true,
		ReportsNoData:            true,
		ExactNumerics:            false,
		DefaultSchema:            "main",
	},
	PostgreSQL: {
		DescribesParameters:      true,
		ReportsNumericParams:     false,
		TimestampDigits:          6,
		MultipleActiveStatements: false,
		ReportsNoData:            true,
		SupportsPrivileges:       true,
		ExactNumerics:            true,
		Placeholder:              PlaceholderDollar,
		DefaultSchema:            "public",
	},
	DuckDB: {
		DescribesParameters:      false,
		TimestampDigits:          6,
		MultipleActiveStatements: true,
		ReportsNoData:            true,
		ExactNumerics:            true,
		DefaultSchema:            "main",
	},
}

// CapabilitiesOf returns the capability entry of a product. Unknown products
// get a conservative entry: no parameter description and no MAS.
func CapabilitiesOf(p DatabaseProduct) Capabilities {
	c, ok := capabilityTable[p]
	if !ok {
		c = Capabilities{
			TimestampDigits:    9,
			ReportsNoData:      true,
			SupportsPrivileges: true,
			ExactNumerics:      true,
		}
	}
	c.Product = p
	return c
}

// TruncateFraction truncates a nanosecond fraction to the given number of
// fractional digits.
func TruncateFraction(fraction uint32, digits int) uint32 {
	if digits >= 9 || digits < 0 {
		return fraction
	}
	div := uint32(1)
	for i := digits; i < 9; i++ {
		div *= 10
	}
	return fraction / div * div
}
