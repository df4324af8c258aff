package table

import "strings"

// AccessFlags select the operations a table is opened for.
type AccessFlags uint32

const (
	AccessNone        AccessFlags = 0
	AccessSelectPK    AccessFlags = 1 << 0
	AccessSelectWhere AccessFlags = 1 << 1
	AccessUpdatePK    AccessFlags = 1 << 2
	AccessUpdateWhere AccessFlags = 1 << 3
	AccessInsert      AccessFlags = 1 << 4
	AccessDeletePK    AccessFlags = 1 << 5
	AccessDeleteWhere AccessFlags = 1 << 6

	AccessSelect    = AccessSelectPK | AccessSelectWhere
	AccessUpdate    = AccessUpdatePK | AccessUpdateWhere
	AccessDelete    = AccessDeletePK | AccessDeleteWhere
	AccessRead      = AccessSelect
	AccessWrite     = AccessUpdate | AccessInsert | AccessDelete
	AccessReadWrite = AccessRead | AccessWrite

	// accessByKey are the operations that need a primary key.
	accessByKey = AccessSelectPK | AccessUpdatePK | AccessDeletePK
)

var accessNames = []struct {
	flag AccessFlags
	name string
}{
	{AccessSelectPK, "SELECT_PK"},
	{AccessSelectWhere, "SELECT_WHERE"},
	{AccessUpdatePK, "UPDATE_PK"},
	{AccessUpdateWhere, "UPDATE_WHERE"},
	{AccessInsert, "INSERT"},
	{AccessDeletePK, "DELETE_PK"},
	{AccessDeleteWhere, "DELETE_WHERE"},
}

func (f AccessFlags) Has(flag AccessFlags) bool { return f&flag == flag }
func (f AccessFlags) Any(flag AccessFlags) bool { return f&flag != 0 }

func (f AccessFlags) String() string {
	if f == AccessNone {
		return "NONE"
	}
	var parts []string
	for _, n := range accessNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// OpenFlags modify how Open discovers and binds the columns.
type OpenFlags uint32

const (
	OpenNone OpenFlags = 0
	// OpenCheckPrivileges validates the access flags against the catalog
	// privileges. A catalog that cannot report privileges is logged and
	// ignored.
	OpenCheckPrivileges OpenFlags = 1 << 0
	// OpenRequirePrivileges is OpenCheckPrivileges failing when the catalog
	// cannot report privileges.
	OpenRequirePrivileges OpenFlags = 1 << 1
	// OpenCheckExistence looks the table up in the catalog even when the
	// columns were set manually.
	OpenCheckExistence OpenFlags = 1 << 2
	// OpenSkipUnsupportedColumns omits columns whose SQL type has no buffer
	// type instead of failing.
	OpenSkipUnsupportedColumns OpenFlags = 1 << 3
	// OpenDoNotQueryPrimaryKeys skips primary key discovery.
	OpenDoNotQueryPrimaryKeys OpenFlags = 1 << 4
	// OpenIgnoreDbTypeInfos maps column types with the table's type map only,
	// without the product's overrides.
	OpenIgnoreDbTypeInfos OpenFlags = 1 << 5
	// OpenForwardOnlyCursors streams selected rows; only SelectNext works.
	OpenForwardOnlyCursors OpenFlags = 1 << 6
	OpenCharTrimRight      OpenFlags = 1 << 7
	OpenCharTrimLeft       OpenFlags = 1 << 8
)

var openNames = []struct {
	flag OpenFlags
	name string
}{
	{OpenCheckPrivileges, "CHECK_PRIVILEGES"},
	{OpenRequirePrivileges, "REQUIRE_PRIVILEGES"},
	{OpenCheckExistence, "CHECK_EXISTENCE"},
	{OpenSkipUnsupportedColumns, "SKIP_UNSUPPORTED_COLUMNS"},
	{OpenDoNotQueryPrimaryKeys, "DO_NOT_QUERY_PRIMARY_KEYS"},
	{OpenIgnoreDbTypeInfos, "IGNORE_DB_TYPE_INFOS"},
	{OpenForwardOnlyCursors, "FORWARD_ONLY_CURSORS"},
	{OpenCharTrimRight, "CHAR_TRIM_RIGHT"},
	{OpenCharTrimLeft, "CHAR_TRIM_LEFT"},
}

func (f OpenFlags) Has(flag OpenFlags) bool { return f&flag == flag }

func (f OpenFlags) String() string {
	if f == OpenNone {
		return "NONE"
	}
	var parts []string
	for _, n := range openNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseOpenFlags parses names as printed by OpenFlags.String, separated by
// '|' or ','. Matching is case-insensitive.
func ParseOpenFlags(s string) (OpenFlags, bool) {
	var ret OpenFlags
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" || p == "NONE" {
			continue
		}
		found := false
		for _, n := range openNames {
			if n.name == p {
				ret |= n.flag
				found = true
			}
		}
		if !found {
			return ret, false
		}
	}
	return ret, true
}
