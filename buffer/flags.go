package buffer

import "strings"

// ColumnFlags tags what a column buffer takes part in.
type ColumnFlags uint32

const (
	FlagNone       ColumnFlags = 0
	FlagSelect     ColumnFlags = 0x1
	FlagUpdate     ColumnFlags = 0x2
	FlagInsert     ColumnFlags = 0x4
	FlagNullable   ColumnFlags = 0x8
	FlagPrimaryKey ColumnFlags = 0x10

	FlagRead      = FlagSelect
	FlagWrite     = FlagUpdate | FlagInsert
	FlagReadWrite = FlagRead | FlagWrite
)

func (f ColumnFlags) Has(flag ColumnFlags) bool {
	return f&flag == flag
}

func (f *ColumnFlags) Set(flag ColumnFlags) {
	*f |= flag
}

func (f *ColumnFlags) Clear(flag ColumnFlags) {
	*f &^= flag
}

func (f ColumnFlags) String() string {
	if f == FlagNone {
		return "NONE"
	}
	var parts []string
	for _, n := range []struct {
		flag ColumnFlags
		name string
	}{
		{FlagSelect, "SELECT"},
		{FlagUpdate, "UPDATE"},
		{FlagInsert, "INSERT"},
		{FlagNullable, "NULLABLE"},
		{FlagPrimaryKey, "PRIMARY_KEY"},
	} {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
