package table

import (
	"strings"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/dbms"
)

// sqlGen builds the statement text for one table.
type sqlGen struct {
	name string
	ph   dbms.Placeholder
}

func (t *Table) sqlGen() sqlGen {
	return sqlGen{name: t.info.QueryName(), ph: t.db.Capabilities().Placeholder}
}

func columnList(cols []buffer.ColumnBuffer) string {
	names := make([]string, len(cols))
	for i, b := range cols {
		names[i] = b.QueryName()
	}
	return strings.Join(names, ", ")
}

// assignments renders "c1 = ?, c2 = ?" with parameter ordinals from first.
func (g sqlGen) assignments(cols []buffer.ColumnBuffer, first int, sep string) string {
	parts := make([]string, len(cols))
	for i, b := range cols {
		parts[i] = b.QueryName() + " = " + g.ph.Format(first+i)
	}
	return strings.Join(parts, sep)
}

func (g sqlGen) pkWhere(pks []buffer.ColumnBuffer, first int) string {
	return g.assignments(pks, first, " AND ")
}

func (g sqlGen) selectWhere(cols []buffer.ColumnBuffer, where string) string {
	s := "SELECT " + columnList(cols) + " FROM " + g.name
	if where != "" {
		s += " WHERE " + where
	}
	return s
}

func (g sqlGen) count(where string) string {
	s := "SELECT COUNT(*) FROM " + g.name
	if where != "" {
		s += " WHERE " + where
	}
	return s
}

func (g sqlGen) insert(cols []buffer.ColumnBuffer) string {
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = g.ph.Format(i + 1)
	}
	return "INSERT INTO " + g.name + " (" + columnList(cols) + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

func (g sqlGen) update(set []buffer.ColumnBuffer, where string) string {
	return "UPDATE " + g.name + " SET " + g.assignments(set, 1, ", ") + " WHERE " + where
}

func (g sqlGen) delete(where string) string {
	return "DELETE FROM " + g.name + " WHERE " + where
}
