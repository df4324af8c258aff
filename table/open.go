package table

import (
	"context"
	"slices"
	"strings"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/machbase/neo-odbc/stmt"
	"github.com/pkg/errors"
)

// Open resolves the table, creates or checks its columns and prepares the
// statements the access flags ask for.
func (t *Table) Open(ctx context.Context, flags OpenFlags) error {
	if t.state != stateClosed {
		return sqlerr.Assertion("open table %s which is already %s", t.info, t.state)
	}
	// trim switched on while closed survives the open flags
	prev := t.openFlags
	t.openFlags = flags | prev&(OpenCharTrimRight|OpenCharTrimLeft)
	if err := t.open(ctx); err != nil {
		t.release()
		t.openFlags = prev
		return err
	}
	t.state = stateOpen
	t.log.Debug("table open", "table", t.info.QueryName(), "access", t.access, "flags", t.openFlags, "columns", len(t.columns))
	return nil
}

func (t *Table) open(ctx context.Context) error {
	if t.lookup || t.openFlags.Has(OpenCheckExistence) {
		if err := t.findTable(ctx); err != nil {
			return err
		}
	}
	if t.openFlags.Has(OpenCheckPrivileges) || t.openFlags.Has(OpenRequirePrivileges) {
		if err := t.checkPrivileges(ctx); err != nil {
			return err
		}
	}
	if len(t.columns) == 0 {
		if err := t.createAutoColumns(ctx); err != nil {
			return err
		}
	}
	t.indexNames()
	t.applyTrim()
	t.defaultTimestampDigits()
	if err := t.resolvePrimaryKeys(ctx); err != nil {
		return err
	}
	return t.prepare(ctx)
}

// findTable replaces the search patterns of info with the one table they
// match. A special query name given by the caller is kept.
func (t *Table) findTable(ctx context.Context) error {
	found, err := t.db.Catalog().FindTables(ctx, t.info.Name, t.info.Schema, t.info.Catalog, t.info.Type)
	if err != nil {
		return errors.Wrapf(err, "find table %s", t.info)
	}
	if len(found) > 1 {
		// the name may hold '_' which matches any character
		exact := slices.DeleteFunc(slices.Clone(found), func(ti catalog.TableInfo) bool {
			return !strings.EqualFold(ti.Name, t.info.Name)
		})
		if len(exact) > 0 {
			found = exact
		}
	}
	switch len(found) {
	case 0:
		return sqlerr.NotFound("table %s", t.info)
	case 1:
	default:
		names := make([]string, len(found))
		for i, ti := range found {
			names[i] = ti.String()
		}
		return sqlerr.IllegalArgument("table %s is ambiguous, found %s", t.info, strings.Join(names, ", "))
	}
	special := t.info.SpecialQueryName
	t.info = found[0]
	if special != "" {
		t.info.SpecialQueryName = special
	}
	t.lookup = false
	return nil
}

func (t *Table) requiredPrivileges() []string {
	var ret []string
	if t.access.Any(AccessSelect) {
		ret = append(ret, catalog.PrivSelect)
	}
	if t.access.Any(AccessInsert) {
		ret = append(ret, catalog.PrivInsert)
	}
	if t.access.Any(AccessUpdate) {
		ret = append(ret, catalog.PrivUpdate)
	}
	if t.access.Any(AccessDelete) {
		ret = append(ret, catalog.PrivDelete)
	}
	return ret
}

// checkPrivileges fails when the catalog does not grant what the access flags
// need. A catalog that cannot tell is only fatal with OpenRequirePrivileges.
func (t *Table) checkPrivileges(ctx context.Context) error {
	privs, err := t.db.Catalog().ReadTablePrivileges(ctx, t.info)
	if err != nil {
		if t.openFlags.Has(OpenRequirePrivileges) {
			return errors.Wrapf(err, "read privileges of %s", t.info)
		}
		t.log.Warn("privileges not checked", "table", t.info.String(), "error", err)
		return nil
	}
	var missing []string
	for _, p := range t.requiredPrivileges() {
		if !catalog.HasPrivilege(privs, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return &sqlerr.PrivilegeError{Table: t.info.String(), Missing: missing}
	}
	return nil
}

func (t *Table) columnFlags(ci catalog.ColumnInfo) buffer.ColumnFlags {
	var f buffer.ColumnFlags
	if t.access.Any(AccessSelect) {
		f.Set(buffer.FlagSelect)
	}
	if t.access.Any(AccessUpdate) {
		f.Set(buffer.FlagUpdate)
	}
	if t.access.Has(AccessInsert) {
		f.Set(buffer.FlagInsert)
	}
	if ci.Nullable == sqltype.Nullable {
		f.Set(buffer.FlagNullable)
	}
	return f
}

func (t *Table) bufferTypeMap() buffer.Sql2BufferTypeMap {
	switch {
	case t.typeMap != nil:
		return t.typeMap
	case t.openFlags.Has(OpenIgnoreDbTypeInfos):
		return buffer.DefaultSql2BufferMap()
	default:
		return t.db.Sql2BufferMap()
	}
}

// createAutoColumns creates a buffer for every column the catalog reports.
// The index of a column is its catalog position, so a skipped column leaves
// a gap.
func (t *Table) createAutoColumns(ctx context.Context) error {
	infos, err := t.db.Catalog().ReadTableColumnInfo(ctx, t.info)
	if err != nil {
		return errors.Wrapf(err, "read columns of %s", t.info)
	}
	if len(infos) == 0 {
		return sqlerr.NotFound("columns of table %s", t.info)
	}
	m := t.bufferTypeMap()
	cols := make(map[int]buffer.ColumnBuffer, len(infos))
	for i, ci := range infos {
		desc := buffer.ColumnDesc{
			QueryName:     ci.Column,
			SqlType:       ci.SqlType,
			ColumnSize:    ci.ColumnSize,
			DecimalDigits: ci.DecimalDigits,
			HasSize:       !ci.ColumnSizeNull,
			HasDigits:     !ci.DecimalDigitsNull,
		}
		b, err := buffer.NewColumnBuffer(m, desc, t.columnFlags(ci))
		if err != nil {
			if errors.Is(err, sqlerr.ErrNotSupported) && t.openFlags.Has(OpenSkipUnsupportedColumns) {
				t.log.Info("skip unsupported column", "table", t.info.String(), "column", ci.Column, "type", ci.TypeName, "sql_type", ci.SqlType)
				continue
			}
			return errors.Wrapf(err, "column %d '%s' of %s", i, ci.Column, t.info)
		}
		cols[i] = b
	}
	if len(cols) == 0 {
		return sqlerr.NotSupported("no column of table %s has a buffer type", t.info)
	}
	// only a complete discovery replaces the columns
	t.columns = cols
	t.autoColumns = true
	return nil
}

// defaultTimestampDigits gives timestamp columns without a fraction length
// the one of the product, so they can be bound without describing them.
func (t *Table) defaultTimestampDigits() {
	digits := t.db.Capabilities().TimestampDigits
	for _, b := range t.columns {
		switch b.SqlType() {
		case sqltype.TypeTimestamp, sqltype.DateTime:
			if _, ok := b.DecimalDigits(); !ok {
				b.SetDecimalDigits(digits)
			}
		}
	}
}

func (t *Table) indexNames() {
	clear(t.names)
	for i, b := range t.columns {
		t.names[strings.ToLower(b.QueryName())] = i
	}
}

// resolvePrimaryKeys marks the primary key buffers. Keys come from
// SetColumnPrimaryKeyIndexes, from buffers already flagged, or from the
// catalog when an operation by key was requested.
func (t *Table) resolvePrimaryKeys(ctx context.Context) error {
	t.pkIndexes = t.pkIndexes[:0]
	writeByKey := t.access.Any(AccessUpdatePK | AccessDeletePK)
	if len(t.manualPK) > 0 {
		for _, i := range t.manualPK {
			b, ok := t.columns[i]
			if !ok {
				return sqlerr.NotFound("primary key column %d of table %s", i, t.info)
			}
			b.SetFlag(buffer.FlagPrimaryKey)
			t.pkIndexes = append(t.pkIndexes, i)
		}
		return nil
	}
	if !t.autoColumns {
		for _, i := range t.ColumnIndexes() {
			if t.columns[i].Is(buffer.FlagPrimaryKey) {
				t.pkIndexes = append(t.pkIndexes, i)
			}
		}
		if len(t.pkIndexes) > 0 {
			return nil
		}
	}
	if !t.access.Any(accessByKey) {
		return nil
	}
	if t.openFlags.Has(OpenDoNotQueryPrimaryKeys) {
		if writeByKey {
			return sqlerr.Assertion("table %s opened for %s without primary keys, set them with SetColumnPrimaryKeyIndexes", t.info, t.access)
		}
		return nil
	}
	pks, err := t.db.Catalog().ReadTablePrimaryKeys(ctx, t.info)
	if err != nil {
		if errors.Is(err, sqlerr.ErrNotSupported) && !writeByKey {
			t.log.Warn("primary keys not read", "table", t.info.String(), "error", err)
			return nil
		}
		return errors.Wrapf(err, "read primary keys of %s", t.info)
	}
	if len(pks) == 0 {
		if writeByKey {
			return sqlerr.NotFound("primary key of table %s", t.info)
		}
		t.log.Warn("table has no primary key", "table", t.info.String())
		return nil
	}
	slices.SortFunc(pks, func(a, b catalog.PrimaryKeyInfo) int { return a.KeySequence - b.KeySequence })
	for _, pk := range pks {
		i, ok := t.names[strings.ToLower(pk.Column)]
		if !ok {
			return sqlerr.NotFound("primary key column '%s' of table %s", pk.Column, t.info)
		}
		t.columns[i].SetFlag(buffer.FlagPrimaryKey)
		t.pkIndexes = append(t.pkIndexes, i)
	}
	return nil
}

// queryParamInfo reports whether the statement is asked to describe the
// parameter bound from b.
func (t *Table) queryParamInfo(b buffer.ColumnBuffer) bool {
	if !t.db.QueryParamInfo() {
		return false
	}
	switch b.SqlType() {
	case sqltype.Numeric, sqltype.Decimal:
		return t.db.Capabilities().ReportsNumericParams
	}
	return true
}

func (t *Table) bindParams(s *stmt.Statement, first int, cols []buffer.ColumnBuffer) error {
	for n, b := range cols {
		if err := b.BindParameter(first+n, s, t.queryParamInfo(b)); err != nil {
			return err
		}
	}
	return nil
}

func bindColumns(s *stmt.Statement, cols []buffer.ColumnBuffer) error {
	for n, b := range cols {
		if err := b.BindColumn(n+1, s); err != nil {
			return err
		}
	}
	return nil
}

// columnsWith returns the buffers carrying flag, ordered by index.
func (t *Table) columnsWith(flag buffer.ColumnFlags) []buffer.ColumnBuffer {
	var ret []buffer.ColumnBuffer
	for _, i := range t.ColumnIndexes() {
		if b := t.columns[i]; b.Is(flag) {
			ret = append(ret, b)
		}
	}
	return ret
}

// setColumns are the columns an UPDATE writes: updatable and not part of the
// primary key.
func (t *Table) setColumns() []buffer.ColumnBuffer {
	var ret []buffer.ColumnBuffer
	for _, b := range t.columnsWith(buffer.FlagUpdate) {
		if !b.Is(buffer.FlagPrimaryKey) {
			ret = append(ret, b)
		}
	}
	return ret
}

func (t *Table) pkColumns() []buffer.ColumnBuffer {
	ret := make([]buffer.ColumnBuffer, len(t.pkIndexes))
	for n, i := range t.pkIndexes {
		ret[n] = t.columns[i]
	}
	return ret
}

func (t *Table) statementOptions() []stmt.Option {
	if t.openFlags.Has(OpenForwardOnlyCursors) {
		return []stmt.Option{stmt.WithCursorType(stmt.CursorForwardOnly)}
	}
	return nil
}

// prepare creates the statements by primary key and for INSERT. Statements
// with a caller supplied WHERE clause are created on every call.
func (t *Table) prepare(ctx context.Context) error {
	g := t.sqlGen()
	if t.access.Has(AccessInsert) {
		cols := t.columnsWith(buffer.FlagInsert)
		if len(cols) > 0 {
			s, err := t.db.PrepareStatement(ctx, g.insert(cols))
			if err != nil {
				return err
			}
			t.insertStmt = s
			if err := t.bindParams(s, 1, cols); err != nil {
				return err
			}
		}
	}
	pks := t.pkColumns()
	if len(pks) == 0 {
		return nil
	}
	if t.access.Has(AccessUpdatePK) {
		set := t.setColumns()
		if len(set) > 0 {
			s, err := t.db.PrepareStatement(ctx, g.update(set, g.pkWhere(pks, len(set)+1)))
			if err != nil {
				return err
			}
			t.updatePKStmt = s
			if err := t.bindParams(s, 1, append(set, pks...)); err != nil {
				return err
			}
		}
	}
	if t.access.Has(AccessDeletePK) {
		s, err := t.db.PrepareStatement(ctx, g.delete(g.pkWhere(pks, 1)))
		if err != nil {
			return err
		}
		t.deletePKStmt = s
		if err := t.bindParams(s, 1, pks); err != nil {
			return err
		}
	}
	if t.access.Has(AccessSelectPK) {
		cols := t.columnsWith(buffer.FlagSelect)
		if len(cols) > 0 {
			s, err := t.db.PrepareStatement(ctx, g.selectWhere(cols, g.pkWhere(pks, 1)))
			if err != nil {
				return err
			}
			t.selectPKStmt = s
			if err := bindColumns(s, cols); err != nil {
				return err
			}
			if err := t.bindParams(s, 1, pks); err != nil {
				return err
			}
		}
	}
	return nil
}

// release closes every statement and drops discovered columns, so the next
// Open discovers them again.
func (t *Table) release() error {
	var err error
	for _, s := range []**stmt.Statement{&t.cursor, &t.insertStmt, &t.updatePKStmt, &t.deletePKStmt, &t.selectPKStmt} {
		if *s == nil {
			continue
		}
		if cerr := (*s).Close(); cerr != nil && err == nil {
			err = cerr
		}
		*s = nil
	}
	t.fetched = false
	if t.autoColumns {
		clear(t.columns)
		clear(t.names)
		t.autoColumns = false
	}
	t.pkIndexes = nil
	return err
}

// Close closes an open cursor and the statements. Discovered columns are
// dropped; columns set with SetColumn stay. The open flags are cleared.
func (t *Table) Close() error {
	if t.state == stateClosed {
		return sqlerr.Assertion("close table %s which is already closed", t.info)
	}
	err := t.release()
	t.openFlags = OpenNone
	t.state = stateClosed
	t.log.Debug("table closed", "table", t.info.QueryName())
	return err
}
