package table

import (
	"context"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// Insert inserts the values of the insertable columns.
func (t *Table) Insert(ctx context.Context) error {
	if err := t.requireOpen("Insert"); err != nil {
		return err
	}
	if err := t.requireAccess("Insert", AccessInsert); err != nil {
		return err
	}
	if t.insertStmt == nil {
		return sqlerr.Assertion("table %s has no insertable column", t.info)
	}
	_, err := t.insertStmt.Execute(ctx)
	return err
}

// Update writes the updatable columns to the row identified by the primary
// key columns.
func (t *Table) Update(ctx context.Context) error {
	if err := t.requireOpen("Update"); err != nil {
		return err
	}
	if err := t.requireAccess("Update", AccessUpdatePK); err != nil {
		return err
	}
	if t.updatePKStmt == nil {
		return sqlerr.Assertion("table %s has no updatable column besides its primary key", t.info)
	}
	_, err := t.updatePKStmt.Execute(ctx)
	return err
}

// UpdateWhere writes the updatable columns to every row matching where and
// reports the number of rows updated.
func (t *Table) UpdateWhere(ctx context.Context, where string) (int64, error) {
	if err := t.requireOpen("UpdateWhere"); err != nil {
		return 0, err
	}
	if err := t.requireAccess("UpdateWhere", AccessUpdateWhere); err != nil {
		return 0, err
	}
	if where == "" {
		return 0, sqlerr.IllegalArgument("UpdateWhere on %s needs a where clause", t.info)
	}
	set := t.setColumns()
	if len(set) == 0 {
		return 0, sqlerr.Assertion("table %s has no updatable column", t.info)
	}
	s, err := t.db.PrepareStatement(ctx, t.sqlGen().update(set, where))
	if err != nil {
		return 0, err
	}
	defer s.Close()
	if err := t.bindParams(s, 1, set); err != nil {
		return 0, err
	}
	return s.Execute(ctx)
}

// Delete deletes the row identified by the primary key columns. With
// failOnNoData a delete that removed nothing fails with a NoDataError, on
// products that report it.
func (t *Table) Delete(ctx context.Context, failOnNoData bool) error {
	if err := t.requireOpen("Delete"); err != nil {
		return err
	}
	if err := t.requireAccess("Delete", AccessDeletePK); err != nil {
		return err
	}
	if t.deletePKStmt == nil {
		return sqlerr.Assertion("table %s has no primary key to delete by", t.info)
	}
	n, err := t.deletePKStmt.Execute(ctx)
	if err != nil {
		return err
	}
	return t.checkNoData(n, failOnNoData, t.deletePKStmt.SQL())
}

// DeleteWhere deletes every row matching where and reports the number of rows
// deleted.
func (t *Table) DeleteWhere(ctx context.Context, where string, failOnNoData bool) (int64, error) {
	if err := t.requireOpen("DeleteWhere"); err != nil {
		return 0, err
	}
	if err := t.requireAccess("DeleteWhere", AccessDeleteWhere); err != nil {
		return 0, err
	}
	if where == "" {
		return 0, sqlerr.IllegalArgument("DeleteWhere on %s needs a where clause", t.info)
	}
	s := t.db.NewStatement(t.sqlGen().delete(where))
	defer s.Close()
	n, err := s.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return n, t.checkNoData(n, failOnNoData, s.SQL())
}

func (t *Table) checkNoData(n int64, failOnNoData bool, sqlText string) error {
	if n > 0 || !failOnNoData {
		return nil
	}
	if !t.db.Capabilities().ReportsNoData {
		t.log.Debug("no rows affected, not reported by product", "table", t.info.QueryName(), "product", t.db.Capabilities().Product)
		return nil
	}
	return sqlerr.NoData(sqlText)
}

// Select opens a cursor over the selectable columns of the rows matching
// where. An empty where selects all rows. The cursor is positioned before the
// first row.
func (t *Table) Select(ctx context.Context, where string) error {
	if err := t.requireAccess("Select", AccessSelectWhere); err != nil {
		return err
	}
	return t.openCursor(ctx, "Select", func(cols []buffer.ColumnBuffer) string {
		return t.sqlGen().selectWhere(cols, where)
	})
}

// SelectBySQL opens a cursor over a complete statement whose result columns
// are, in order, the selectable columns of the table.
func (t *Table) SelectBySQL(ctx context.Context, sqlText string) error {
	if err := t.requireAccess("SelectBySQL", AccessSelectWhere); err != nil {
		return err
	}
	return t.openCursor(ctx, "SelectBySQL", func([]buffer.ColumnBuffer) string {
		return sqlText
	})
}

func (t *Table) openCursor(ctx context.Context, op string, text func([]buffer.ColumnBuffer) string) error {
	if err := t.requireOpen(op); err != nil {
		return err
	}
	if t.state == stateSelecting {
		return sqlerr.Assertion("%s on table %s with an open cursor, call SelectClose first", op, t.info)
	}
	cols := t.columnsWith(buffer.FlagSelect)
	if len(cols) == 0 {
		return sqlerr.Assertion("table %s has no selectable column", t.info)
	}
	s := t.db.NewStatement(text(cols), t.statementOptions()...)
	if err := bindColumns(s, cols); err != nil {
		return err
	}
	if err := s.ExecuteQuery(ctx); err != nil {
		s.Close()
		return err
	}
	t.cursor = s
	t.fetched = false
	t.state = stateSelecting
	return nil
}

// SelectByPK selects the row identified by the primary key columns into the
// buffers. It reports false when there is no such row.
func (t *Table) SelectByPK(ctx context.Context) (bool, error) {
	if err := t.requireOpen("SelectByPK"); err != nil {
		return false, err
	}
	if err := t.requireAccess("SelectByPK", AccessSelectPK); err != nil {
		return false, err
	}
	if t.selectPKStmt == nil {
		return false, sqlerr.Assertion("table %s has no primary key to select by", t.info)
	}
	if err := t.selectPKStmt.ExecuteQuery(ctx); err != nil {
		return false, err
	}
	found, err := t.selectPKStmt.Fetch(ctx)
	if cerr := t.selectPKStmt.CloseCursor(); cerr != nil && err == nil {
		err = cerr
	}
	return found, err
}

// Count returns the number of rows matching where.
func (t *Table) Count(ctx context.Context, where string) (int64, error) {
	if err := t.requireOpen("Count"); err != nil {
		return 0, err
	}
	if err := t.requireAccess("Count", AccessSelectWhere); err != nil {
		return 0, err
	}
	s := t.db.NewStatement(t.sqlGen().count(where))
	defer s.Close()
	n := buffer.NewBigInt("COUNT(*)", buffer.FlagSelect)
	if err := n.BindColumn(1, s); err != nil {
		return 0, err
	}
	if err := s.ExecuteQuery(ctx); err != nil {
		return 0, err
	}
	ok, err := s.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, sqlerr.NoData(s.SQL())
	}
	return n.Value()
}

func (t *Table) fetch(ctx context.Context, op string, o sqltype.FetchOrientation, offset int64) (bool, error) {
	if t.state != stateSelecting {
		return false, sqlerr.Assertion("%s on table %s without an open cursor", op, t.info)
	}
	if o == sqltype.FetchRelative && !t.fetched && t.db.Capabilities().RelativeFetchNeedsBase {
		return false, sqlerr.Assertion("%s on table %s before any row was fetched, %s needs a base position", op, t.info, t.db.Capabilities().Product)
	}
	ok, err := t.cursor.FetchScroll(ctx, o, offset)
	if err != nil {
		return false, errors.Wrapf(err, "%s on %s", op, t.info)
	}
	if ok {
		t.fetched = true
	}
	return ok, nil
}

// SelectNext moves to the next row. It returns false after the last row.
func (t *Table) SelectNext(ctx context.Context) (bool, error) {
	return t.fetch(ctx, "SelectNext", sqltype.FetchNext, 0)
}

func (t *Table) SelectPrev(ctx context.Context) (bool, error) {
	return t.fetch(ctx, "SelectPrev", sqltype.FetchPrior, 0)
}

func (t *Table) SelectFirst(ctx context.Context) (bool, error) {
	return t.fetch(ctx, "SelectFirst", sqltype.FetchFirst, 0)
}

func (t *Table) SelectLast(ctx context.Context) (bool, error) {
	return t.fetch(ctx, "SelectLast", sqltype.FetchLast, 0)
}

// SelectAbsolute moves to the 1-based row n. A negative n counts from the
// end.
func (t *Table) SelectAbsolute(ctx context.Context, n int64) (bool, error) {
	return t.fetch(ctx, "SelectAbsolute", sqltype.FetchAbsolute, n)
}

// SelectRelative moves n rows from the current one.
func (t *Table) SelectRelative(ctx context.Context, n int64) (bool, error) {
	return t.fetch(ctx, "SelectRelative", sqltype.FetchRelative, n)
}

// SelectClose closes the cursor opened by Select. The table stays open.
func (t *Table) SelectClose() error {
	if err := t.requireOpen("SelectClose"); err != nil {
		return err
	}
	if t.state != stateSelecting {
		return nil
	}
	s := t.cursor
	t.cursor = nil
	t.fetched = false
	t.state = stateOpen
	return s.Close()
}
