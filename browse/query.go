package browse

import (
	"context"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/table"
)

// QueryContext receives the rows of a table cursor. OnFetch returning false
// stops the fetch.
type QueryContext struct {
	Table        *table.Table
	Where        string
	Limit        int64
	OnFetchStart func(cols []buffer.ColumnBuffer)
	OnFetch      func(rownum int64, values []any) bool
	OnFetchEnd   func()
}

// DoSelect opens a cursor on the table, which must be open with
// AccessSelectWhere, and hands every row to ctx.OnFetch. A Limit of 0 or
// less fetches all rows. The cursor is closed on return.
func DoSelect(ctx context.Context, qc *QueryContext) (int64, error) {
	t := qc.Table
	if err := t.Select(ctx, qc.Where); err != nil {
		return 0, err
	}
	defer t.SelectClose()

	cols := t.Columns()
	if qc.OnFetchStart != nil {
		qc.OnFetchStart(cols)
	}
	if qc.OnFetchEnd != nil {
		defer qc.OnFetchEnd()
	}

	var nrow int64
	rec := make([]any, len(cols))
	for qc.Limit <= 0 || nrow < qc.Limit {
		ok, err := t.SelectNext(ctx)
		if err != nil {
			return nrow, err
		}
		if !ok {
			break
		}
		for i, b := range cols {
			if b.IsNull() {
				rec[i] = nil
				continue
			}
			if rec[i], err = buffer.Value(b); err != nil {
				return nrow, err
			}
		}
		nrow++
		if qc.OnFetch != nil && !qc.OnFetch(nrow, rec) {
			break
		}
	}
	return nrow, nil
}
