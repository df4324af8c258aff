package stmt

import (
	"database/sql"

	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
)

type cursor interface {
	// move positions the cursor and returns the row it lands on, ok is false
	// when the position is before the first or after the last row.
	move(orientation sqltype.FetchOrientation, offset int64) (row []any, ok bool, err error)
	close() error
}

// staticCursor holds a result set read at execution time. pos is -1 before
// the first row and len(rows) after the last.
type staticCursor struct {
	rows [][]any
	pos  int64
}

func scanRow(rows *sql.Rows, width int) ([]any, error) {
	vals := make([]any, width)
	ptrs := make([]any, width)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

func materialize(rows *sql.Rows, width int) (*staticCursor, error) {
	defer rows.Close()
	c := &staticCursor{pos: -1}
	for rows.Next() {
		row, err := scanRow(rows, width)
		if err != nil {
			return nil, err
		}
		c.rows = append(c.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *staticCursor) move(orientation sqltype.FetchOrientation, offset int64) ([]any, bool, error) {
	n := int64(len(c.rows))
	var pos int64
	switch orientation {
	case sqltype.FetchNext:
		pos = c.pos + 1
	case sqltype.FetchPrior:
		pos = c.pos - 1
	case sqltype.FetchFirst:
		pos = 0
	case sqltype.FetchLast:
		pos = n - 1
	case sqltype.FetchAbsolute:
		switch {
		case offset > 0:
			pos = offset - 1
		case offset < 0:
			pos = n + offset
		default:
			pos = -1
		}
	case sqltype.FetchRelative:
		pos = c.pos + offset
	default:
		return nil, false, sqlerr.NotSupported("fetch orientation %s", orientation)
	}
	switch {
	case pos < 0:
		c.pos = -1
		return nil, false, nil
	case pos >= n:
		c.pos = n
		return nil, false, nil
	}
	c.pos = pos
	return c.rows[pos], true, nil
}

func (c *staticCursor) close() error {
	c.rows = nil
	return nil
}

type forwardCursor struct {
	rows   *sql.Rows
	width  int
	done   bool
	decode ErrorDecoder
}

func (c *forwardCursor) move(orientation sqltype.FetchOrientation, offset int64) ([]any, bool, error) {
	if orientation != sqltype.FetchNext {
		return nil, false, sqlerr.NotSupported("fetch orientation %s on a forward-only cursor", orientation)
	}
	if c.done {
		return nil, false, nil
	}
	if !c.rows.Next() {
		c.done = true
		if err := c.rows.Err(); err != nil {
			return nil, false, c.decode("SQLFetch", err)
		}
		return nil, false, nil
	}
	row, err := scanRow(c.rows, c.width)
	if err != nil {
		return nil, false, c.decode("SQLFetch", err)
	}
	return row, true, nil
}

func (c *forwardCursor) close() error {
	return c.rows.Close()
}
