// Package stmt runs SQL text with buffers bound to its result columns and
// parameters.
//
// A Statement is the database/sql counterpart of an ODBC statement handle:
// parameters are read from bound buffers when it executes, and every fetch
// stores the current row into the bound column buffers.
package stmt

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/sqltype"
	"github.com/pkg/errors"
)

// Executor is implemented by *sql.Conn, *sql.Tx and *sql.DB.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Conn supplies the executor a statement runs on. It is asked on every
// execution, so a statement follows the transaction state of its connection.
type Conn interface {
	Executor(ctx context.Context) (Executor, error)
}

type staticConn struct {
	ex Executor
}

func (c staticConn) Executor(context.Context) (Executor, error) { return c.ex, nil }

// On returns a Conn that always runs on ex.
func On(ex Executor) Conn {
	return staticConn{ex: ex}
}

type boundParam struct {
	target buffer.Target
	desc   buffer.ParamDesc
}

type Statement struct {
	conn       Conn
	sqlText    string
	prepare    bool
	cursorType CursorType
	describer  ParamDescriber
	tracker    CursorTracker
	decode     ErrorDecoder
	log        *slog.Logger

	descs       []buffer.ParamDesc
	describeErr error

	cols   map[int]buffer.Target
	params map[int]boundParam

	prepared   *sql.Stmt
	preparedOn Executor

	cursor cursor
}

var _ buffer.Binder = (*Statement)(nil)

func newStatement(conn Conn, sqlText string, opts []Option) *Statement {
	s := &Statement{
		conn:       conn,
		sqlText:    sqlText,
		cursorType: CursorStatic,
		log:        slog.New(slog.DiscardHandler),
		cols:       map[int]buffer.Target{},
		params:     map[int]boundParam{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.decode == nil {
		s.decode = func(op string, err error) error {
			return sqlerr.NewSqlResultError(op, "", 0, err)
		}
	}
	return s
}

// New creates a statement that sends its text to the driver on every
// execution.
func New(conn Conn, sqlText string, opts ...Option) *Statement {
	s := newStatement(conn, sqlText, opts)
	s.describeErr = sqlerr.NotSupported("describe parameters of a statement that is not prepared")
	return s
}

// Prepare creates a statement that is prepared on its first execution and
// reused afterwards. If a describer is given, the parameters are described
// now.
func Prepare(ctx context.Context, conn Conn, sqlText string, opts ...Option) (*Statement, error) {
	s := newStatement(conn, sqlText, opts)
	s.prepare = true
	if s.describer == nil {
		s.describeErr = sqlerr.NotSupported("describe parameters")
		return s, nil
	}
	descs, err := s.describer.DescribeParams(ctx, sqlText)
	if err != nil {
		if !errors.Is(err, sqlerr.ErrNotSupported) {
			return nil, errors.Wrapf(err, "describe parameters of '%s'", sqlText)
		}
		s.describeErr = err
	}
	s.descs = descs
	return s, nil
}

func (s *Statement) SQL() string            { return s.sqlText }
func (s *Statement) CursorType() CursorType { return s.cursorType }
func (s *Statement) IsCursorOpen() bool     { return s.cursor != nil }

func (s *Statement) BindCol(ordinal int, target buffer.Target) error {
	if ordinal < 1 {
		return sqlerr.Assertion("column ordinal must be 1 or greater, got %d", ordinal)
	}
	if s.cursor != nil {
		return sqlerr.Assertion("bind column %d while a cursor is open", ordinal)
	}
	s.cols[ordinal] = target
	return nil
}

func (s *Statement) BindParam(ordinal int, target buffer.Target, desc buffer.ParamDesc) error {
	if ordinal < 1 {
		return sqlerr.Assertion("parameter ordinal must be 1 or greater, got %d", ordinal)
	}
	s.params[ordinal] = boundParam{target: target, desc: desc}
	return nil
}

func (s *Statement) DescribeParam(ordinal int) (buffer.ParamDesc, error) {
	if s.describeErr != nil {
		return buffer.ParamDesc{}, s.describeErr
	}
	if ordinal < 1 || ordinal > len(s.descs) {
		return buffer.ParamDesc{}, sqlerr.Assertion("statement has %d parameters, no parameter %d", len(s.descs), ordinal)
	}
	return s.descs[ordinal-1], nil
}

// NumParams reports the number of described parameters.
func (s *Statement) NumParams() (int, error) {
	if s.describeErr != nil {
		return 0, s.describeErr
	}
	return len(s.descs), nil
}

// Unbind removes all column bindings.
func (s *Statement) Unbind() {
	clear(s.cols)
}

// ResetParams removes all parameter bindings.
func (s *Statement) ResetParams() {
	clear(s.params)
}

func (s *Statement) args() ([]any, error) {
	if len(s.params) == 0 {
		return nil, nil
	}
	ordinals := make([]int, 0, len(s.params))
	for o := range s.params {
		ordinals = append(ordinals, o)
	}
	slices.Sort(ordinals)
	if last := ordinals[len(ordinals)-1]; last != len(ordinals) {
		return nil, sqlerr.Assertion("parameters are bound up to ordinal %d but only %d are bound", last, len(ordinals))
	}
	ret := make([]any, len(ordinals))
	for i, o := range ordinals {
		p := s.params[o]
		v, err := p.target.Load(p.desc)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d '%s'", o, p.target.QueryName())
		}
		ret[i] = v
	}
	return ret, nil
}

// executor returns the executor to run on, and the prepared statement when
// the statement is prepared.
func (s *Statement) executor(ctx context.Context) (Executor, *sql.Stmt, error) {
	ex, err := s.conn.Executor(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !s.prepare {
		return ex, nil, nil
	}
	if s.prepared != nil && s.preparedOn == ex {
		return ex, s.prepared, nil
	}
	if s.prepared != nil {
		_ = s.prepared.Close()
		s.prepared, s.preparedOn = nil, nil
	}
	p, err := ex.PrepareContext(ctx, s.sqlText)
	if err != nil {
		return nil, nil, s.decode("SQLPrepare", err)
	}
	s.prepared, s.preparedOn = p, ex
	return ex, p, nil
}

// Execute runs a statement that returns no rows and reports the number of
// rows it affected.
func (s *Statement) Execute(ctx context.Context) (int64, error) {
	if s.cursor != nil {
		return 0, sqlerr.Assertion("execute while a cursor is open on '%s'", s.sqlText)
	}
	args, err := s.args()
	if err != nil {
		return 0, err
	}
	ex, prepared, err := s.executor(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Debug("execute", "sql", s.sqlText, "params", len(args))
	var result sql.Result
	if prepared != nil {
		result, err = prepared.ExecContext(ctx, args...)
	} else {
		result, err = ex.ExecContext(ctx, s.sqlText, args...)
	}
	if err != nil {
		return 0, s.decode("SQLExecute", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, s.decode("SQLRowCount", err)
	}
	return n, nil
}

// ExecuteQuery runs a query and opens a cursor positioned before the first
// row.
func (s *Statement) ExecuteQuery(ctx context.Context) error {
	if s.cursor != nil {
		return sqlerr.Assertion("cursor already open on '%s'", s.sqlText)
	}
	args, err := s.args()
	if err != nil {
		return err
	}
	if s.tracker != nil {
		if err := s.tracker.AcquireCursor(); err != nil {
			return err
		}
	}
	c, err := s.query(ctx, args)
	if err != nil || s.cursorType == CursorStatic {
		// a static cursor has its rows and no longer needs the connection
		if s.tracker != nil {
			s.tracker.ReleaseCursor()
		}
	}
	if err != nil {
		return err
	}
	s.cursor = c
	return nil
}

func (s *Statement) query(ctx context.Context, args []any) (cursor, error) {
	ex, prepared, err := s.executor(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("query", "sql", s.sqlText, "params", len(args), "cursor", s.cursorType)
	var rows *sql.Rows
	if prepared != nil {
		rows, err = prepared.QueryContext(ctx, args...)
	} else {
		rows, err = ex.QueryContext(ctx, s.sqlText, args...)
	}
	if err != nil {
		return nil, s.decode("SQLExecute", err)
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, s.decode("SQLNumResultCols", err)
	}
	for o, t := range s.cols {
		if o > len(columns) {
			rows.Close()
			return nil, sqlerr.Assertion("column %d '%s' is bound but the result has %d columns", o, t.QueryName(), len(columns))
		}
	}
	if s.cursorType == CursorForwardOnly {
		return &forwardCursor{rows: rows, width: len(columns), decode: s.decode}, nil
	}
	c, err := materialize(rows, len(columns))
	if err != nil {
		return nil, s.decode("SQLFetch", err)
	}
	return c, nil
}

// Fetch moves to the next row. It returns false when there are no more rows.
func (s *Statement) Fetch(ctx context.Context) (bool, error) {
	return s.FetchScroll(ctx, sqltype.FetchNext, 0)
}

// FetchScroll moves the cursor and stores the row it lands on into the bound
// columns. It returns false when the cursor is positioned before the first or
// after the last row. Forward-only cursors only support FetchNext.
func (s *Statement) FetchScroll(ctx context.Context, orientation sqltype.FetchOrientation, offset int64) (bool, error) {
	if s.cursor == nil {
		return false, sqlerr.Assertion("fetch without an open cursor on '%s'", s.sqlText)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	row, ok, err := s.cursor.move(orientation, offset)
	if err != nil || !ok {
		return false, err
	}
	for o, t := range s.cols {
		if err := t.Store(row[o-1]); err != nil {
			return false, errors.Wrapf(err, "fetch column %d '%s'", o, t.QueryName())
		}
	}
	return true, nil
}

// CloseCursor closes the open cursor, if any. The statement can be executed
// again afterwards.
func (s *Statement) CloseCursor() error {
	if s.cursor == nil {
		return nil
	}
	c := s.cursor
	s.cursor = nil
	err := c.close()
	if _, ok := c.(*forwardCursor); ok && s.tracker != nil {
		s.tracker.ReleaseCursor()
	}
	return err
}

// Close closes the cursor and releases the prepared statement.
func (s *Statement) Close() error {
	err := s.CloseCursor()
	if s.prepared != nil {
		if perr := s.prepared.Close(); err == nil {
			err = perr
		}
		s.prepared, s.preparedOn = nil, nil
	}
	return err
}
