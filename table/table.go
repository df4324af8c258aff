// Package table binds the columns of a database table to buffers and runs
// generated SELECT, INSERT, UPDATE and DELETE statements over them.
//
// A Table is created closed. Open discovers the columns from the catalog,
// unless they were set with SetColumn, prepares the statements its access
// flags ask for and binds every buffer to them. Select opens a cursor whose
// rows are fetched straight into the column buffers.
package table

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/stmt"
)

// DB is the connection a table works on. *database.Database implements it.
type DB interface {
	Capabilities() dbms.Capabilities
	Catalog() catalog.Catalog
	Sql2BufferMap() buffer.Sql2BufferTypeMap
	QueryParamInfo() bool
	Logger() *slog.Logger
	NewStatement(sqlText string, opts ...stmt.Option) *stmt.Statement
	PrepareStatement(ctx context.Context, sqlText string, opts ...stmt.Option) (*stmt.Statement, error)
}

type Option func(*Table)

func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// WithSql2BufferTypeMap sets the type map used to create the column buffers.
func WithSql2BufferTypeMap(m buffer.Sql2BufferTypeMap) Option {
	return func(t *Table) {
		t.typeMap = m
	}
}

type state int

const (
	stateClosed state = iota
	stateOpen
	stateSelecting
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateSelecting:
		return "selecting"
	default:
		return "closed"
	}
}

type Table struct {
	db   DB
	info catalog.TableInfo
	// lookup is set when info only holds search patterns
	lookup    bool
	access    AccessFlags
	openFlags OpenFlags
	typeMap   buffer.Sql2BufferTypeMap
	log       *slog.Logger

	columns map[int]buffer.ColumnBuffer
	// autoColumns is set while the columns are the ones Open discovered
	autoColumns bool
	manualPK    []int
	pkIndexes   []int
	names       map[string]int

	state state

	insertStmt   *stmt.Statement
	updatePKStmt *stmt.Statement
	deletePKStmt *stmt.Statement
	selectPKStmt *stmt.Statement
	cursor       *stmt.Statement
	fetched      bool
}

// New creates a closed table for info. Open uses info as is, without
// looking the table up, unless OpenCheckExistence is given.
func New(db DB, access AccessFlags, info catalog.TableInfo, opts ...Option) *Table {
	t := &Table{
		db:      db,
		info:    info,
		access:  access,
		log:     db.Logger(),
		columns: map[int]buffer.ColumnBuffer{},
		names:   map[string]int{},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// NewByName creates a closed table that Open searches in the catalog. The
// search must match exactly one table.
func NewByName(db DB, access AccessFlags, name, schema, catalogName, tableType string, opts ...Option) *Table {
	t := New(db, access, catalog.TableInfo{Name: name, Schema: schema, Catalog: catalogName, Type: tableType}, opts...)
	t.lookup = true
	return t
}

func (t *Table) Info() catalog.TableInfo  { return t.info }
func (t *Table) AccessFlags() AccessFlags { return t.access }
func (t *Table) OpenFlags() OpenFlags     { return t.openFlags }
func (t *Table) IsOpen() bool             { return t.state != stateClosed }
func (t *Table) IsSelecting() bool        { return t.state == stateSelecting }

// QueryName is the name used in generated statements.
func (t *Table) QueryName() string {
	return t.info.QueryName()
}

// PrimaryKeyIndexes returns the indexes of the primary key columns in key
// order.
func (t *Table) PrimaryKeyIndexes() []int {
	return slices.Clone(t.pkIndexes)
}

func (t *Table) requireClosed(op string) error {
	if t.state != stateClosed {
		return sqlerr.Assertion("%s on table %s which is %s", op, t.info, t.state)
	}
	return nil
}

func (t *Table) requireOpen(op string) error {
	if t.state == stateClosed {
		return sqlerr.Assertion("%s on table %s which is closed", op, t.info)
	}
	return nil
}

func (t *Table) requireAccess(op string, flag AccessFlags) error {
	if !t.access.Has(flag) {
		return sqlerr.Assertion("%s on table %s needs access %s, opened for %s", op, t.info, flag, t.access)
	}
	return nil
}

func (t *Table) SetAccessFlags(flags AccessFlags) error {
	if err := t.requireClosed("SetAccessFlags"); err != nil {
		return err
	}
	t.access = flags
	return nil
}

func (t *Table) SetAccessFlag(flag AccessFlags) error {
	if err := t.requireClosed("SetAccessFlag"); err != nil {
		return err
	}
	t.access |= flag
	return nil
}

func (t *Table) ClearAccessFlag(flag AccessFlags) error {
	if err := t.requireClosed("ClearAccessFlag"); err != nil {
		return err
	}
	t.access &^= flag
	return nil
}

// SetSql2BufferTypeMap replaces the type map used by column discovery.
func (t *Table) SetSql2BufferTypeMap(m buffer.Sql2BufferTypeMap) error {
	if err := t.requireClosed("SetSql2BufferTypeMap"); err != nil {
		return err
	}
	t.typeMap = m
	return nil
}

// SetColumn sets the buffer of the column at the zero based catalog index.
// A table with columns set this way skips column discovery.
func (t *Table) SetColumn(index int, b buffer.ColumnBuffer) error {
	if err := t.requireClosed("SetColumn"); err != nil {
		return err
	}
	if index < 0 {
		return sqlerr.IllegalArgument("column index must not be negative, got %d", index)
	}
	if b == nil {
		return sqlerr.IllegalArgument("column %d of %s has no buffer", index, t.info)
	}
	if t.autoColumns {
		clear(t.columns)
		t.autoColumns = false
	}
	t.columns[index] = b
	return nil
}

// SetColumnPrimaryKeyIndexes declares the primary key columns, in key order.
// Open then does not query the catalog for primary keys.
func (t *Table) SetColumnPrimaryKeyIndexes(indexes ...int) error {
	if err := t.requireClosed("SetColumnPrimaryKeyIndexes"); err != nil {
		return err
	}
	for _, i := range indexes {
		if i < 0 {
			return sqlerr.IllegalArgument("primary key index must not be negative, got %d", i)
		}
	}
	t.manualPK = slices.Clone(indexes)
	return nil
}

// Column returns the buffer at the catalog index.
func (t *Table) Column(index int) (buffer.ColumnBuffer, error) {
	b, ok := t.columns[index]
	if !ok {
		return nil, sqlerr.NotFound("column %d of table %s", index, t.info)
	}
	return b, nil
}

// ColumnAs returns the buffer at the catalog index as the concrete variant
// B, for example *buffer.Scalar[int32] or *buffer.Array[byte].
func ColumnAs[B buffer.ColumnBuffer](t *Table, index int) (B, error) {
	var zero B
	b, err := t.Column(index)
	if err != nil {
		return zero, err
	}
	ret, ok := b.(B)
	if !ok {
		return zero, sqlerr.Assertion("column %d '%s' of table %s is %T, not %T", index, b.QueryName(), t.info, b, zero)
	}
	return ret, nil
}

// ColumnIndex returns the catalog index of the column, comparing names
// case-insensitively.
func (t *Table) ColumnIndex(queryName string) (int, error) {
	if i, ok := t.names[strings.ToLower(queryName)]; ok {
		return i, nil
	}
	for i, b := range t.columns {
		if strings.EqualFold(b.QueryName(), queryName) {
			return i, nil
		}
	}
	return -1, sqlerr.NotFound("column '%s' of table %s", queryName, t.info)
}

// ColumnIndexes returns the indexes of all columns in ascending order.
func (t *Table) ColumnIndexes() []int {
	ret := make([]int, 0, len(t.columns))
	for i := range t.columns {
		ret = append(ret, i)
	}
	slices.Sort(ret)
	return ret
}

// Columns returns the buffers ordered by index.
func (t *Table) Columns() []buffer.ColumnBuffer {
	idx := t.ColumnIndexes()
	ret := make([]buffer.ColumnBuffer, len(idx))
	for n, i := range idx {
		ret[n] = t.columns[i]
	}
	return ret
}

func (t *Table) IsColumnNull(index int) (bool, error) {
	b, err := t.Column(index)
	if err != nil {
		return false, err
	}
	return b.IsNull(), nil
}

// SetColumnNull sets a nullable column to NULL.
func (t *Table) SetColumnNull(index int) error {
	b, err := t.Column(index)
	if err != nil {
		return err
	}
	if !b.Is(buffer.FlagNullable) {
		return sqlerr.Assertion("column %d '%s' of table %s is not nullable", index, b.QueryName(), t.info)
	}
	b.SetNull()
	return nil
}

// ColumnValue returns the value of the column as its natural Go type.
func (t *Table) ColumnValue(index int) (any, error) {
	b, err := t.Column(index)
	if err != nil {
		return nil, err
	}
	return buffer.Value(b)
}

// SetColumnValue converts v into the buffer of the column. A nil v sets the
// column NULL.
func (t *Table) SetColumnValue(index int, v any) error {
	if v == nil {
		return t.SetColumnNull(index)
	}
	b, err := t.Column(index)
	if err != nil {
		return err
	}
	return buffer.SetValue(b, v)
}

// SetCharTrimRight switches trimming of trailing spaces on CHAR reads.
func (t *Table) SetCharTrimRight(on bool) {
	t.setOpenFlag(OpenCharTrimRight, on)
	t.applyTrim()
}

// SetCharTrimLeft switches trimming of leading spaces on CHAR reads.
func (t *Table) SetCharTrimLeft(on bool) {
	t.setOpenFlag(OpenCharTrimLeft, on)
	t.applyTrim()
}

func (t *Table) setOpenFlag(flag OpenFlags, on bool) {
	if on {
		t.openFlags |= flag
	} else {
		t.openFlags &^= flag
	}
}

func (t *Table) trimPolicy() buffer.TrimPolicy {
	p := buffer.TrimNone
	if t.openFlags.Has(OpenCharTrimRight) {
		p |= buffer.TrimRight
	}
	if t.openFlags.Has(OpenCharTrimLeft) {
		p |= buffer.TrimLeft
	}
	return p
}

func (t *Table) applyTrim() {
	p := t.trimPolicy()
	for _, b := range t.columns {
		switch a := b.(type) {
		case *buffer.Array[byte]:
			a.SetTrim(p)
		case *buffer.Array[uint16]:
			a.SetTrim(p)
		}
	}
}
