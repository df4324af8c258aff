// Package database is the connection side of the library: an Environment of
// named data sources and a Database holding one pinned connection with its
// commit mode, transaction, product capabilities and catalog.
//
// Importing the package registers the SQLite (modernc.org/sqlite), PostgreSQL
// (pgx) and DuckDB drivers with database/sql.
package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/catalog"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/stmt"
	"github.com/pkg/errors"
)

type Option func(*Database)

func WithLogger(l *slog.Logger) Option {
	return func(d *Database) {
		if l != nil {
			d.log = l
		}
	}
}

// WithCatalog replaces the catalog chosen for the product.
func WithCatalog(c catalog.Catalog) Option {
	return func(d *Database) {
		d.catalog = c
	}
}

// WithDescriber replaces the parameter describer chosen for the product.
func WithDescriber(pd stmt.ParamDescriber) Option {
	return func(d *Database) {
		d.describer = pd
	}
}

// Database is an open connection. It is not safe for concurrent use.
type Database struct {
	name string
	ds   DataSource
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx
	// ownsDB is false when the *sql.DB was handed in by the caller
	ownsDB bool

	commitMode CommitMode
	isolation  sql.IsolationLevel
	caps       dbms.Capabilities
	catalog    catalog.Catalog
	describer  stmt.ParamDescriber
	cursors    int
	log        *slog.Logger
}

var _ stmt.Conn = (*Database)(nil)
var _ stmt.CursorTracker = (*Database)(nil)

// Open connects to a registered data source or a data source URL.
func (env *Environment) Open(ctx context.Context, name string, opts ...Option) (*Database, error) {
	ds, err := env.Lookup(name)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(ds.Driver, ds.DSN)
	if err != nil {
		return nil, DecodeError("SQLDriverConnect", err)
	}
	d, err := open(ctx, name, db, ds, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	d.ownsDB = true
	return d, nil
}

// Open connects through the default environment.
func Open(ctx context.Context, name string, opts ...Option) (*Database, error) {
	return defaultEnv.Open(ctx, name, opts...)
}

// OpenDB pins a connection of an existing *sql.DB. Closing the Database does
// not close db.
func OpenDB(ctx context.Context, db *sql.DB, ds DataSource, opts ...Option) (*Database, error) {
	return open(ctx, ds.Driver, db, ds, opts)
}

func open(ctx context.Context, name string, db *sql.DB, ds DataSource, opts []Option) (*Database, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, DecodeError("SQLDriverConnect", err)
	}
	product := ds.Product
	if product == dbms.UnknownProduct {
		product = dbms.ProductForDriver(ds.Driver)
	}
	d := &Database{
		name:       name,
		ds:         ds,
		db:         db,
		conn:       conn,
		commitMode: ds.CommitMode,
		isolation:  ds.Isolation,
		caps:       dbms.CapabilitiesOf(product),
		log:        slog.New(slog.DiscardHandler),
	}
	if ds.QueryParamInfo != nil {
		d.caps.DescribesParameters = *ds.QueryParamInfo
	}
	if ds.TimestampDigits != nil {
		d.caps.TimestampDigits = *ds.TimestampDigits
	}
	switch product {
	case dbms.SQLite:
		d.catalog = catalog.NewSQLite(querier{d})
	default:
		d.catalog = catalog.NewInformationSchema(querier{d}, d.caps)
	}
	if product == dbms.PostgreSQL {
		d.describer = pgDescriber{db: d}
	}
	for _, o := range opts {
		o(d)
	}
	d.log.Debug("open", "name", name, "driver", ds.Driver, "product", product, "commit", d.commitMode)
	return d, nil
}

// querier runs catalog queries on the current executor, inside the open
// transaction in manual commit mode.
type querier struct {
	d *Database
}

func (q querier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ex, err := q.d.Executor(ctx)
	if err != nil {
		return nil, err
	}
	return ex.QueryContext(ctx, query, args...)
}

func (d *Database) Name() string                    { return d.name }
func (d *Database) Product() dbms.DatabaseProduct   { return d.caps.Product }
func (d *Database) Capabilities() dbms.Capabilities { return d.caps }
func (d *Database) Catalog() catalog.Catalog        { return d.catalog }
func (d *Database) Logger() *slog.Logger            { return d.log }
func (d *Database) CommitMode() CommitMode          { return d.commitMode }
func (d *Database) Isolation() sql.IsolationLevel   { return d.isolation }
func (d *Database) InTransaction() bool             { return d.tx != nil }
func (d *Database) IsOpen() bool                    { return d.conn != nil }
func (d *Database) Describer() stmt.ParamDescriber  { return d.describer }
func (d *Database) DataSource() DataSource          { return d.ds }

// Sql2BufferMap returns the default type map with the product's overrides.
func (d *Database) Sql2BufferMap() buffer.Sql2BufferTypeMap {
	return buffer.DefaultSql2BufferMap().With(d.caps.Sql2Buffer)
}

// QueryParamInfo reports whether parameters of prepared statements can be
// described.
func (d *Database) QueryParamInfo() bool {
	return d.caps.DescribesParameters && d.describer != nil
}

// Executor returns the transaction in manual commit mode, beginning it when
// none is open, and the connection otherwise.
func (d *Database) Executor(ctx context.Context) (stmt.Executor, error) {
	if d.conn == nil {
		return nil, sqlerr.Assertion("database '%s' is closed", d.name)
	}
	if d.commitMode == AutoCommit {
		return d.conn, nil
	}
	if d.tx == nil {
		tx, err := d.conn.BeginTx(ctx, &sql.TxOptions{Isolation: d.isolation})
		if err != nil {
			return nil, DecodeError("SQLSetConnectAttr", err)
		}
		d.log.Debug("begin transaction", "isolation", d.isolation)
		d.tx = tx
	}
	return d.tx, nil
}

// SetCommitMode switches the commit mode. Leaving manual mode commits the
// open transaction.
func (d *Database) SetCommitMode(ctx context.Context, mode CommitMode) error {
	if mode == d.commitMode {
		return nil
	}
	if mode == AutoCommit && d.tx != nil {
		if err := d.CommitTrans(ctx); err != nil {
			return err
		}
	}
	d.commitMode = mode
	return nil
}

// SetTransactionIsolationMode sets the isolation of the transactions begun
// from now on. It cannot change while a transaction is open.
func (d *Database) SetTransactionIsolationMode(level sql.IsolationLevel) error {
	if d.tx != nil {
		return sqlerr.Assertion("cannot change isolation of '%s' while a transaction is open", d.name)
	}
	d.isolation = level
	return nil
}

// CommitTrans commits the open transaction. Without one it does nothing.
func (d *Database) CommitTrans(ctx context.Context) error {
	if d.tx == nil {
		return nil
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Commit(); err != nil {
		return DecodeError("SQLEndTran", err)
	}
	d.log.Debug("commit")
	return nil
}

// RollbackTrans rolls the open transaction back. Without one it does nothing.
func (d *Database) RollbackTrans(ctx context.Context) error {
	if d.tx == nil {
		return nil
	}
	tx := d.tx
	d.tx = nil
	if err := tx.Rollback(); err != nil {
		return DecodeError("SQLEndTran", err)
	}
	d.log.Debug("rollback")
	return nil
}

// AcquireCursor counts an open streaming cursor. Products without multiple
// active statements allow only one.
func (d *Database) AcquireCursor() error {
	if d.cursors > 0 && !d.caps.MultipleActiveStatements {
		return sqlerr.NotSupported("%s allows one active statement per connection, %d cursor open", d.caps.Product, d.cursors)
	}
	d.cursors++
	return nil
}

func (d *Database) ReleaseCursor() {
	if d.cursors > 0 {
		d.cursors--
	}
}

// OpenCursors reports the number of streaming cursors holding the connection.
func (d *Database) OpenCursors() int {
	return d.cursors
}

// StatementOptions are the options every statement on this connection gets.
func (d *Database) StatementOptions() []stmt.Option {
	opts := []stmt.Option{
		stmt.WithLogger(d.log),
		stmt.WithCursorTracker(d),
		stmt.WithErrorDecoder(DecodeError),
	}
	if d.QueryParamInfo() {
		opts = append(opts, stmt.WithDescriber(d.describer))
	}
	return opts
}

// NewStatement creates a statement that is sent to the driver on every
// execution.
func (d *Database) NewStatement(sqlText string, opts ...stmt.Option) *stmt.Statement {
	return stmt.New(d, sqlText, append(d.StatementOptions(), opts...)...)
}

// PrepareStatement creates a prepared statement.
func (d *Database) PrepareStatement(ctx context.Context, sqlText string, opts ...stmt.Option) (*stmt.Statement, error) {
	return stmt.Prepare(ctx, d, sqlText, append(d.StatementOptions(), opts...)...)
}

// Close rolls back an open transaction and releases the connection.
func (d *Database) Close() error {
	if d.conn == nil {
		return sqlerr.Assertion("database '%s' is already closed", d.name)
	}
	var err error
	if d.tx != nil {
		d.log.Warn("rolling back open transaction on close", "name", d.name)
		err = d.RollbackTrans(context.Background())
	}
	if cerr := d.conn.Close(); cerr != nil && err == nil {
		err = DecodeError("SQLDisconnect", cerr)
	}
	d.conn = nil
	if d.ownsDB {
		if cerr := d.db.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close database")
		}
	}
	return err
}
