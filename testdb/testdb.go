// Package testdb creates SQLite databases holding a fixed set of tables with
// every supported column type, for tests and for trying out the command line
// tool.
package testdb

import (
	"context"
	"database/sql"
	"embed"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/machbase/neo-odbc/database"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its file system and dialect in package state
var gooseMu sync.Mutex

// Migrate creates the test tables in db.
func Migrate(db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "set dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

// Create creates and migrates the SQLite database file at path.
func Create(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer db.Close()
	return Migrate(db)
}

// Open creates a migrated database in a temporary directory and opens it in
// the given commit mode. It is closed when the test ends.
func Open(t testing.TB, mode database.CommitMode, opts ...database.Option) *database.Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := Create(path); err != nil {
		t.Fatalf("create test database: %v", err)
	}
	env := database.NewEnvironment()
	env.RegisterDataSource("testdb", &database.DataSource{
		Driver:     "sqlite",
		DSN:        path,
		Product:    dbms.SQLite,
		CommitMode: mode,
	})
	opts = append([]database.Option{database.WithLogger(NewTestLogger(t))}, opts...)
	db, err := env.Open(context.Background(), "testdb", opts...)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if db.IsOpen() {
			if err := db.Close(); err != nil {
				t.Errorf("close test database: %v", err)
			}
		}
	})
	return db
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// NewTestLogger returns a debug level logger writing to the test log.
func NewTestLogger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
