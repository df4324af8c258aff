package config_test

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/machbase/neo-odbc/config"
	"github.com/machbase/neo-odbc/database"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/table"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const sampleYaml = `
loglevel: info
datasource: test
datasources:
  test:
    driver: sqlite
    dsn: /tmp/test.db
    commit: manual
    isolation: serializable
    chartrim: right
    timestampdigits: 3
  pg:
    driver: pgx
    dsn: postgres://localhost/neo
    queryparaminfo: false
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "", cfg.File)
	require.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, slog.LevelWarn, cfg.Level())
	require.Equal(t, config.DefaultDataSource, cfg.DataSource)
	require.Empty(t, cfg.Names())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, sampleYaml)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, path, cfg.File)
	require.Equal(t, slog.LevelInfo, cfg.Level())
	require.Equal(t, "test", cfg.DataSource)
	require.Equal(t, []string{"pg", "test"}, cfg.Names())

	ds, err := cfg.DataSourceOf("test")
	require.NoError(t, err)
	require.Equal(t, "sqlite", ds.Driver)
	require.Equal(t, "/tmp/test.db", ds.DSN)
	require.Equal(t, dbms.SQLite, ds.Product)
	require.Equal(t, database.ManualCommit, ds.CommitMode)
	require.Equal(t, sql.LevelSerializable, ds.Isolation)
	require.NotNil(t, ds.TimestampDigits)
	require.Equal(t, 3, *ds.TimestampDigits)
	require.Nil(t, ds.QueryParamInfo)

	flags, err := cfg.DataSources["test"].TableOpenFlags()
	require.NoError(t, err)
	require.Equal(t, table.OpenCharTrimRight, flags)

	pg, err := cfg.DataSourceOf("pg")
	require.NoError(t, err)
	require.Equal(t, dbms.PostgreSQL, pg.Product)
	require.Equal(t, database.AutoCommit, pg.CommitMode)
	require.NotNil(t, pg.QueryParamInfo)
	require.False(t, *pg.QueryParamInfo)

	_, err = cfg.DataSourceOf("missing")
	require.ErrorIs(t, err, sqlerr.ErrNotFound)
}

func TestMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.ErrorIs(t, err, sqlerr.ErrNotFound)
}

func TestEnvAndFlagsOverride(t *testing.T) {
	path := writeFile(t, sampleYaml)
	t.Setenv("NEO_ODBC_LOGLEVEL", "debug")
	t.Setenv("NEO_ODBC_DATASOURCES__TEST__DSN", "/var/lib/neo.db")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.Equal(t, "/var/lib/neo.db", cfg.DataSources["test"].DSN)
	require.Equal(t, "sqlite", cfg.DataSources["test"].Driver)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", config.DefaultLogLevel, "")
	fs.String("data-source", config.DefaultDataSource, "")
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	cfg, err = config.Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, slog.LevelError, cfg.Level())
	// not changed, the file wins
	require.Equal(t, "test", cfg.DataSource)
}

func TestInvalidDataSources(t *testing.T) {
	tests := []struct {
		name string
		dc   config.DataSourceConfig
	}{
		{"no driver", config.DataSourceConfig{DSN: "x"}},
		{"product", config.DataSourceConfig{Driver: "odbc", Product: "oracle"}},
		{"commit", config.DataSourceConfig{Driver: "sqlite", Commit: "sometimes"}},
		{"isolation", config.DataSourceConfig{Driver: "sqlite", Isolation: "snapshot"}},
		{"chartrim", config.DataSourceConfig{Driver: "sqlite", CharTrim: "middle"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.dc.DataSource(tc.name)
			require.ErrorIs(t, err, sqlerr.ErrIllegalArgument)
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := config.Load(writeFile(t, sampleYaml), nil)
	require.NoError(t, err)

	env := database.NewEnvironment()
	require.NoError(t, cfg.Apply(env))
	ds, err := env.Lookup("test")
	require.NoError(t, err)
	require.Equal(t, "/tmp/test.db", ds.DSN)
	require.ElementsMatch(t, []string{"pg", "test"}, env.DataSources())

	cfg.DataSources["broken"] = config.DataSourceConfig{}
	other := database.NewEnvironment()
	require.Error(t, cfg.Apply(other))
	require.Empty(t, other.DataSources())
}
