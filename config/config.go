// Package config loads the data sources and the log level of the neo-odbc
// tool. Values are layered, later layers win:
//
//  1. built in defaults
//  2. the yaml file, neo-odbc.yaml unless given explicitly
//  3. environment variables with the NEO_ODBC_ prefix
//  4. command line flags that were set
//
// A data source in yaml looks like
//
//	datasources:
//	  test:
//	    driver: sqlite
//	    dsn: /tmp/test.db
//	    commit: manual
//	    chartrim: right
package config

import (
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/machbase/neo-odbc/database"
	"github.com/machbase/neo-odbc/dbms"
	"github.com/machbase/neo-odbc/sqlerr"
	"github.com/machbase/neo-odbc/table"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	FileName  = "neo-odbc.yaml"
	EnvPrefix = "NEO_ODBC_"

	DefaultLogLevel   = "warn"
	DefaultDataSource = "default"
)

type DataSourceConfig struct {
	Driver    string `koanf:"driver"`
	DSN       string `koanf:"dsn"`
	Product   string `koanf:"product"`
	Commit    string `koanf:"commit"`
	Isolation string `koanf:"isolation"`
	// CharTrim is one of none, left, right or both.
	CharTrim        string `koanf:"chartrim"`
	TimestampDigits *int   `koanf:"timestampdigits"`
	QueryParamInfo  *bool  `koanf:"queryparaminfo"`
}

type Config struct {
	LogLevel string `koanf:"loglevel"`
	// DataSource is the name the commands connect to.
	DataSource  string                      `koanf:"datasource"`
	DataSources map[string]DataSourceConfig `koanf:"datasources"`

	// File is the yaml file that was read, empty if there was none.
	File string `koanf:"-"`
}

// Load reads the configuration. path names the yaml file; when empty
// neo-odbc.yaml in the working directory is read if it exists. flags may be
// nil, only flags that were changed are applied. A flag maps to the key
// spelled without dashes, --log-level sets loglevel.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"loglevel":   DefaultLogLevel,
		"datasource": DefaultDataSource,
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	used := findFile(path)
	if path != "" && used == "" {
		return nil, sqlerr.NotFound("config file %s", path)
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", used)
		}
	}

	// NEO_ODBC_DATASOURCES__TEST__DSN -> datasources.test.dsn
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", ""), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.File = used
	return &cfg, nil
}

func findFile(path string) string {
	if path == "" {
		path = FileName
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Names returns the configured data source names, sorted.
func (c *Config) Names() []string {
	ret := make([]string, 0, len(c.DataSources))
	for name := range c.DataSources {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Level parses LogLevel, unknown names give warn.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// DataSourceOf converts the named entry.
func (c *Config) DataSourceOf(name string) (*database.DataSource, error) {
	dc, ok := c.DataSources[name]
	if !ok {
		return nil, sqlerr.NotFound("data source '%s' in config", name)
	}
	return dc.DataSource(name)
}

// DataSource converts the entry. name is only used in error messages.
func (dc DataSourceConfig) DataSource(name string) (*database.DataSource, error) {
	if dc.Driver == "" {
		return nil, sqlerr.IllegalArgument("data source '%s' has no driver", name)
	}
	ds := &database.DataSource{
		Driver:          dc.Driver,
		DSN:             dc.DSN,
		Product:         dbms.ParseProduct(dc.Product),
		TimestampDigits: dc.TimestampDigits,
		QueryParamInfo:  dc.QueryParamInfo,
	}
	if dc.Product != "" && ds.Product == dbms.UnknownProduct {
		return nil, sqlerr.IllegalArgument("data source '%s' has unknown product '%s'", name, dc.Product)
	}
	if ds.Product == dbms.UnknownProduct {
		ds.Product = dbms.ProductForDriver(dc.Driver)
	}
	var err error
	if ds.CommitMode, err = database.ParseCommitMode(dc.Commit); err != nil {
		return nil, errors.Wrapf(err, "data source '%s'", name)
	}
	if ds.Isolation, err = database.ParseIsolation(dc.Isolation); err != nil {
		return nil, errors.Wrapf(err, "data source '%s'", name)
	}
	if _, err = dc.TableOpenFlags(); err != nil {
		return nil, errors.Wrapf(err, "data source '%s'", name)
	}
	return ds, nil
}

// TableOpenFlags returns the CHAR trim flags for tables of the data source.
func (dc DataSourceConfig) TableOpenFlags() (table.OpenFlags, error) {
	switch strings.ToLower(strings.TrimSpace(dc.CharTrim)) {
	case "", "none":
		return table.OpenNone, nil
	case "right":
		return table.OpenCharTrimRight, nil
	case "left":
		return table.OpenCharTrimLeft, nil
	case "both":
		return table.OpenCharTrimLeft | table.OpenCharTrimRight, nil
	}
	return table.OpenNone, sqlerr.IllegalArgument("unknown chartrim '%s'", dc.CharTrim)
}

// Apply registers every data source with env. Nothing is registered when
// one of them is invalid.
func (c *Config) Apply(env *database.Environment) error {
	sources := make(map[string]*database.DataSource, len(c.DataSources))
	for _, name := range c.Names() {
		ds, err := c.DataSourceOf(name)
		if err != nil {
			return err
		}
		sources[name] = ds
	}
	for name, ds := range sources {
		env.RegisterDataSource(name, ds)
	}
	return nil
}
