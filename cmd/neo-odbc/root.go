package main

import (
	"context"
	"log/slog"

	"github.com/machbase/neo-odbc/config"
	"github.com/machbase/neo-odbc/database"
	"github.com/machbase/neo-odbc/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type appKey struct{}

// app is what every command gets from the root command.
type app struct {
	cfg *config.Config
	env *database.Environment
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "neo-odbc",
		Short: "Browse database tables through typed column buffers",
		Long: `neo-odbc opens tables of a configured data source, maps their columns to
typed buffers and reads rows through them.

Data sources are read from neo-odbc.yaml, NEO_ODBC_ environment variables
and flags. --data-source also accepts a URL such as
sqlite:///tmp/test.db?commit=manual.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			env := database.NewEnvironment()
			if err := cfg.Apply(env); err != nil {
				return err
			}
			a := &app{
				cfg: cfg,
				env: env,
				log: slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()})),
			}
			if cfg.File != "" {
				a.log.Debug("config loaded", "file", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./neo-odbc.yaml)")
	root.PersistentFlags().StringP("data-source", "d", config.DefaultDataSource, "data source name or URL")
	root.PersistentFlags().String("log-level", config.DefaultLogLevel, "debug, info, warn or error")

	root.AddCommand(
		NewTablesCommand(),
		NewDescribeCommand(),
		NewSelectCommand(),
		NewTestdbCommand(),
	)
	return root
}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: &config.Config{}, env: database.NewEnvironment(), log: slog.New(slog.DiscardHandler)}
}

// open connects to the selected data source. The returned flags carry the
// CHAR trim configured for it.
func (a *app) open(ctx context.Context) (*database.Database, table.OpenFlags, error) {
	name := a.cfg.DataSource
	flags := table.OpenNone
	if dc, ok := a.cfg.DataSources[name]; ok {
		f, err := dc.TableOpenFlags()
		if err != nil {
			return nil, flags, err
		}
		flags = f
	}
	db, err := a.env.Open(ctx, name, database.WithLogger(a.log))
	if err != nil {
		return nil, flags, errors.Wrapf(err, "open data source '%s'", name)
	}
	return db, flags, nil
}
