package main

import (
	"github.com/machbase/neo-odbc/browse"
	"github.com/spf13/cobra"
)

func NewTablesCommand() *cobra.Command {
	var schema, tableType, output string
	cmd := &cobra.Command{
		Use:   "tables [pattern]",
		Short: "List the tables of the data source",
		Example: `  neo-odbc tables
  neo-odbc tables 'order%' --schema public`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			a := appFrom(cmd)
			db, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			list, err := db.Catalog().FindTables(cmd.Context(), pattern, schema, "", tableType)
			if err != nil {
				return err
			}
			return browse.RenderTables(cmd.OutOrStdout(), list, output)
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema pattern")
	cmd.Flags().StringVar(&tableType, "type", "", "table type, for example TABLE or VIEW")
	cmd.Flags().StringVarP(&output, "output", "o", browse.OutputTable, "table or yaml")
	return cmd
}
