package main

import (
	"github.com/machbase/neo-odbc/browse"
	"github.com/machbase/neo-odbc/table"
	"github.com/spf13/cobra"
)

func NewDescribeCommand() *cobra.Command {
	var schema, output string
	var skipUnsupported bool
	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show how the columns of a table map to buffers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			db, flags, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if skipUnsupported {
				flags |= table.OpenSkipUnsupportedColumns
			}
			d, err := browse.Describe(cmd.Context(), db, args[0], schema, flags)
			if err != nil {
				return err
			}
			return browse.RenderDescription(cmd.OutOrStdout(), d, output)
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema of the table")
	cmd.Flags().StringVarP(&output, "output", "o", browse.OutputTable, "table or yaml")
	cmd.Flags().BoolVar(&skipUnsupported, "skip-unsupported", false, "leave out columns of unsupported types")
	return cmd
}
