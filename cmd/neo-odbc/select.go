package main

import (
	"fmt"
	"time"

	"github.com/machbase/neo-odbc/browse"
	"github.com/machbase/neo-odbc/buffer"
	"github.com/machbase/neo-odbc/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewSelectCommand() *cobra.Command {
	var schema, where, timeformat, tz, output string
	var limit int64
	var rownum, heading, skipUnsupported, forwardOnly bool
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Print rows of a table",
		Example: `  neo-odbc select integertypes --where 'tint > 0' --limit 10
  neo-odbc select datetypes --timeformat rfc3339 --tz UTC -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return errors.Wrapf(err, "time zone %s", tz)
			}
			renderer, err := browse.NewRowsRenderer(output)
			if err != nil {
				return err
			}

			a := appFrom(cmd)
			ctx := cmd.Context()
			db, flags, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if skipUnsupported {
				flags |= table.OpenSkipUnsupportedColumns
			}
			if forwardOnly {
				flags |= table.OpenForwardOnlyCursors
			}

			t := table.NewByName(db, table.AccessSelectWhere, args[0], schema, "", "", table.WithLogger(a.log))
			if err := t.Open(ctx, flags); err != nil {
				return err
			}
			defer t.Close()

			var renderErr error
			n, err := browse.DoSelect(ctx, &browse.QueryContext{
				Table: t,
				Where: where,
				Limit: limit,
				OnFetchStart: func(cols []buffer.ColumnBuffer) {
					rctx := &browse.RowsRendererContext{
						Writer:       cmd.OutOrStdout(),
						Rownum:       rownum,
						Heading:      heading,
						TimeLocation: loc,
						TimeFormat:   timeformat,
					}
					for _, c := range cols {
						rctx.ColumnNames = append(rctx.ColumnNames, c.QueryName())
						rctx.ColumnTypes = append(rctx.ColumnTypes, c.SqlType().String())
					}
					renderErr = renderer.OpenRender(rctx)
				},
				OnFetch: func(rownum int64, values []any) bool {
					if renderErr == nil {
						renderErr = renderer.RenderRow(rownum, values)
					}
					return renderErr == nil
				},
				OnFetchEnd: func() {
					if renderErr == nil {
						renderErr = renderer.CloseRender()
					}
				},
			})
			if err != nil {
				return err
			}
			if renderErr != nil {
				return renderErr
			}
			a.log.Debug("select done", "table", t.QueryName(), "rows", n)
			if output == browse.OutputTable && heading {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows fetched.\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "schema of the table")
	cmd.Flags().StringVarP(&where, "where", "w", "", "condition appended as WHERE clause")
	cmd.Flags().Int64VarP(&limit, "limit", "l", 0, "stop after this many rows, 0 for all")
	cmd.Flags().StringVarP(&timeformat, "timeformat", "t", "default", "time format name, Go layout or epoch")
	cmd.Flags().StringVar(&tz, "tz", "Local", "time zone of timestamps")
	cmd.Flags().StringVarP(&output, "output", "o", browse.OutputTable, "table or yaml")
	cmd.Flags().BoolVar(&rownum, "rownum", false, "print row numbers")
	cmd.Flags().BoolVar(&heading, "heading", true, "print the column names")
	cmd.Flags().BoolVar(&skipUnsupported, "skip-unsupported", false, "leave out columns of unsupported types")
	cmd.Flags().BoolVar(&forwardOnly, "forward-only", false, "use a forward only cursor")
	return cmd
}
