package main

import (
	"fmt"

	"github.com/machbase/neo-odbc/testdb"
	"github.com/spf13/cobra"
)

func NewTestdbCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "testdb <path>",
		Short: "Create a SQLite database with sample tables of every column type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := testdb.Create(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
			return nil
		},
	}
}
