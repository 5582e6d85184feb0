package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetsdb/pkg/sheetsdb"
	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func newRowsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rows <spreadsheet> <worksheet>",
		Short: "Print every row of a worksheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := openTable(s, args[0], args[1])
			if err != nil {
				return err
			}
			rows, err := table.All()
			if err != nil {
				return err
			}
			return a.printRows(cmd, table, rows)
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <spreadsheet> <worksheet> <attr>=<value>",
		Short: "Print the rows whose attribute matches a value",
		Long: `Find scans the worksheet for rows whose attribute equals the value. The
value is decoded the way the cell would be, so id=7 matches the integer id 7.

Example:
  sheetsdb find Roadmap Tasks owner=anna
  sheetsdb find Roadmap Tasks id=7`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr, raw, err := parseAssignment(args[2])
			if err != nil {
				return err
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			table, err := openTable(s, args[0], args[1])
			if err != nil {
				return err
			}
			def, ok := table.Schema().Attribute(attr)
			if !ok {
				return fmt.Errorf("%w: %q is not a column of %s", types.ErrUnknownAttribute, attr, args[1])
			}
			value, err := sheetsdb.Decode(raw, def)
			if err != nil {
				return err
			}
			rows, err := table.FindByAttribute(attr, value)
			if err != nil {
				return err
			}
			return a.printRows(cmd, table, rows)
		},
	}
}

func (a *app) printRows(cmd *cobra.Command, table *sheetsdb.Worksheet, rows []*sheetsdb.Row) error {
	records, err := recordsOf(rows)
	if err != nil {
		return err
	}
	columns, err := table.ColumnNames()
	if err != nil {
		return err
	}
	return a.printRecords(cmd.OutOrStdout(), columns, records)
}
