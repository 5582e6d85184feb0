package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetsdb/internal/jsonl"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <spreadsheet> <worksheet> <file.jsonl>",
		Short: "Write every row of a worksheet to a JSONL file",
		Args:  cobra.ExactArgs(3),
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
			records, err := recordsOf(rows)
			if err != nil {
				return err
			}
			lines, err := jsonl.Marshal(records)
			if err != nil {
				return err
			}
			if err := jsonl.Write(args[2], lines); err != nil {
				return fmt.Errorf("write %s: %w", args[2], err)
			}
			a.logger.Info("exported rows", "worksheet", args[1], "count", len(lines), "file", args[2])
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", len(lines), args[2])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <spreadsheet> <worksheet> <file.jsonl>",
		Short: "Append the records of a JSONL file as rows",
		Long: `Import appends one row per JSON object, writing the keys that name
columns of the worksheet. The worksheet is synchronized once at the end.
Blank and malformed lines are skipped.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := jsonl.Read(args[2])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[2], err)
			}
			records, err := jsonl.Unmarshal(lines)
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
			schema := table.Schema()
			for _, rec := range records {
				for key := range rec {
					if _, ok := schema.Attribute(key); !ok {
						a.logger.Warn("dropping field that names no column", "field", key)
						delete(rec, key)
					}
				}
			}
			rows, err := table.Import(records)
			if err != nil {
				return fmt.Errorf("import after %d rows: %w", len(rows), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s/%s\n", len(rows), args[0], args[1])
			return nil
		},
	}
}
