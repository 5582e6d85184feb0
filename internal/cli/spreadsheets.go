package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetsdb/pkg/types"
)

func newSpreadsheetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "spreadsheets",
		Short: "List the spreadsheets in the root collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			root, err := s.Drive().Root()
			if err != nil {
				return err
			}
			books, err := root.Spreadsheets()
			if err != nil {
				return fmt.Errorf("list spreadsheets: %w", err)
			}
			if a.flags.jsonMode {
				out := make([]map[string]any, 0, len(books))
				for _, b := range books {
					out = append(out, map[string]any{
						"id":         b.ID(),
						"name":       b.Name(),
						"url":        b.HumanURL(),
						"updated_at": b.ModifiedTime(),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			names := make([]string, 0, len(books))
			for _, b := range books {
				names = append(names, b.Name())
			}
			return a.printNames(cmd.OutOrStdout(), names)
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <spreadsheet> <worksheet> <column...>",
		Short: "Create a worksheet with a header row",
		Long: `Create adds a worksheet whose first row names the given columns. The
spreadsheet is created in the root collection when it does not exist. An
"id" column is put first when it is not listed.

Example:
  sheetsdb create Roadmap Tasks title owner due`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookTitle, sheetTitle, header := args[0], args[1], withID(args[2:])

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			root, err := s.Drive().Root()
			if err != nil {
				return err
			}
			raw, err := root.SpreadsheetByTitle(bookTitle)
			if err != nil {
				return err
			}
			if raw == nil {
				if raw, err = root.CreateSpreadsheet(bookTitle); err != nil {
					return fmt.Errorf("create spreadsheet: %w", err)
				}
			}
			existing, err := raw.WorksheetByTitle(sheetTitle)
			if err != nil {
				return err
			}
			if existing != nil {
				n, err := existing.NumRows()
				if err != nil {
					return err
				}
				if n > 0 {
					return fmt.Errorf("%w: worksheet %q already has rows", types.ErrInvalidName, sheetTitle)
				}
			}

			book, err := s.WrapSpreadsheet(raw, nil)
			if err != nil {
				return err
			}
			schema, err := inferSchema(sheetTitle, header)
			if err != nil {
				return err
			}
			table, err := book.FindWorksheet(sheetTitle, schema, true)
			if err != nil {
				return err
			}
			if err := table.WriteMatrix([][]string{header}); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			a.logger.Info("created worksheet", "spreadsheet", bookTitle, "worksheet", sheetTitle, "columns", len(header))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s/%s with columns %v\n", bookTitle, sheetTitle, header)
			return nil
		},
	}
}

func newWorksheetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worksheets <spreadsheet>",
		Short: "List the worksheets of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			book, err := findBook(s, args[0])
			if err != nil {
				return err
			}
			sheets, err := book.Raw().(types.RawSpreadsheet).Worksheets()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(sheets))
			for _, w := range sheets {
				names = append(names, w.Title())
			}
			return a.printNames(cmd.OutOrStdout(), names)
		},
	}
}
