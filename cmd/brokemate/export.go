package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/config"
	"github.com/Veraticus/brokemate/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your expenses",
	}

	cmd.AddCommand(exportSheetsCmd(opts))

	return cmd
}

func exportSheetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the summary and all expenses to a Google spreadsheet",
		Long: `Write the summary, the category breakdown and every expense to a Google
spreadsheet. The sheet contents are replaced on each export.

Authentication uses either a service account (sheets.service_account_path or
GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH) or OAuth2 credentials (sheets.client_id,
sheets.client_secret and sheets.refresh_token, or the matching GOOGLE_SHEETS_*
variables).`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return runExportSheets(cmd, opts, a)
		}),
	}

	cmd.Flags().String("spreadsheet-id", "", "write to this spreadsheet instead of finding one by name")

	return cmd
}

func runExportSheets(cmd *cobra.Command, opts *rootOptions, a *app) error {
	ctx := cmd.Context()

	if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
		opts.v.Set("sheets.spreadsheet_id", id)
	}
	cfg, err := config.LoadSheets(opts.v)
	if err != nil {
		return err
	}

	if err := a.load(cmd); err != nil {
		return err
	}
	report := sheets.NewReport(a.store.Expenses(), time.Now())

	var spreadsheetID string
	err = cli.WithSpinner(ctx, cmd.ErrOrStderr(), "Exporting to Google Sheets", func(ctx context.Context) error {
		writer, err := sheets.NewWriter(ctx, cfg, a.logger)
		if err != nil {
			return err
		}
		spreadsheetID, err = writer.Write(ctx, report)
		return err
	})
	if err != nil {
		return fmt.Errorf("sheets export failed: %w", err)
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Exported %d expenses", len(report.Expenses))))
	a.printf("https://docs.google.com/spreadsheets/d/%s\n", spreadsheetID)
	return nil
}
