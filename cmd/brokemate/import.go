package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/ofx"
	"github.com/Veraticus/brokemate/internal/summary"
	"github.com/spf13/cobra"
)

func importCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import debits from OFX/QFX bank statements",
		Long: `Import the debits of OFX or QFX statements exported from your bank as expenses.
Credits are skipped. Bank fees and service charges are filed under Utilities;
everything else gets --category.

Examples:
  # Preview a statement
  brokemate import --dry-run ~/Downloads/hdfc_sep.ofx

  # Import every statement in a directory as shopping
  brokemate import --category shopping ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: opts.withApp(runImport),
	}

	cmd.Flags().StringP("category", "c", model.CategoryOther.String(), "category for imported expenses")
	cmd.Flags().BoolP("dry-run", "d", false, "show what would be imported without sending anything")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	categoryName, _ := cmd.Flags().GetString("category")

	category, err := model.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	parser, err := ofx.NewParser(category, a.logger)
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	entries, skipped, err := parseStatements(parser, files)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.println(cli.FormatWarning(fmt.Sprintf("No debits found (%d credits skipped)", skipped)))
		return nil
	}

	drafts := make([]model.Draft, len(entries))
	for i, e := range entries {
		drafts[i] = e.Draft
	}

	if dryRun {
		a.println(cli.FormatTitle(fmt.Sprintf("Would import %d expenses", len(drafts))))
		for _, d := range drafts {
			a.printf("  %-10s  %-13s  %12s  %s\n", d.Date, d.Category, summary.FormatAmount(d.Amount), d.Description)
		}
		a.printf("\n%d credits skipped. Nothing was sent.\n", skipped)
		return nil
	}

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(drafts), "Importing")
	for i, d := range drafts {
		if err := a.store.Create(ctx, d); err != nil {
			_ = bar.Exit()
			return fmt.Errorf("import stopped after %d of %d expenses: %w", i, len(drafts), err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	a.println(cli.FormatSuccess(fmt.Sprintf("Imported %d expenses (%d credits skipped)", len(drafts), skipped)))
	return nil
}

// expandFiles resolves glob patterns; a pattern without matches is kept when it names a file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				slog.Warn("no files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseStatements parses every file, dropping transactions already seen in an earlier file.
func parseStatements(parser *ofx.Parser, files []string) ([]ofx.Entry, int, error) {
	var (
		entries []ofx.Entry
		skipped int
	)
	seen := make(map[string]bool)

	for _, path := range files {
		result, err := parseFile(parser, path)
		if err != nil {
			return nil, 0, err
		}
		skipped += result.Skipped
		added := 0
		for _, e := range result.Entries {
			key := e.Account + "/" + e.FitID
			if e.FitID != "" && seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
			added++
		}
		slog.Info("parsed statement",
			"file", filepath.Base(path),
			"debits", len(result.Entries),
			"added", added,
			"duplicates", len(result.Entries)-added)
	}
	return entries, skipped, nil
}

func parseFile(parser *ofx.Parser, path string) (ofx.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return ofx.Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	result, err := parser.Parse(f)
	if err != nil {
		return ofx.Result{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return result, nil
}
