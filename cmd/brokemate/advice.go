package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/brokemate/internal/charts"
	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/summary"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const markdownWidth = 80

func summaryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, flag breakdown and spending by category",
		Long: `Show totals, flag breakdown and spending by category.

Example:
  # Also write a pie chart of the categories
  brokemate summary --chart spending.png`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(runSummary),
	}

	cmd.Flags().String("chart", "", "write a PNG pie chart of the category breakdown to this path")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string, a *app) error {
	if err := a.load(cmd); err != nil {
		return err
	}
	s := summary.Summarize(a.store.Expenses())
	a.printSummary(s)

	chartPath, _ := cmd.Flags().GetString("chart")
	if chartPath == "" {
		return nil
	}
	if err := writeChart(chartPath, s); err != nil {
		return err
	}
	a.println(cli.FormatSuccess("Chart written to " + chartPath))
	return nil
}

func writeChart(path string, s summary.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", closeErr)
		}
	}()
	return charts.RenderCategoryPie(f, s)
}

func (a *app) printSummary(s summary.Summary) {
	a.println(cli.FormatTitle("Summary"))
	a.printf("%-16s %s\n", "Total", summary.FormatAmount(s.TotalAmount))
	a.printf("%-16s %d\n", "Transactions", s.TransactionCount)
	a.printf("%-16s %s\n", "Average", summary.FormatAmount(s.AverageAmount))
	a.printf("%-16s %s (%d)\n", cli.PositiveIcon+" Good spending", summary.FormatAmount(s.PositiveAmount), s.Flags.Positive)
	a.printf("%-16s %s (%d)\n", cli.NegativeIcon+" Avoidable", summary.FormatAmount(s.NegativeAmount), s.Flags.Negative)

	if len(s.ByCategory) == 0 {
		return
	}
	a.println()
	a.println(cli.ChartIcon + " By category")
	for _, ct := range s.ByCategory {
		a.printf("  %-14s %4d  %12s  %5s%%\n", ct.Category, ct.Count, summary.FormatAmount(ct.Amount), s.Share(ct.Category).StringFixed(1))
	}
}

// markdownStyle picks a glamour style for w: styled on a terminal, plain otherwise.
func markdownStyle(w io.Writer) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return cli.MarkdownDark
	}
	return cli.MarkdownPlain
}

func (a *app) printMarkdown(text string) {
	a.println(cli.RenderMarkdown(text, markdownWidth, markdownStyle(a.out)))
}

func analyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Ask the advisor to analyze your spending",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			var analysis string
			err := cli.WithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Analyzing", func(ctx context.Context) error {
				var err error
				analysis, err = a.advisor.Analyze(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			a.println(cli.FormatTitle("Analysis"))
			a.printMarkdown(analysis)
			return nil
		}),
	}
}

func chatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the advisor about your spending",
		Long: `Ask the advisor about your spending.

With a question the answer is printed and the command exits. Without one an
interactive conversation starts; an empty line or "exit" ends it.

Examples:
  brokemate chat "how much did I spend on food?"
  brokemate chat`,
		RunE: opts.withApp(runChat),
	}
}

func runChat(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()

	if len(args) > 0 {
		return a.ask(cmd, strings.Join(args, " "))
	}

	a.println(cli.FormatInfo(cli.RobotIcon + " Ask me about your spending. Empty line or \"exit\" to quit."))
	for {
		query, err := a.prompter.Ask(ctx, "You", "")
		if errors.Is(err, cli.ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if query == "" || strings.EqualFold(query, "exit") {
			return nil
		}
		if err := a.ask(cmd, query); err != nil {
			return err
		}
	}
}

func (a *app) ask(cmd *cobra.Command, query string) error {
	var reply string
	err := cli.WithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Thinking", func(ctx context.Context) error {
		var err error
		reply, err = a.advisor.Chat(ctx, query)
		return err
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	a.println(cli.RobotIcon + " Brokemate:")
	a.printMarkdown(reply)
	return nil
}

func reportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the summary together with the advisor's analysis",
		Args:  cobra.NoArgs,
		RunE:  opts.withApp(runReport),
	}
}

func runReport(cmd *cobra.Command, _ []string, a *app) error {
	var analysis string

	err := cli.WithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Building report", func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return a.store.Refresh(ctx)
		})
		g.Go(func() error {
			var err error
			analysis, err = a.advisor.Analyze(ctx)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	a.printSummary(summary.Summarize(a.store.Expenses()))
	a.println()
	a.println(cli.FormatTitle("Analysis"))
	a.printMarkdown(analysis)
	return nil
}
