package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/summary"
	"github.com/spf13/cobra"
)

// expenseFilter narrows the listed expenses. Zero fields match everything.
type expenseFilter struct {
	from     model.Date
	to       model.Date
	category model.Category
	flag     model.Flag
	anyFlag  bool
}

func (f expenseFilter) match(e model.Expense) bool {
	if f.category != "" && e.Category != f.category {
		return false
	}
	if !f.anyFlag && e.Flag != f.flag {
		return false
	}
	if !f.from.IsZero() && e.Date.Before(f.from.Time) {
		return false
	}
	if !f.to.IsZero() && e.Date.After(f.to.Time) {
		return false
	}
	return true
}

func filterExpenses(expenses []model.Expense, f expenseFilter) []model.Expense {
	matched := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.match(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

func parseFilter(cmd *cobra.Command) (expenseFilter, error) {
	f := expenseFilter{anyFlag: true}

	if s, _ := cmd.Flags().GetString("category"); s != "" {
		c, err := model.ParseCategory(s)
		if err != nil {
			return f, err
		}
		f.category = c
	}
	if s, _ := cmd.Flags().GetString("flag"); s != "" {
		flag, err := model.ParseFlag(s)
		if err != nil {
			return f, err
		}
		f.flag = flag
		f.anyFlag = false
	}
	for name, dst := range map[string]*model.Date{"from": &f.from, "to": &f.to} {
		if s, _ := cmd.Flags().GetString(name); s != "" {
			d, err := model.ParseDate(s)
			if err != nil {
				return f, err
			}
			*dst = d
		}
	}
	if !f.from.IsZero() && !f.to.IsZero() && f.to.Before(f.from.Time) {
		return f, common.NewValidationError("to", "must not be before --from")
	}
	return f, nil
}

func listCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your expenses",
		Long: `List your expenses, newest first.

Examples:
  # Everything
  brokemate list

  # Food spending marked avoidable in September
  brokemate list --category food --flag negative --from 2025-09-01 --to 2025-09-30`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(runList),
	}

	cmd.Flags().String("category", "", "only show this category")
	cmd.Flags().String("flag", "", "only show this flag (positive, negative, unset)")
	cmd.Flags().String("from", "", "only show expenses on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "only show expenses on or before this date (YYYY-MM-DD)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string, a *app) error {
	filter, err := parseFilter(cmd)
	if err != nil {
		return err
	}
	if err := a.load(cmd); err != nil {
		return err
	}

	all := a.store.Expenses()
	shown := filterExpenses(all, filter)
	if len(all) == 0 {
		a.println(cli.FormatInfo("No expenses yet. Add one with `brokemate add`."))
		return nil
	}

	a.println(cli.FormatTitle("Expenses"))
	a.printExpenses(shown)
	if len(shown) != len(all) {
		a.printf("\nShowing %d of %d expenses (%s)\n", len(shown), len(all), summary.FormatAmount(summary.Summarize(shown).TotalAmount))
	}
	return nil
}

func (a *app) printExpenses(expenses []model.Expense) {
	a.printf("%6s  %-10s  %-13s  %12s  %s  %s\n", "ID", "Date", "Category", "Amount", "  ", "Description")
	for _, e := range expenses {
		a.printf("%6s  %-10s  %-13s  %12s  %s  %s\n",
			e.ID, e.Date, e.Category, summary.FormatAmount(e.Amount), cli.FlagIcon(e.Flag), e.Description)
	}
}

// load refreshes the store behind a spinner.
func (a *app) load(cmd *cobra.Command) error {
	return cli.WithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Loading expenses", a.store.Refresh)
}

func addExpenseFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("amount", "a", "", "amount in rupees")
	cmd.Flags().StringP("category", "c", "", "category ("+strings.ToLower(categoryNames())+")")
	cmd.Flags().StringP("description", "m", "", "optional description")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default today)")
}

func categoryNames() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func addCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Long: `Record a new expense. Missing amount and category are prompted for.

Examples:
  brokemate add --amount 250 --category food --description "chai and samosa"
  brokemate add -a 1499 -c entertainment -m netflix --date 2025-09-01`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(runAdd),
	}
	addExpenseFlags(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string, a *app) error {
	ctx := cmd.Context()

	amount, _ := cmd.Flags().GetString("amount")
	category, _ := cmd.Flags().GetString("category")
	description, _ := cmd.Flags().GetString("description")
	date, _ := cmd.Flags().GetString("date")

	var err error
	if amount == "" {
		if amount, err = a.prompter.Ask(ctx, "Amount", ""); err != nil {
			return err
		}
	}
	if category == "" {
		if category, err = a.prompter.Ask(ctx, "Category ("+categoryNames()+")", model.CategoryOther.String()); err != nil {
			return err
		}
	}

	draft, err := model.ParseDraft(amount, category, description, date)
	if err != nil {
		return err
	}
	if err := a.store.Create(ctx, draft); err != nil {
		return fmt.Errorf("failed to add expense: %w", err)
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Added %s for %s on %s", summary.FormatAmount(draft.Amount), draft.Category, draft.Date)))
	return nil
}

func editCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <expense-id>",
		Short: "Change an existing expense",
		Long: `Change an existing expense. Fields without a flag keep their current value.

Example:
  brokemate edit 12 --amount 300 --description "dinner"`,
		Args: cobra.ExactArgs(1),
		RunE: opts.withApp(runEdit),
	}
	addExpenseFlags(cmd)
	return cmd
}

func runEdit(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()

	id, err := model.ParseExpenseID(args[0])
	if err != nil {
		return err
	}
	if err := a.load(cmd); err != nil {
		return err
	}
	existing, ok := a.store.Find(id)
	if !ok {
		return fmt.Errorf("expense %s not found", id)
	}

	fields := map[string]string{
		"amount":      existing.Amount.StringFixed(model.AmountPlaces),
		"category":    existing.Category.String(),
		"description": existing.Description,
		"date":        existing.Date.String(),
	}
	changed := false
	for name := range fields {
		if cmd.Flags().Changed(name) {
			fields[name], _ = cmd.Flags().GetString(name)
			changed = true
		}
	}
	if !changed {
		return common.NewValidationError("", "nothing to change: pass at least one of --amount, --category, --description or --date")
	}

	draft, err := model.ParseDraft(fields["amount"], fields["category"], fields["description"], fields["date"])
	if err != nil {
		return err
	}
	if err := a.store.Update(ctx, id, draft); err != nil {
		return fmt.Errorf("failed to update expense %s: %w", id, err)
	}

	a.println(cli.FormatSuccess(fmt.Sprintf("Expense %s updated", id)))
	return nil
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <expense-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE:    opts.withApp(runDelete),
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()

	id, err := model.ParseExpenseID(args[0])
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes {
		if err := a.load(cmd); err != nil {
			return err
		}
		if e, ok := a.store.Find(id); ok {
			a.printExpenses([]model.Expense{e})
		}
		confirmed, err := a.prompter.Confirm(ctx, fmt.Sprintf("Delete expense %s?", id), false)
		if err != nil {
			return err
		}
		if !confirmed {
			a.println("Operation canceled.")
			return nil
		}
	}

	if err := a.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	a.println(cli.FormatSuccess(fmt.Sprintf("Expense %s deleted", id)))
	return nil
}

func flagCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flag <expense-id> <positive|negative>",
		Short: "Mark an expense as good or avoidable spending",
		Long: `Mark an expense as good (positive, green) or avoidable (negative, red) spending.

Example:
  brokemate flag 12 negative`,
		Args: cobra.ExactArgs(2),
		RunE: opts.withApp(runFlag),
	}
}

func runFlag(cmd *cobra.Command, args []string, a *app) error {
	id, err := model.ParseExpenseID(args[0])
	if err != nil {
		return err
	}
	flag, err := model.ParseFlag(args[1])
	if err != nil {
		return err
	}
	if !flag.Settable() {
		return common.NewValidationError("flag", "must be positive or negative")
	}

	if err := a.store.SetFlag(cmd.Context(), id, flag); err != nil {
		return fmt.Errorf("failed to flag expense %s: %w", id, err)
	}
	a.println(cli.FormatSuccess(fmt.Sprintf("%s Expense %s flagged %s", cli.FlagIcon(flag), id, flag)))
	return nil
}
