package sheets

import (
	"time"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/summary"
)

// Column layout shared by the category and expense sections so one currency
// format covers both.
const (
	amountColumn = 2
	lastColumn   = 6
)

// Report is everything written to the sheet.
type Report struct {
	GeneratedAt time.Time
	Summary     summary.Summary
	Expenses    []model.Expense
}

// NewReport builds a report over a collection snapshot.
func NewReport(expenses []model.Expense, generatedAt time.Time) Report {
	return Report{
		GeneratedAt: generatedAt,
		Summary:     summary.Summarize(expenses),
		Expenses:    expenses,
	}
}

// Rows lays the report out as sheet values: a summary block, the category
// breakdown in first-occurrence order, then every expense in collection order.
func (r Report) Rows() [][]any {
	s := r.Summary
	values := make([][]any, 0, 16+len(s.ByCategory)+len(r.Expenses))

	values = append(values,
		[]any{"Brokemate Expenses", r.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Amount", "", s.TotalAmount.InexactFloat64()},
		[]any{"Average Amount", "", s.AverageAmount.InexactFloat64()},
		[]any{"Transactions", s.TransactionCount},
		[]any{"Positive", s.Flags.Positive, s.PositiveAmount.InexactFloat64()},
		[]any{"Negative", s.Flags.Negative, s.NegativeAmount.InexactFloat64()},
		[]any{},
		[]any{"Category Breakdown"},
		[]any{"Category", "Count", "Amount", "Share"},
	)

	for _, ct := range s.ByCategory {
		values = append(values, []any{
			ct.Category.String(),
			ct.Count,
			ct.Amount.InexactFloat64(),
			s.Share(ct.Category).String() + "%",
		})
	}

	values = append(values,
		[]any{},
		[]any{"Expenses"},
		[]any{"Date", "Category", "Amount", "Description", "Flag", "ID"},
	)

	for _, e := range r.Expenses {
		values = append(values, []any{
			e.Date.String(),
			e.Category.String(),
			e.Amount.InexactFloat64(),
			e.Description,
			flagLabel(e.Flag),
			e.ID.String(),
		})
	}

	return values
}

func flagLabel(f model.Flag) string {
	if f == model.FlagUnset {
		return ""
	}
	return f.String()
}
