// Package summary derives aggregate statistics from an expense collection.
package summary

import (
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/shopspring/decimal"
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Amount   decimal.Decimal
	Category model.Category
	Count    int
}

// FlagCounts counts records per flag state.
type FlagCounts struct {
	Positive int
	Negative int
	Unset    int
}

// Summary holds the derived statistics of one collection.
type Summary struct {
	TotalAmount      decimal.Decimal
	AverageAmount    decimal.Decimal
	PositiveAmount   decimal.Decimal
	NegativeAmount   decimal.Decimal
	ByCategory       []CategoryTotal
	Flags            FlagCounts
	TransactionCount int
}

// Summarize computes the summary of expenses. Categories appear in ByCategory in the
// order of their first occurrence in expenses.
func Summarize(expenses []model.Expense) Summary {
	s := Summary{
		TotalAmount:    decimal.Zero,
		AverageAmount:  decimal.Zero,
		PositiveAmount: decimal.Zero,
		NegativeAmount: decimal.Zero,
		ByCategory:     []CategoryTotal{},
	}

	index := make(map[model.Category]int)
	for _, e := range expenses {
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		s.TransactionCount++

		i, seen := index[e.Category]
		if !seen {
			i = len(s.ByCategory)
			index[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryTotal{Category: e.Category, Amount: decimal.Zero})
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(e.Amount)
		s.ByCategory[i].Count++

		switch e.Flag {
		case model.FlagPositive:
			s.Flags.Positive++
			s.PositiveAmount = s.PositiveAmount.Add(e.Amount)
		case model.FlagNegative:
			s.Flags.Negative++
			s.NegativeAmount = s.NegativeAmount.Add(e.Amount)
		default:
			s.Flags.Unset++
		}
	}

	if s.TransactionCount > 0 {
		s.AverageAmount = s.TotalAmount.Div(decimal.NewFromInt(int64(s.TransactionCount)))
	}
	return s
}

// Category returns the total of c, if c occurs in the collection.
func (s Summary) Category(c model.Category) (CategoryTotal, bool) {
	for _, ct := range s.ByCategory {
		if ct.Category == c {
			return ct, true
		}
	}
	return CategoryTotal{}, false
}

// Share returns the percentage of the total spent on c, rounded to one place.
func (s Summary) Share(c model.Category) decimal.Decimal {
	ct, ok := s.Category(c)
	if !ok || s.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return ct.Amount.Mul(decimal.NewFromInt(100)).Div(s.TotalAmount).Round(1)
}

// Top returns the category with the highest total. Ties go to the earlier category.
func (s Summary) Top() (CategoryTotal, bool) {
	if len(s.ByCategory) == 0 {
		return CategoryTotal{}, false
	}
	top := s.ByCategory[0]
	for _, ct := range s.ByCategory[1:] {
		if ct.Amount.GreaterThan(top.Amount) {
			top = ct
		}
	}
	return top, true
}

// Categories returns the categories present, in first-occurrence order.
func (s Summary) Categories() []model.Category {
	out := make([]model.Category, 0, len(s.ByCategory))
	for _, ct := range s.ByCategory {
		out = append(out, ct.Category)
	}
	return out
}
