package summary

import (
	"testing"
	"time"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(amount string, category model.Category) model.Expense {
	return model.Expense{
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     model.NewDate(2025, time.September, 1),
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.True(t, s.TotalAmount.IsZero())
	assert.Equal(t, 0, s.TransactionCount)
	assert.True(t, s.AverageAmount.IsZero())
	assert.Empty(t, s.ByCategory)
	assert.NotNil(t, s.ByCategory)
	_, ok := s.Top()
	assert.False(t, ok)
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize([]model.Expense{expense("42.10", model.CategoryHealth)})

	assert.Equal(t, "42.1", s.TotalAmount.String())
	assert.Equal(t, 1, s.TransactionCount)
	assert.True(t, s.AverageAmount.Equal(s.TotalAmount))
	require.Len(t, s.ByCategory, 1)
	assert.Equal(t, model.CategoryHealth, s.ByCategory[0].Category)
	assert.Equal(t, "100", s.Share(model.CategoryHealth).String())
}

func TestSummarizeScenario(t *testing.T) {
	s := Summarize([]model.Expense{
		expense("100", model.CategoryFood),
		expense("50", model.CategoryFood),
		expense("25", model.CategoryTransport),
	})

	assert.Equal(t, "175", s.TotalAmount.String())
	assert.Equal(t, 3, s.TransactionCount)
	assert.Equal(t, "58.33", s.AverageAmount.StringFixed(2))
	assert.True(t, s.AverageAmount.GreaterThan(decimal.RequireFromString("58.333")))
	assert.True(t, s.AverageAmount.LessThan(decimal.RequireFromString("58.334")))

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, model.CategoryFood, s.ByCategory[0].Category)
	assert.Equal(t, "150", s.ByCategory[0].Amount.String())
	assert.Equal(t, 2, s.ByCategory[0].Count)
	assert.Equal(t, model.CategoryTransport, s.ByCategory[1].Category)
	assert.Equal(t, "25", s.ByCategory[1].Amount.String())
}

func TestSummarizeFirstOccurrenceOrder(t *testing.T) {
	s := Summarize([]model.Expense{
		expense("1", model.CategoryOther),
		expense("2", model.CategoryEntertainment),
		expense("3", model.CategoryOther),
		expense("4", model.CategoryFood),
	})

	assert.Equal(t, []model.Category{model.CategoryOther, model.CategoryEntertainment, model.CategoryFood}, s.Categories())
}

func TestSummarizeEveryCategoryExactSum(t *testing.T) {
	var expenses []model.Expense
	amounts := []string{"0.10", "0.20", "0.30", "1199.99", "0.01", "33.33", "66.67"}
	for i, c := range model.Categories {
		expenses = append(expenses, expense(amounts[i], c))
		expenses = append(expenses, expense("0.10", c))
	}

	s := Summarize(expenses)
	require.Len(t, s.ByCategory, len(model.Categories))

	sum := decimal.Zero
	for _, ct := range s.ByCategory {
		sum = sum.Add(ct.Amount)
	}
	assert.True(t, sum.Equal(s.TotalAmount), "sum %s total %s", sum, s.TotalAmount)
	assert.Equal(t, "1301.30", s.TotalAmount.StringFixed(2))

	utilities, ok := s.Category(model.CategoryUtilities)
	require.True(t, ok)
	assert.Equal(t, "1200.09", utilities.Amount.StringFixed(2))
}

func TestSummarizeFlags(t *testing.T) {
	good := expense("10", model.CategoryHealth)
	good.Flag = model.FlagPositive
	bad := expense("30", model.CategoryShopping)
	bad.Flag = model.FlagNegative

	s := Summarize([]model.Expense{good, bad, expense("5", model.CategoryFood)})
	assert.Equal(t, FlagCounts{Positive: 1, Negative: 1, Unset: 1}, s.Flags)
	assert.Equal(t, "10", s.PositiveAmount.String())
	assert.Equal(t, "30", s.NegativeAmount.String())

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, model.CategoryShopping, top.Category)
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":       "₹0.00",
		"250":     "₹250.00",
		"1200.5":  "₹1,200.50",
		"58.3333": "₹58.33",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}
