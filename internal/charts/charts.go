// Package charts renders the category breakdown of a summary as an image.
package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/brokemate/internal/summary"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no expenses to chart")

// Size is the edge length of the rendered chart in pixels.
const Size = 640

// CategoryValues converts the breakdown to chart values, keeping the summary's order so
// that segments stay in the same place between renders.
func CategoryValues(s summary.Summary) []chart.Value {
	categories := s.Categories()
	values := make([]chart.Value, 0, len(categories))
	for _, c := range categories {
		ct, _ := s.Category(c)
		amount, _ := ct.Amount.Float64()
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s%%", c, s.Share(c).String()),
			Value: amount,
		})
	}
	return values
}

// RenderCategoryPie writes a PNG pie chart of the category breakdown to w.
func RenderCategoryPie(w io.Writer, s summary.Summary) error {
	if len(s.ByCategory) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Spending by category (" + summary.FormatAmount(s.TotalAmount) + ")",
		Width:  Size,
		Height: Size,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Values: CategoryValues(s),
	}

	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
