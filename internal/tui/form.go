package tui

import (
	"strings"

	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/tui/themes"
	"github.com/Veraticus/brokemate/internal/view"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldAmount = iota
	fieldCategory
	fieldDescription
	fieldDate
	fieldCount
)

var fieldLabels = [fieldCount]string{"Amount", "Category", "Description", "Date"}

// expenseForm is the create/edit form.
type expenseForm struct {
	err        string
	inputs     [fieldCount]textinput.Model
	target     model.ExpenseID
	mode       view.FormMode
	focus      int
	submitting bool
}

func newExpenseForm(mode view.FormMode, existing *model.Expense) expenseForm {
	f := expenseForm{mode: mode}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Width = 40
		f.inputs[i] = in
	}

	f.inputs[fieldAmount].Placeholder = "250.00"
	f.inputs[fieldAmount].CharLimit = 16
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = c.String()
	}
	f.inputs[fieldCategory].Placeholder = strings.Join(names, ", ")
	f.inputs[fieldDescription].Placeholder = "optional"
	f.inputs[fieldDescription].CharLimit = 500
	f.inputs[fieldDate].Placeholder = model.Today().String()
	f.inputs[fieldDate].CharLimit = len(model.DateLayout)

	if existing != nil {
		f.target = existing.ID
		f.inputs[fieldAmount].SetValue(existing.Amount.StringFixed(2))
		f.inputs[fieldCategory].SetValue(existing.Category.String())
		f.inputs[fieldDescription].SetValue(existing.Description)
		f.inputs[fieldDate].SetValue(existing.Date.String())
	}

	f.inputs[fieldAmount].Focus()
	return f
}

// draft parses the inputs. An empty date means today.
func (f expenseForm) draft() (model.Draft, error) {
	return model.ParseDraft(
		f.inputs[fieldAmount].Value(),
		f.inputs[fieldCategory].Value(),
		f.inputs[fieldDescription].Value(),
		f.inputs[fieldDate].Value(),
	)
}

func (f *expenseForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f expenseForm) update(msg tea.Msg) (expenseForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f expenseForm) view(theme themes.Theme) string {
	title := "Add expense"
	if f.mode == view.FormEdit {
		title = "Edit expense #" + f.target.String()
	}

	rows := []string{theme.Title.Render(title), ""}
	for i, in := range f.inputs {
		label := lipgloss.NewStyle().Width(13).Render(fieldLabels[i] + ":")
		if i == f.focus {
			label = theme.Bold.Render(label)
		} else {
			label = theme.Muted.Render(label)
		}
		rows = append(rows, label+in.View())
	}

	rows = append(rows, "")
	switch {
	case f.submitting:
		rows = append(rows, theme.StatusInfo.Render("Saving..."))
	case f.err != "":
		rows = append(rows, theme.StatusError.Render(f.err))
	default:
		rows = append(rows, theme.Muted.Render("Enter to save · Tab to move · Esc to cancel"))
	}

	return theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
