package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/summary"
	"github.com/Veraticus/brokemate/internal/view"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const barWidth = 30

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}
	if m.banner != "" {
		sections = append(sections, m.theme.Banner.Render(cli.ErrorIcon+" "+m.banner+"  (esc to dismiss)"))
	}

	var body string
	switch {
	case m.alert != "":
		body = m.theme.Alert.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.StatusError.Render(m.alert),
			"",
			m.theme.Muted.Render("Press any key to continue"),
		))
	case m.coord.FormOpen():
		body = m.form.view(m.theme)
	default:
		switch m.coord.Active() {
		case view.ViewExpenses:
			body = m.renderExpenses()
		case view.ViewSummary:
			body = m.renderSummary()
		case view.ViewAnalysis:
			body = m.renderAnalysis()
		case view.ViewChat:
			body = m.renderChat()
		}
	}
	sections = append(sections, body, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, len(view.Views))
	for _, v := range view.Views {
		if v == m.coord.Active() {
			tabs = append(tabs, m.theme.ActiveTab.Render(v.String()))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(v.String()))
		}
	}
	title := m.theme.Title.Render(cli.WalletIcon + " Brokemate")
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "")
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.busy():
		status = m.spinner.View() + " " + m.theme.Muted.Render("Working...")
	case m.status != "":
		status = m.theme.StatusSuccess.Render(cli.SuccessIcon + " " + m.status)
	}

	if id, pending := m.coord.PendingDelete(); pending {
		status = m.theme.StatusError.Render(fmt.Sprintf("Delete expense %s? (y/n)", id))
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", status, m.help.View(m.keymap))
}

func (m Model) renderExpenses() string {
	exps := m.expenses()
	if len(exps) == 0 {
		if m.busy() {
			return m.theme.Muted.Render("Loading expenses...")
		}
		return m.theme.Muted.Render("No expenses yet. Press a to add one.")
	}

	header := fmt.Sprintf("  %-10s  %-13s  %12s  %s  %s", "Date", "Category", "Amount", "  ", "Description")
	lines := []string{m.theme.Bold.Render(header)}

	end := min(len(exps), m.offset+m.listRows())
	for i := m.offset; i < end; i++ {
		e := exps[i]
		line := fmt.Sprintf("  %-10s  %-13s  %12s  %s  %s",
			e.Date.String(),
			e.Category.String(),
			summary.FormatAmount(e.Amount),
			cli.FlagIcon(e.Flag),
			truncate(e.Description, max(10, m.width-50)),
		)
		if i == m.cursor {
			line = m.theme.Selected.Render(line)
		} else {
			line = m.theme.Normal.Render(line)
		}
		lines = append(lines, line)
	}

	if len(exps) > m.listRows() {
		lines = append(lines, m.theme.Muted.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(exps))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	s := summary.Summarize(m.expenses())
	if s.TransactionCount == 0 {
		return m.theme.Muted.Render("Nothing to summarize yet.")
	}

	lines := []string{
		fmt.Sprintf("%-16s %s", "Total", m.theme.Bold.Render(summary.FormatAmount(s.TotalAmount))),
		fmt.Sprintf("%-16s %d", "Transactions", s.TransactionCount),
		fmt.Sprintf("%-16s %s", "Average", summary.FormatAmount(s.AverageAmount)),
		fmt.Sprintf("%-16s %s (%d)", "Good spending", m.theme.Positive.Render(summary.FormatAmount(s.PositiveAmount)), s.Flags.Positive),
		fmt.Sprintf("%-16s %s (%d)", "Avoidable", m.theme.Negative.Render(summary.FormatAmount(s.NegativeAmount)), s.Flags.Negative),
		"",
		m.theme.Title.Render("By category"),
	}

	for _, ct := range s.ByCategory {
		share := s.Share(ct.Category)
		filled := int(share.Mul(barDecimal).Div(hundred).Round(0).IntPart())
		bar := m.theme.Bar.Render(strings.Repeat("█", filled)) + m.theme.Muted.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%-13s %s %12s %5s%%", ct.Category, bar, summary.FormatAmount(ct.Amount), share.StringFixed(1)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderAnalysis() string {
	switch {
	case m.analysis != "":
		return m.analysis + "\n\n" + m.theme.Muted.Render("R to analyze again")
	case m.busy():
		return m.theme.Muted.Render(cli.RobotIcon + " Analyzing your spending...")
	default:
		return m.theme.Muted.Render("Press enter to analyze your spending.")
	}
}

func (m Model) renderChat() string {
	var lines []string
	for _, line := range m.chat {
		lines = append(lines,
			m.theme.Bold.Render("You: ")+line.query,
			m.theme.Title.Render(cli.RobotIcon+" Brokemate:"),
			line.reply,
			"",
		)
	}
	if m.pendingQuery != "" {
		lines = append(lines, m.theme.Bold.Render("You: ")+m.pendingQuery, m.spinner.View()+" thinking...", "")
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Muted.Render("Ask anything about your expenses."), "")
	}

	// Keep the latest exchanges on screen.
	maxLines := max(4, m.height-12)
	all := strings.Split(strings.Join(lines, "\n"), "\n")
	if len(all) > maxLines {
		all = all[len(all)-maxLines:]
	}
	return strings.Join(append(all, m.chatInput.View()), "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

var (
	barDecimal = decimal.NewFromInt(barWidth)
	hundred    = decimal.NewFromInt(100)
)
