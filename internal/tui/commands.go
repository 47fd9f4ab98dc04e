package tui

import (
	"context"

	"github.com/Veraticus/brokemate/internal/advisor"
	"github.com/Veraticus/brokemate/internal/expense"
	"github.com/Veraticus/brokemate/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// ExpenseStore is the expense collection the TUI drives.
type ExpenseStore interface {
	Snapshot() expense.Snapshot
	Loading() bool
	ClearError()
	Subscribe(l expense.Listener)
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft model.Draft) error
	Update(ctx context.Context, id model.ExpenseID, draft model.Draft) error
	Delete(ctx context.Context, id model.ExpenseID) error
	SetFlag(ctx context.Context, id model.ExpenseID, flag model.Flag) error
}

// Advisor answers the analysis and chat views.
type Advisor interface {
	Analyze(ctx context.Context) (string, error)
	Chat(ctx context.Context, query string) (string, error)
	Transcript() []advisor.Exchange
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return refreshedMsg{err: store.Refresh(ctx)}
	}
}

func (m Model) createCmd(draft model.Draft) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return mutationMsg{err: store.Create(ctx, draft), done: "Expense added", form: true}
	}
}

func (m Model) updateCmd(id model.ExpenseID, draft model.Draft) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return mutationMsg{err: store.Update(ctx, id, draft), done: "Expense " + id.String() + " updated", form: true}
	}
}

func (m Model) deleteCmd(id model.ExpenseID) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return mutationMsg{err: store.Delete(ctx, id), done: "Expense " + id.String() + " deleted", alert: true}
	}
}

func (m Model) flagCmd(id model.ExpenseID, flag model.Flag) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return mutationMsg{err: store.SetFlag(ctx, id, flag), done: "Expense " + id.String() + " flagged " + flag.String(), alert: true}
	}
}

func (m Model) analyzeCmd() tea.Cmd {
	ctx, adv := m.ctx, m.advisor
	return func() tea.Msg {
		text, err := adv.Analyze(ctx)
		return analysisMsg{text: text, err: err}
	}
}

func (m Model) chatCmd(query string) tea.Cmd {
	ctx, adv := m.ctx, m.advisor
	return func() tea.Msg {
		reply, err := adv.Chat(ctx, query)
		return chatMsg{query: query, reply: reply, err: err}
	}
}
