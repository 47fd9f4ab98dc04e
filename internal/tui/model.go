// Package tui is the interactive terminal front-end: expenses, summary, AI analysis
// and chat, switched by the view coordinator.
package tui

import (
	"context"
	"strings"

	"github.com/Veraticus/brokemate/internal/cli"
	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
	"github.com/Veraticus/brokemate/internal/session"
	"github.com/Veraticus/brokemate/internal/tui/themes"
	"github.com/Veraticus/brokemate/internal/view"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// chatLine is one rendered exchange of the chat view.
type chatLine struct {
	query string
	reply string
}

// Model holds the main TUI state.
type Model struct {
	ctx           context.Context
	store         ExpenseStore
	advisor       Advisor
	theme         themes.Theme
	keymap        KeyMap
	help          help.Model
	spinner       spinner.Model
	chatInput     textinput.Model
	form          expenseForm
	coord         view.Coordinator
	startup       tea.Cmd
	banner        string
	alert         string
	status        string
	analysis      string
	pendingQuery  string
	markdownStyle string
	chat          []chatLine
	cursor        int
	offset        int
	width         int
	height        int
	advisorBusy   int
	analyzed      bool
	expired       bool
	quitting      bool
}

func newModel(ctx context.Context, cfg Config) Model {
	chatInput := textinput.New()
	chatInput.Placeholder = "Ask about your spending..."
	chatInput.CharLimit = 1000
	chatInput.Width = cfg.Width - 6

	m := Model{
		ctx:           ctx,
		store:         cfg.Store,
		advisor:       cfg.Advisor,
		theme:         cfg.Theme,
		keymap:        DefaultKeyMap(),
		help:          help.New(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		chatInput:     chatInput,
		markdownStyle: cfg.MarkdownStyle,
		width:         cfg.Width,
		height:        cfg.Height,
	}
	m.help.Width = cfg.Width

	if m.advisor != nil {
		for _, ex := range m.advisor.Transcript() {
			m.chat = append(m.chat, chatLine{query: ex.Query, reply: m.renderMarkdown(ex.Response)})
		}
	}

	m.coord.Select(cfg.View)
	m.startup = m.enterView()
	return m
}

// Init loads the collection, starts the spinner and enters the first view.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick, m.startup)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.chatInput.Width = msg.Width - 6
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionExpiredMsg:
		return m.expire()

	case storeChangedMsg:
		m.clampCursor()
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			return m.fail(msg.err, false)
		}
		m.clampCursor()
		return m, nil

	case mutationMsg:
		return m.handleMutation(msg)

	case analysisMsg:
		m.advisorBusy--
		if msg.err != nil {
			return m.fail(msg.err, false)
		}
		m.analyzed = true
		m.analysis = m.renderMarkdown(msg.text)
		return m, nil

	case chatMsg:
		m.advisorBusy--
		m.pendingQuery = ""
		if msg.err != nil {
			return m.fail(msg.err, false)
		}
		m.chat = append(m.chat, chatLine{query: msg.query, reply: m.renderMarkdown(msg.reply)})
		return m, nil
	}

	return m.forward(msg)
}

// forward hands msg to whichever input has focus.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.coord.FormOpen():
		m.form, cmd = m.form.update(msg)
	case m.coord.Active() == view.ViewChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.form {
		m.form.submitting = false
	}
	if msg.err == nil {
		if msg.form {
			m.coord.CloseForm()
		}
		m.status = msg.done
		m.clampCursor()
		return m, nil
	}
	if msg.form && m.coord.FormOpen() && !session.IsExpired(msg.err) {
		m.form.err = common.UserMessage(msg.err)
		return m, nil
	}
	return m.fail(msg.err, msg.alert)
}

// fail shows err, or ends the TUI when the session is gone.
func (m Model) fail(err error, alert bool) (tea.Model, tea.Cmd) {
	if session.IsExpired(err) {
		return m.expire()
	}
	m.status = ""
	if alert {
		m.alert = common.UserMessage(err)
	} else {
		m.banner = common.UserMessage(err)
	}
	return m, nil
}

func (m Model) expire() (tea.Model, tea.Cmd) {
	m.expired = true
	m.quitting = true
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	// Alerts take the next key press.
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if _, pending := m.coord.PendingDelete(); pending {
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			if id, ok := m.coord.ResolveDelete(true); ok {
				return m, m.deleteCmd(id)
			}
		case key.Matches(msg, m.keymap.Cancel):
			m.coord.ResolveDelete(false)
		}
		return m, nil
	}

	if m.coord.FormOpen() {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.NextView):
		m.coord.Next()
		cmd := m.enterView()
		return m, cmd
	case key.Matches(msg, m.keymap.PrevView):
		m.coord.Prev()
		cmd := m.enterView()
		return m, cmd
	case key.Matches(msg, m.keymap.Dismiss):
		m.banner = ""
		m.status = ""
		if m.store != nil {
			m.store.ClearError()
		}
		return m, nil
	}

	if m.coord.Active() == view.ViewChat {
		return m.handleChatKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		if m.coord.Active() == view.ViewAnalysis {
			return m.startAnalysis()
		}
		return m, m.refreshCmd()
	}

	switch m.coord.Active() {
	case view.ViewExpenses:
		return m.handleExpenseKey(msg)
	case view.ViewAnalysis:
		if key.Matches(msg, m.keymap.Submit) {
			return m.startAnalysis()
		}
	}
	return m, nil
}

func (m Model) handleExpenseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.Add):
		m.coord.OpenCreate()
		m.form = newExpenseForm(view.FormCreate, nil)
		return m, textinput.Blink
	case key.Matches(msg, m.keymap.Edit):
		if e, ok := m.selected(); ok {
			m.coord.OpenEdit(e.ID)
			m.form = newExpenseForm(view.FormEdit, &e)
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keymap.Delete):
		if e, ok := m.selected(); ok {
			m.coord.AskDelete(e.ID)
		}
	case key.Matches(msg, m.keymap.FlagPositive):
		if e, ok := m.selected(); ok {
			return m, m.flagCmd(e.ID, model.FlagPositive)
		}
	case key.Matches(msg, m.keymap.FlagNegative):
		if e, ok := m.selected(); ok {
			return m, m.flagCmd(e.ID, model.FlagNegative)
		}
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Dismiss):
		m.coord.CloseForm()
		return m, nil
	case key.Matches(msg, m.keymap.NextField):
		cmd := m.form.move(1)
		return m, cmd
	case key.Matches(msg, m.keymap.PrevField):
		cmd := m.form.move(-1)
		return m, cmd
	case key.Matches(msg, m.keymap.Submit):
		if m.form.submitting {
			return m, nil
		}
		draft, err := m.form.draft()
		if err != nil {
			m.form.err = common.UserMessage(err)
			return m, nil
		}
		m.form.err = ""
		m.form.submitting = true
		if mode, id := m.coord.Form(); mode == view.FormEdit {
			return m, m.updateCmd(id, draft)
		}
		return m, m.createCmd(draft)
	}
	return m.forward(msg)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Submit) {
		query := strings.TrimSpace(m.chatInput.Value())
		if query == "" || m.pendingQuery != "" {
			return m, nil
		}
		m.chatInput.Reset()
		m.pendingQuery = query
		m.advisorBusy++
		return m, m.chatCmd(query)
	}
	return m.forward(msg)
}

// enterView runs the side effects of switching to the active view.
func (m *Model) enterView() tea.Cmd {
	if m.coord.Active() == view.ViewChat {
		return m.chatInput.Focus()
	}
	m.chatInput.Blur()

	if m.coord.Active() == view.ViewAnalysis && !m.analyzed && m.advisorBusy == 0 {
		m.advisorBusy++
		return m.analyzeCmd()
	}
	return nil
}

func (m Model) startAnalysis() (tea.Model, tea.Cmd) {
	if m.advisorBusy > 0 {
		return m, nil
	}
	m.advisorBusy++
	return m, m.analyzeCmd()
}

func (m Model) expenses() []model.Expense {
	if m.store == nil {
		return nil
	}
	return m.store.Snapshot().Expenses
}

func (m Model) selected() (model.Expense, bool) {
	exps := m.expenses()
	if m.cursor < 0 || m.cursor >= len(exps) {
		return model.Expense{}, false
	}
	return exps[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.expenses())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > max(0, n-rows) {
		m.offset = max(0, n-rows)
	}
}

// listRows is the number of expense rows that fit below the header and above the footer.
func (m Model) listRows() int {
	return max(3, m.height-10)
}

func (m Model) busy() bool {
	return m.advisorBusy > 0 || (m.store != nil && m.store.Loading())
}

func (m Model) renderMarkdown(text string) string {
	return cli.RenderMarkdown(text, max(20, m.width-4), m.markdownStyle)
}

// Expired reports whether the TUI ended because the session was rejected.
func (m Model) Expired() bool {
	return m.expired
}
