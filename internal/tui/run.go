package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/expense"
	"github.com/Veraticus/brokemate/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrSessionExpired is returned by Run when the backend rejected the credential.
var ErrSessionExpired = errors.New("session expired, please log in again")

// SessionNotifier reports session transitions.
type SessionNotifier interface {
	OnChange(l session.Listener)
}

// Run starts the TUI and blocks until the user quits or the session ends.
func Run(ctx context.Context, store ExpenseStore, adv Advisor, sess SessionNotifier, opts ...Option) error {
	if store == nil {
		return fmt.Errorf("expense store is required")
	}
	if adv == nil {
		return fmt.Errorf("advisor is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.Store = store
	cfg.Advisor = adv
	logger := common.OrDefault(cfg.Logger)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(ctx, cfg), programOpts...)

	store.Subscribe(func(expense.Snapshot) {
		p.Send(storeChangedMsg{})
	})
	if sess != nil {
		sess.OnChange(func(_ session.State, reason session.Reason) {
			if reason == session.ReasonExpired || reason == session.ReasonLogout {
				p.Send(sessionExpiredMsg{})
			}
		})
	}

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(Model); ok && m.Expired() {
		logger.Info("tui closed after forced logout")
		return ErrSessionExpired
	}
	return nil
}
