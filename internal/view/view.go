// Package view holds the UI-only state shared by the interactive front-ends:
// which derived view is active and which mutation form or confirmation is open.
package view

import (
	"fmt"
	"strings"

	"github.com/Veraticus/brokemate/internal/model"
)

// View identifies one of the fixed screens.
type View int

const (
	ViewExpenses View = iota
	ViewSummary
	ViewAnalysis
	ViewChat
)

// Views lists every view in cycling order.
var Views = []View{ViewExpenses, ViewSummary, ViewAnalysis, ViewChat}

func (v View) String() string {
	switch v {
	case ViewExpenses:
		return "Expenses"
	case ViewSummary:
		return "Summary"
	case ViewAnalysis:
		return "Analysis"
	case ViewChat:
		return "Chat"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// ParseView resolves a view by name, ignoring case.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if strings.EqualFold(v.String(), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return ViewExpenses, fmt.Errorf("unknown view %q", s)
}

// FormMode is the state of the mutation form.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

func (f FormMode) String() string {
	switch f {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Coordinator is the view state machine. The zero value shows the expenses
// view with nothing open.
type Coordinator struct {
	active        View
	form          FormMode
	target        model.ExpenseID
	pendingDelete model.ExpenseID
	confirming    bool
}

// Active returns the selected view.
func (c *Coordinator) Active() View {
	return c.active
}

// Select switches to v. Unknown views are ignored.
func (c *Coordinator) Select(v View) {
	if v < ViewExpenses || v > ViewChat {
		return
	}
	c.active = v
}

// Next cycles forward through Views.
func (c *Coordinator) Next() View {
	c.active = Views[(int(c.active)+1)%len(Views)]
	return c.active
}

// Prev cycles backward through Views.
func (c *Coordinator) Prev() View {
	c.active = Views[(int(c.active)+len(Views)-1)%len(Views)]
	return c.active
}

// Form returns the form mode and, when editing, the target record.
func (c *Coordinator) Form() (FormMode, model.ExpenseID) {
	return c.form, c.target
}

// FormOpen reports whether a form captures input.
func (c *Coordinator) FormOpen() bool {
	return c.form != FormClosed
}

// OpenCreate opens an empty form.
func (c *Coordinator) OpenCreate() {
	c.cancelDelete()
	c.form = FormCreate
	c.target = 0
}

// OpenEdit opens the form against an existing record.
func (c *Coordinator) OpenEdit(id model.ExpenseID) {
	c.cancelDelete()
	c.form = FormEdit
	c.target = id
}

// CloseForm discards the form.
func (c *Coordinator) CloseForm() {
	c.form = FormClosed
	c.target = 0
}

// AskDelete starts a delete confirmation for id. It is ignored while a form is open.
func (c *Coordinator) AskDelete(id model.ExpenseID) bool {
	if c.FormOpen() {
		return false
	}
	c.pendingDelete = id
	c.confirming = true
	return true
}

// PendingDelete returns the record awaiting confirmation.
func (c *Coordinator) PendingDelete() (model.ExpenseID, bool) {
	return c.pendingDelete, c.confirming
}

// ResolveDelete ends the confirmation. It returns the id to delete when confirmed.
func (c *Coordinator) ResolveDelete(confirmed bool) (model.ExpenseID, bool) {
	id, ok := c.pendingDelete, c.confirming
	c.cancelDelete()
	if !ok || !confirmed {
		return 0, false
	}
	return id, true
}

// Reset returns to the initial state.
func (c *Coordinator) Reset() {
	*c = Coordinator{}
}

func (c *Coordinator) cancelDelete() {
	c.pendingDelete = 0
	c.confirming = false
}
