package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ExpenseID is the server-assigned identifier of an expense.
type ExpenseID int64

func (id ExpenseID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseExpenseID parses an identifier typed by the user.
func ParseExpenseID(s string) (ExpenseID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expense id %q", s)
	}
	return ExpenseID(n), nil
}

// Expense is a single expense record as held by the backend.
type Expense struct {
	Date        Date
	Amount      decimal.Decimal
	Category    Category
	Description string
	ID          ExpenseID
	Flag        Flag
}

// Draft returns the editable fields of e.
func (e Expense) Draft() Draft {
	return Draft{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

type expenseWire struct {
	Description *string     `json:"description"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Date        Date        `json:"date"`
	ID          ExpenseID   `json:"id"`
	Flag        Flag        `json:"flag"`
}

// MarshalJSON encodes the record in the backend's shape.
func (e Expense) MarshalJSON() ([]byte, error) {
	desc := e.Description
	return json.Marshal(expenseWire{
		ID:          e.ID,
		Amount:      json.Number(e.Amount.String()),
		Category:    string(e.Category),
		Description: &desc,
		Date:        e.Date,
		Flag:        e.Flag,
	})
}

// UnmarshalJSON decodes a record from the backend. Categories outside the fixed set
// are kept as-is so that a listing never fails on one odd record.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var w expenseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(w.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", w.Amount, err)
	}
	*e = Expense{
		ID:       w.ID,
		Amount:   amount,
		Category: Category(w.Category),
		Date:     w.Date,
		Flag:     w.Flag,
	}
	if w.Description != nil {
		e.Description = *w.Description
	}
	return nil
}
