package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
)

// ListExpenses fetches every expense of the authenticated user in server order.
func (c *Client) ListExpenses(ctx context.Context, token string) ([]model.Expense, error) {
	res, err := c.Do(ctx, http.MethodGet, "/expenses", nil, token)
	if err != nil {
		return nil, err
	}
	expenses := []model.Expense{}
	if err := res.Decode(&expenses); err != nil && !errors.Is(err, common.ErrNoContent) {
		return nil, err
	}
	return expenses, nil
}

// CreateExpense submits a new expense. The returned record is nil when the backend
// answers without a body.
func (c *Client) CreateExpense(ctx context.Context, token string, draft model.Draft) (*model.Expense, error) {
	res, err := c.Do(ctx, http.MethodPost, "/add-expense", draft, token)
	if err != nil {
		return nil, err
	}
	return optionalExpense(res)
}

// UpdateExpense replaces the editable fields of expense id.
func (c *Client) UpdateExpense(ctx context.Context, token string, id model.ExpenseID, draft model.Draft) (*model.Expense, error) {
	res, err := c.Do(ctx, http.MethodPut, "/edit-expense/"+id.String(), draft, token)
	if err != nil {
		return nil, err
	}
	return optionalExpense(res)
}

// DeleteExpense removes expense id.
func (c *Client) DeleteExpense(ctx context.Context, token string, id model.ExpenseID) error {
	_, err := c.Do(ctx, http.MethodDelete, "/delete-expense/"+id.String(), nil, token)
	return err
}

type flagRequest struct {
	ID   model.ExpenseID `json:"id"`
	Flag model.Flag      `json:"flag"`
}

// FlagExpense sets the flag of expense id.
func (c *Client) FlagExpense(ctx context.Context, token string, id model.ExpenseID, flag model.Flag) error {
	_, err := c.Do(ctx, http.MethodPost, "/flag-expense", flagRequest{ID: id, Flag: flag}, token)
	return err
}

func optionalExpense(res Result) (*model.Expense, error) {
	var expense model.Expense
	if err := res.Decode(&expense); err != nil {
		if errors.Is(err, common.ErrNoContent) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}
