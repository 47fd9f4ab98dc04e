package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/brokemate/internal/common"
)

// Analyze asks the backend for a spending analysis of the user's expenses.
func (c *Client) Analyze(ctx context.Context, token string) (string, error) {
	res, err := c.Do(ctx, http.MethodPost, "/analyze", nil, token)
	if err != nil {
		return "", err
	}
	var payload struct {
		Analysis string `json:"analysis"`
	}
	if err := res.Decode(&payload); err != nil && !errors.Is(err, common.ErrNoContent) {
		return "", err
	}
	return payload.Analysis, nil
}

type chatRequest struct {
	Query string `json:"query"`
}

// Chat asks the backend's assistant a question about the user's expenses.
func (c *Client) Chat(ctx context.Context, token, query string) (string, error) {
	res, err := c.Do(ctx, http.MethodPost, "/chat", chatRequest{Query: query}, token)
	if err != nil {
		return "", err
	}
	var payload struct {
		Response string `json:"response"`
	}
	if err := res.Decode(&payload); err != nil && !errors.Is(err, common.ErrNoContent) {
		return "", err
	}
	return payload.Response, nil
}
