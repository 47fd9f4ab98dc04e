package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/brokemate/internal/common"
	"golang.org/x/oauth2"
)

// Login exchanges a username and password for a bearer credential. The backend's
// /token endpoint is an OAuth2 password grant, so the form encoding and the token
// response handling are left to oauth2.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.endpoint("/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := cfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", c.loginError(err)
	}

	c.logger.Debug("login succeeded", "username", username, "token_type", token.TokenType)
	return token.AccessToken, nil
}

func (c *Client) loginError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := http.StatusUnauthorized
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return common.NewAPIError(status, parseDetail(retrieveErr.Body))
	}
	if connectionFailure(err) {
		return &common.ConnectionError{Err: err}
	}
	return fmt.Errorf("login failed: %w", err)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account. It does not log the user in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.Do(ctx, http.MethodPost, "/register", credentials{Username: username, Password: password}, "")
	return err
}
