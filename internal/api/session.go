package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rickgao/igtrades/internal/auth"
)

// Login authenticates against POST /session and returns the session used by
// every later request. A rejected login is an *AuthError; it is not retried.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (*auth.Session, error) {
	headers := map[string]string{
		auth.HeaderAPIKey:  creds.APIKey,
		auth.HeaderVersion: auth.APIVersion,
	}
	body := SessionRequest{
		Identifier: creds.Identifier,
		Password:   creds.Password,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/session", nil, headers, body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &AuthError{StatusCode: apiErr.StatusCode, Body: apiErr.Body}
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.statusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.statusCode, Body: resp.body}
	}

	var account SessionResponse
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &account); err != nil {
			return nil, fmt.Errorf("unmarshal session response: %w", err)
		}
	}

	session, err := auth.NewSession(creds.APIKey, resp.header, account.ToAccount())
	if err != nil {
		return nil, &AuthError{StatusCode: resp.statusCode, Body: resp.body}
	}

	c.logger.Debug("logged in",
		"account_id", session.Account.AccountID,
		"currency", session.Account.Currency,
	)

	return session, nil
}
