package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError represents a non-success response from the IG API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ig api error %d: %s", e.StatusCode, e.Message)
}

// AuthError is returned when login is rejected.
type AuthError struct {
	StatusCode int
	Body       []byte
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unable to log in: status code %d", e.StatusCode)
}

// NetworkError wraps a transport-level failure (connection, timeout, body read).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrNotConnected is returned when the history API is called without a session.
var ErrNotConnected = errors.New("not connected: log in first")

// response is the raw result of a request.
type response struct {
	statusCode int
	header     http.Header
	body       []byte
}

// doRequest performs an HTTP request. body, when non-nil, is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any) (*response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "do request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read response", Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respBody,
		}
	}

	return &response{statusCode: resp.StatusCode, header: resp.Header, body: respBody}, nil
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, headers map[string]string, result any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, headers, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
