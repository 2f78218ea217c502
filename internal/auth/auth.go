// Package auth holds IG API credentials and the session tokens returned by login.
package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Header names used by the IG REST API.
const (
	HeaderAPIKey        = "X-IG-API-KEY"
	HeaderCST           = "CST"
	HeaderSecurityToken = "X-SECURITY-TOKEN"
	HeaderVersion       = "Version"
)

// APIVersion is the endpoint version sent with every request.
const APIVersion = "2"

// Credentials holds the login identifier, password and API key.
type Credentials struct {
	Identifier string // IG username
	Password   string
	APIKey     string // API key from the IG dashboard
}

// LoadCredentials validates and returns credentials.
func LoadCredentials(identifier, password, apiKey string) (*Credentials, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	return &Credentials{
		Identifier: identifier,
		Password:   password,
		APIKey:     apiKey,
	}, nil
}

// Account is the account context returned by login.
type Account struct {
	AccountID             string
	ClientID              string
	Currency              string
	LightstreamerEndpoint string
}

// Session is an authenticated IG session. It has no expiry handling;
// callers log in again for every run.
type Session struct {
	APIKey        string
	CST           string // Client session token
	SecurityToken string // Account security token
	Account       Account
}

// ErrIncompleteSession is returned when a session lacks either token.
var ErrIncompleteSession = errors.New("session is missing CST or X-SECURITY-TOKEN")

// NewSession builds a session from login response headers.
func NewSession(apiKey string, headers http.Header, account Account) (*Session, error) {
	s := &Session{
		APIKey:        apiKey,
		CST:           headers.Get(HeaderCST),
		SecurityToken: headers.Get(HeaderSecurityToken),
		Account:       account,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports whether the session can authenticate requests.
func (s *Session) Validate() error {
	if s == nil {
		return ErrIncompleteSession
	}
	if s.CST == "" || s.SecurityToken == "" {
		return ErrIncompleteSession
	}
	return nil
}

// Headers returns the headers that authenticate a request for this session.
func (s *Session) Headers() map[string]string {
	return map[string]string{
		HeaderAPIKey:        s.APIKey,
		HeaderCST:           s.CST,
		HeaderSecurityToken: s.SecurityToken,
		HeaderVersion:       APIVersion,
	}
}
