package auth

import (
	"errors"
	"net/http"
	"testing"
)

func TestLoadCredentials(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		password   string
		apiKey     string
		wantErr    string
	}{
		{"valid", "user", "pass", "key", ""},
		{"missing identifier", "", "pass", "key", "identifier is required"},
		{"missing password", "user", "", "key", "password is required"},
		{"missing api key", "user", "pass", "", "API key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := LoadCredentials(tt.identifier, tt.password, tt.apiKey)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("LoadCredentials() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadCredentials() unexpected error: %v", err)
			}
			if creds.Identifier != tt.identifier || creds.Password != tt.password || creds.APIKey != tt.apiKey {
				t.Errorf("LoadCredentials() = %+v", creds)
			}
		})
	}
}

func TestNewSession(t *testing.T) {
	t.Run("captures tokens", func(t *testing.T) {
		h := http.Header{}
		h.Set("CST", "cst-token")
		h.Set("X-SECURITY-TOKEN", "sec-token")

		s, err := NewSession("key", h, Account{AccountID: "ABC123", Currency: "GBP"})
		if err != nil {
			t.Fatalf("NewSession failed: %v", err)
		}
		if s.CST != "cst-token" {
			t.Errorf("CST = %q, want %q", s.CST, "cst-token")
		}
		if s.SecurityToken != "sec-token" {
			t.Errorf("SecurityToken = %q, want %q", s.SecurityToken, "sec-token")
		}
		if s.Account.AccountID != "ABC123" {
			t.Errorf("Account.AccountID = %q, want %q", s.Account.AccountID, "ABC123")
		}
	})

	t.Run("missing security token", func(t *testing.T) {
		h := http.Header{}
		h.Set("CST", "cst-token")

		_, err := NewSession("key", h, Account{})
		if !errors.Is(err, ErrIncompleteSession) {
			t.Errorf("NewSession() error = %v, want ErrIncompleteSession", err)
		}
	})
}

func TestSession_Validate(t *testing.T) {
	var nilSession *Session
	if err := nilSession.Validate(); !errors.Is(err, ErrIncompleteSession) {
		t.Errorf("nil Validate() = %v, want ErrIncompleteSession", err)
	}
	if err := (&Session{CST: "a"}).Validate(); !errors.Is(err, ErrIncompleteSession) {
		t.Errorf("partial Validate() = %v, want ErrIncompleteSession", err)
	}
	if err := (&Session{CST: "a", SecurityToken: "b"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestSession_Headers(t *testing.T) {
	s := &Session{APIKey: "key", CST: "cst", SecurityToken: "sec"}
	headers := s.Headers()

	want := map[string]string{
		"X-IG-API-KEY":     "key",
		"CST":              "cst",
		"X-SECURITY-TOKEN": "sec",
		"Version":          "2",
	}
	for k, v := range want {
		if got := headers[k]; got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if len(headers) != len(want) {
		t.Errorf("len(Headers()) = %d, want %d", len(headers), len(want))
	}
}
