package api

import (
	"encoding/json"
	"time"
)

// SessionRequest is the body of POST /session.
type SessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionResponse from POST /session (Version 2).
type SessionResponse struct {
	AccountType           string            `json:"accountType"`
	CurrencyIsoCode       string            `json:"currencyIsoCode"`
	CurrencySymbol        string            `json:"currencySymbol"`
	CurrentAccountID      string            `json:"currentAccountId"`
	ClientID              string            `json:"clientId"`
	LightstreamerEndpoint string            `json:"lightstreamerEndpoint"`
	TimezoneOffset        int               `json:"timezoneOffset"`
	AccountInfo           *APIAccountInfo   `json:"accountInfo,omitempty"`
	Accounts              []APIAccountEntry `json:"accounts,omitempty"`
}

// APIAccountInfo holds balances for the current account.
type APIAccountInfo struct {
	Balance    float64 `json:"balance"`
	Deposit    float64 `json:"deposit"`
	ProfitLoss float64 `json:"profitLoss"`
	Available  float64 `json:"available"`
}

// APIAccountEntry is one account the client can switch to.
type APIAccountEntry struct {
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	AccountType string `json:"accountType"`
	Preferred   bool   `json:"preferred"`
}

// TransactionsResponse from GET /history/transactions
type TransactionsResponse struct {
	Transactions []APITransaction `json:"transactions"`
	Metadata     APIMetadata      `json:"metadata"`
}

// APIMetadata carries paging information.
type APIMetadata struct {
	Size     int         `json:"size"`
	PageData APIPageData `json:"pageData"`
}

// APIPageData describes the returned page.
type APIPageData struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// APITransaction represents one history entry from the IG API.
type APITransaction struct {
	Date            FlexString `json:"date"`
	DateUTC         FlexString `json:"dateUtc"`
	OpenDateUTC     FlexString `json:"openDateUtc"`
	InstrumentName  FlexString `json:"instrumentName"`
	Period          FlexString `json:"period"`
	ProfitAndLoss   FlexString `json:"profitAndLoss"`
	TransactionType FlexString `json:"transactionType"`
	Reference       FlexString `json:"reference"`
	OpenLevel       FlexString `json:"openLevel"`
	CloseLevel      FlexString `json:"closeLevel"`
	Size            FlexString `json:"size"`
	Currency        FlexString `json:"currency"`
	CashTransaction bool       `json:"cashTransaction"`
}

// FlexString accepts a JSON string, number or null. IG reports numeric
// history fields as strings ("+0.5", "-"), but numbers and nulls appear too.
// Null decodes to "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// TransactionsOptions configures a GetTransactions request.
type TransactionsOptions struct {
	From       time.Time
	To         time.Time
	PageSize   int
	PageNumber int // 0 or 1 omits the parameter
}
