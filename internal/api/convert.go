package api

import (
	"time"

	"github.com/rickgao/igtrades/internal/auth"
	"github.com/rickgao/igtrades/internal/model"
)

// QueryDateLayout is the date format of the history "from" and "to" parameters.
const QueryDateLayout = "2006-01-02"

// DateRange applies the default history window: to defaults to now and
// from defaults to one day before to. Zero values mean "not given".
func DateRange(from, to, now time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -1)
	}
	return from, to
}

// ToModel converts an APITransaction to model.RawTransaction.
func (t *APITransaction) ToModel() model.RawTransaction {
	return model.RawTransaction{
		TransactionType: string(t.TransactionType),
		InstrumentName:  string(t.InstrumentName),
		DateUTC:         string(t.DateUTC),
		OpenDateUTC:     string(t.OpenDateUTC),
		Size:            string(t.Size),
		OpenLevel:       string(t.OpenLevel),
		CloseLevel:      string(t.CloseLevel),
		ProfitAndLoss:   string(t.ProfitAndLoss),
		Reference:       string(t.Reference),
		Currency:        string(t.Currency),
	}
}

// ToAccount converts a SessionResponse to auth.Account.
func (r *SessionResponse) ToAccount() auth.Account {
	return auth.Account{
		AccountID:             r.CurrentAccountID,
		ClientID:              r.ClientID,
		Currency:              r.CurrencyIsoCode,
		LightstreamerEndpoint: r.LightstreamerEndpoint,
	}
}
