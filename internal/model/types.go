package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionTypeDeal marks a completed trade. Other types (e.g. adjustments) are discarded.
const TransactionTypeDeal = "DEAL"

// -----------------------------------------------------------------------------
// Pipeline Types
// -----------------------------------------------------------------------------

// RawTransaction is one deal event as reported by the API. Values are kept
// exactly as received; coercion happens in the normalizer.
type RawTransaction struct {
	TransactionType string // "DEAL", "DEPO", "WITH", ...
	InstrumentName  string // Broker display name (e.g. "Spot Gold - Cash")
	DateUTC         string // Close time (e.g. "2024-01-15T12:30:45")
	OpenDateUTC     string // Open time
	Size            string // Signed size; sign encodes direction (e.g. "+0.5")
	OpenLevel       string // Open price
	CloseLevel      string // Close price
	ProfitAndLoss   string // Currency formatted (e.g. "£10.00")
	Reference       string // Deal reference
	Currency        string // Currency code or glyph as reported
}

// CleanedTransaction is a RawTransaction with typed fields.
type CleanedTransaction struct {
	TransactionType string
	InstrumentName  string
	DateUTC         time.Time
	OpenDateUTC     time.Time
	Size            decimal.NullDecimal // Invalid input -> null
	OpenLevel       decimal.NullDecimal // Invalid input -> null
	CloseLevel      decimal.NullDecimal // Invalid input -> null
	ProfitAndLoss   decimal.Decimal
	Reference       string
	Currency        string
}

// AggregatedTrade is one logical trade built from all partial fills sharing
// an open time and instrument. Size and ProfitAndLoss are sums; every other
// field comes from the most recent fill.
type AggregatedTrade struct {
	TransactionType string
	InstrumentName  string
	DateUTC         time.Time // Close time of the most recent fill
	OpenDateUTC     time.Time
	Size            decimal.Decimal
	OpenLevel       decimal.NullDecimal
	CloseLevel      decimal.NullDecimal
	ProfitAndLoss   decimal.Decimal
	Reference       string // Distinct references joined by "; "
	Currency        string
}

// -----------------------------------------------------------------------------
// Ledger Types
// -----------------------------------------------------------------------------

// TradeType is the ledger direction column.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// LedgerRecord is one row of the CSV ledger. Strategy, StopLoss, TargetPrice
// and Commission are never set by the exporter; they are left for manual
// enrichment downstream.
type LedgerRecord struct {
	Symbol      string
	TradeType   TradeType
	EntryPrice  decimal.NullDecimal
	ExitPrice   decimal.NullDecimal
	LotSize     decimal.Decimal
	PnL         decimal.Decimal
	ClosedAt    string // "YYYY.MM.DD HH:MM:SS"
	OpenedAt    string // "YYYY.MM.DD HH:MM:SS"
	Strategy    string
	Notes       string // Deal references
	StopLoss    decimal.NullDecimal
	TargetPrice decimal.NullDecimal
	Commission  decimal.NullDecimal
}
