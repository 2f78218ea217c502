package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger column names, in file order.
const (
	ColumnSymbol      = "symbol"
	ColumnTradeType   = "trade_type"
	ColumnEntryPrice  = "entry_price"
	ColumnExitPrice   = "exit_price"
	ColumnLotSize     = "lot_size"
	ColumnPnL         = "pnl"
	ColumnClosedAt    = "closed_at"
	ColumnOpenedAt    = "opened_at"
	ColumnStrategy    = "strategy"
	ColumnNotes       = "notes"
	ColumnStopLoss    = "stop_loss"
	ColumnTargetPrice = "target_price"
	ColumnCommission  = "commission"
)

// LedgerColumns is the ledger header written for a new file.
var LedgerColumns = []string{
	ColumnSymbol,
	ColumnTradeType,
	ColumnEntryPrice,
	ColumnExitPrice,
	ColumnLotSize,
	ColumnPnL,
	ColumnClosedAt,
	ColumnOpenedAt,
	ColumnStrategy,
	ColumnNotes,
	ColumnStopLoss,
	ColumnTargetPrice,
	ColumnCommission,
}

// LedgerTimeLayout is the timestamp format used by the ledger.
const LedgerTimeLayout = "2006.01.02 15:04:05"

// FormatLedgerTime renders t in the ledger timestamp format (UTC).
func FormatLedgerTime(t time.Time) string {
	return t.UTC().Format(LedgerTimeLayout)
}

// ParseLedgerTime parses a ledger timestamp as UTC.
func ParseLedgerTime(s string) (time.Time, error) {
	return time.ParseInLocation(LedgerTimeLayout, s, time.UTC)
}

// FormatDecimal renders d as a ledger cell. Integral values keep one
// fractional digit ("15.0") to match the float columns the downstream tool
// writes.
func FormatDecimal(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(1)
	}
	return d.String()
}

// FormatNullDecimal renders d, or "" when null.
func FormatNullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return FormatDecimal(d.Decimal)
}

// Value returns the cell for the named column. ok is false for unknown columns.
func (r LedgerRecord) Value(column string) (value string, ok bool) {
	switch column {
	case ColumnSymbol:
		return r.Symbol, true
	case ColumnTradeType:
		return string(r.TradeType), true
	case ColumnEntryPrice:
		return FormatNullDecimal(r.EntryPrice), true
	case ColumnExitPrice:
		return FormatNullDecimal(r.ExitPrice), true
	case ColumnLotSize:
		return FormatDecimal(r.LotSize), true
	case ColumnPnL:
		return FormatDecimal(r.PnL), true
	case ColumnClosedAt:
		return r.ClosedAt, true
	case ColumnOpenedAt:
		return r.OpenedAt, true
	case ColumnStrategy:
		return r.Strategy, true
	case ColumnNotes:
		return r.Notes, true
	case ColumnStopLoss:
		return FormatNullDecimal(r.StopLoss), true
	case ColumnTargetPrice:
		return FormatNullDecimal(r.TargetPrice), true
	case ColumnCommission:
		return FormatNullDecimal(r.Commission), true
	}
	return "", false
}

// Values returns the cells for columns, in order. Unknown columns are empty.
func (r LedgerRecord) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i], _ = r.Value(col)
	}
	return out
}

// IsLedgerColumn reports whether name is part of the ledger schema.
func IsLedgerColumn(name string) bool {
	_, ok := LedgerRecord{}.Value(name)
	return ok
}
