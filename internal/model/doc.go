// Package model defines the record types that flow through the trade export pipeline.
//
// Stages and their types:
//   - RawTransaction: one deal event as reported by the IG history API
//   - CleanedTransaction: typed, canonicalized, newest-first
//   - AggregatedTrade: partial fills collapsed per (open time, instrument)
//   - LedgerRecord: one row of the MyPnL CSV ledger
//
// Conventions:
//   - Prices, sizes and P&L: decimal.Decimal; decimal.NullDecimal where a value may be missing
//   - Timestamps: time.Time in UTC
//   - Ledger timestamps: "YYYY.MM.DD HH:MM:SS" strings
package model
