// Package writer mirrors appended ledger rows into PostgreSQL.
//
// The CSV ledger is the source of truth. The mirror uses append-only
// semantics (never update, only insert) keyed on (opened_at, symbol, notes),
// so re-sending rows that are already present is a no-op.
//
// The key is narrower than the columns the ledger compares for novelty. A
// trade the ledger sees again with a changed pnl or exit price is appended to
// the CSV as a new row, but the mirror keeps the first version it stored and
// counts the later one as a conflict.
package writer
