// Package ledger reads and appends the CSV trade ledger.
//
// The ledger is owned by a downstream P&L tool. This package only ever adds
// rows: existing rows, their order, and the header (including columns it does
// not know about) are left untouched.
//
// Cell comparison rules used by Reconcile:
//   - an empty cell is null, and null equals null
//   - cells that parse as decimals compare numerically ("15" == "15.0")
//   - everything else compares as an exact string
package ledger
