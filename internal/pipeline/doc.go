// Package pipeline runs one export: log in, fetch history, clean, aggregate,
// reconcile against the ledger and append the new rows.
//
// A run carries no state into the next one. Every stage boundary is logged
// with the run's run_id.
package pipeline
