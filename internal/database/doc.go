// Package database provides connection pool management for the optional
// PostgreSQL mirror of the trade ledger.
package database
