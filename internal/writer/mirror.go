package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/rickgao/igtrades/internal/model"
)

// DefaultTable is the mirror table name.
const DefaultTable = "ig_trades"

// DB is the subset of *pgxpool.Pool used by the mirror.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// InsertStats reports the outcome of one Insert.
type InsertStats struct {
	Inserts   int
	Conflicts int
}

// LedgerMirror writes ledger records to a Postgres table.
type LedgerMirror struct {
	db     DB
	table  string
	logger *slog.Logger
}

// NewLedgerMirror creates a mirror writing to DefaultTable.
func NewLedgerMirror(db DB, logger *slog.Logger) *LedgerMirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerMirror{
		db:     db,
		table:  DefaultTable,
		logger: logger,
	}
}

// ledgerRow is the database form of a model.LedgerRecord.
type ledgerRow struct {
	OpenedAt   time.Time
	ClosedAt   time.Time
	Symbol     string
	TradeType  string
	EntryPrice decimal.NullDecimal
	ExitPrice  decimal.NullDecimal
	LotSize    decimal.Decimal
	PnL        decimal.Decimal
	Notes      string
	RunID      uuid.UUID
}

func (m *LedgerMirror) schemaSQL() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			opened_at   TIMESTAMPTZ NOT NULL,
			closed_at   TIMESTAMPTZ NOT NULL,
			symbol      TEXT        NOT NULL,
			trade_type  TEXT        NOT NULL,
			entry_price NUMERIC,
			exit_price  NUMERIC,
			lot_size    NUMERIC     NOT NULL,
			pnl         NUMERIC     NOT NULL,
			notes       TEXT        NOT NULL DEFAULT '',
			run_id      UUID        NOT NULL,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (opened_at, symbol, notes)
		)
	`, pgx.Identifier{m.table}.Sanitize())
}

func (m *LedgerMirror) insertSQL() string {
	return fmt.Sprintf(`
		INSERT INTO %s (opened_at, closed_at, symbol, trade_type, entry_price, exit_price, lot_size, pnl, notes, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (opened_at, symbol, notes) DO NOTHING
	`, pgx.Identifier{m.table}.Sanitize())
}

// EnsureSchema creates the mirror table if it does not exist.
func (m *LedgerMirror) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, m.schemaSQL()); err != nil {
		return fmt.Errorf("create %s: %w", m.table, err)
	}
	return nil
}

// Insert writes records in one batch. Rows whose key is already present are
// counted as conflicts, not errors, and the stored row is left unchanged.
func (m *LedgerMirror) Insert(ctx context.Context, runID uuid.UUID, records []model.LedgerRecord) (InsertStats, error) {
	var stats InsertStats
	if len(records) == 0 {
		return stats, nil
	}

	rows := make([]ledgerRow, 0, len(records))
	for _, rec := range records {
		row, err := transform(runID, rec)
		if err != nil {
			return stats, err
		}
		rows = append(rows, row)
	}

	start := time.Now()
	conflicts, err := m.batchInsert(ctx, rows)
	if err != nil {
		m.logger.Error("mirror batch insert failed", "error", err, "count", len(rows))
		return stats, fmt.Errorf("insert into %s: %w", m.table, err)
	}

	stats.Inserts = len(rows) - conflicts
	stats.Conflicts = conflicts

	m.logger.Info("mirrored ledger rows",
		"table", m.table,
		"inserted", stats.Inserts,
		"conflicts", stats.Conflicts,
		"duration", time.Since(start),
	)
	return stats, nil
}

// transform converts a ledger record to a row.
func transform(runID uuid.UUID, rec model.LedgerRecord) (ledgerRow, error) {
	openedAt, err := model.ParseLedgerTime(rec.OpenedAt)
	if err != nil {
		return ledgerRow{}, fmt.Errorf("parse opened_at %q: %w", rec.OpenedAt, err)
	}
	closedAt, err := model.ParseLedgerTime(rec.ClosedAt)
	if err != nil {
		return ledgerRow{}, fmt.Errorf("parse closed_at %q: %w", rec.ClosedAt, err)
	}

	return ledgerRow{
		OpenedAt:   openedAt,
		ClosedAt:   closedAt,
		Symbol:     rec.Symbol,
		TradeType:  string(rec.TradeType),
		EntryPrice: rec.EntryPrice,
		ExitPrice:  rec.ExitPrice,
		LotSize:    rec.LotSize,
		PnL:        rec.PnL,
		Notes:      rec.Notes,
		RunID:      runID,
	}, nil
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (m *LedgerMirror) batchInsert(ctx context.Context, rows []ledgerRow) (conflicts int, err error) {
	query := m.insertSQL()

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query,
			r.OpenedAt, r.ClosedAt, r.Symbol, r.TradeType,
			r.EntryPrice, r.ExitPrice, r.LotSize, r.PnL, r.Notes, r.RunID,
		)
	}

	results := m.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
