package aggregate

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rickgao/igtrades/internal/model"
)

// ReferenceSeparator joins the deal references of one trade.
const ReferenceSeparator = "; "

// TradeKey identifies one logical trade.
type TradeKey struct {
	OpenUnixNano   int64 // Open instant, so equal instants in different zones compare equal
	InstrumentName string
}

// KeyOf returns the grouping key for a transaction.
func KeyOf(tx model.CleanedTransaction) TradeKey {
	return TradeKey{
		OpenUnixNano:   tx.OpenDateUTC.UnixNano(),
		InstrumentName: tx.InstrumentName,
	}
}

// Aggregator groups cleaned transactions into trades.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an Aggregator.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Aggregate collapses transactions sharing an open time and instrument.
// Input must be ordered newest-first (as produced by the normalizer): the
// first row of each group supplies every non-additive field. Transactions
// without an instrument name cannot be keyed and are dropped. Output is
// ordered by open time, then instrument name.
func (a *Aggregator) Aggregate(txs []model.CleanedTransaction) []model.AggregatedTrade {
	keyed := make([]model.CleanedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.InstrumentName == "" {
			a.logger.Warn("dropping transaction without instrument name", "reference", tx.Reference)
			continue
		}
		keyed = append(keyed, tx)
	}

	keys, groups := GroupBy(keyed, KeyOf)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OpenUnixNano != keys[j].OpenUnixNano {
			return keys[i].OpenUnixNano < keys[j].OpenUnixNano
		}
		return keys[i].InstrumentName < keys[j].InstrumentName
	})

	trades := make([]model.AggregatedTrade, 0, len(keys))
	for _, k := range keys {
		trades = append(trades, Combine(groups[k]))
	}
	return trades
}

// Combine reduces one non-empty group. Size and P&L are summed (null sizes
// are skipped); everything else comes from the first row.
func Combine(group []model.CleanedTransaction) model.AggregatedTrade {
	latest := group[0]

	size := decimal.Zero
	pnl := decimal.Zero
	for _, tx := range group {
		if tx.Size.Valid {
			size = size.Add(tx.Size.Decimal)
		}
		pnl = pnl.Add(tx.ProfitAndLoss)
	}

	return model.AggregatedTrade{
		TransactionType: latest.TransactionType,
		InstrumentName:  latest.InstrumentName,
		DateUTC:         latest.DateUTC,
		OpenDateUTC:     latest.OpenDateUTC,
		Size:            size,
		OpenLevel:       latest.OpenLevel,
		CloseLevel:      latest.CloseLevel,
		ProfitAndLoss:   pnl,
		Reference:       JoinReferences(group),
		Currency:        latest.Currency,
	}
}

// JoinReferences joins distinct non-empty references in first-seen order.
func JoinReferences(group []model.CleanedTransaction) string {
	seen := make(map[string]struct{}, len(group))
	refs := make([]string, 0, len(group))
	for _, tx := range group {
		if tx.Reference == "" {
			continue
		}
		if _, ok := seen[tx.Reference]; ok {
			continue
		}
		seen[tx.Reference] = struct{}{}
		refs = append(refs, tx.Reference)
	}
	return strings.Join(refs, ReferenceSeparator)
}

// Format converts trades to ledger records.
func Format(trades []model.AggregatedTrade) []model.LedgerRecord {
	upper := cases.Upper(language.Und)
	out := make([]model.LedgerRecord, 0, len(trades))
	for _, t := range trades {
		out = append(out, FormatTrade(t, upper))
	}
	return out
}

// FormatTrade converts one trade. A negative size is a sell; zero and
// positive sizes are buys.
func FormatTrade(t model.AggregatedTrade, upper cases.Caser) model.LedgerRecord {
	tradeType := model.TradeTypeBuy
	if t.Size.IsNegative() {
		tradeType = model.TradeTypeSell
	}

	return model.LedgerRecord{
		Symbol:     upper.String(t.InstrumentName),
		TradeType:  tradeType,
		EntryPrice: t.OpenLevel,
		ExitPrice:  t.CloseLevel,
		LotSize:    t.Size.Abs(),
		PnL:        t.ProfitAndLoss,
		ClosedAt:   model.FormatLedgerTime(t.DateUTC),
		OpenedAt:   model.FormatLedgerTime(t.OpenDateUTC),
		Notes:      t.Reference,
	}
}
