package normalize

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/igtrades/internal/model"
)

// DefaultCurrencyGlyph is stripped from profit and loss values.
const DefaultCurrencyGlyph = "£"

// igTimeLayout is the UTC timestamp format IG uses; it carries no zone designator.
const igTimeLayout = "2006-01-02T15:04:05"

// ParseError reports a field that could not be coerced.
type ParseError struct {
	Field     string
	Value     string
	Reference string
	Err       error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s %q", e.Field, e.Value)
	if e.Reference != "" {
		msg += " (reference " + e.Reference + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithAliases sets the instrument alias table.
func WithAliases(t *AliasTable) Option {
	return func(n *Normalizer) {
		n.aliases = t
	}
}

// WithCurrencyGlyph sets the glyph stripped from profit and loss values.
func WithCurrencyGlyph(glyph string) Option {
	return func(n *Normalizer) {
		n.glyph = glyph
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// Normalizer coerces raw deal records.
type Normalizer struct {
	aliases *AliasTable
	glyph   string
	logger  *slog.Logger
}

// New creates a Normalizer with the default alias table and glyph.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases: DefaultAliasTable(),
		glyph:   DefaultCurrencyGlyph,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Clean converts raw transactions and sorts them by close time, newest
// first. Rows with equal close times keep their input order. The first
// malformed date or P&L value aborts with a *ParseError.
func (n *Normalizer) Clean(raw []model.RawTransaction) ([]model.CleanedTransaction, error) {
	out := make([]model.CleanedTransaction, 0, len(raw))
	coerced := 0

	for _, r := range raw {
		c, nulls, err := n.clean(r)
		if err != nil {
			return nil, err
		}
		coerced += nulls
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateUTC.After(out[j].DateUTC)
	})

	if coerced > 0 {
		n.logger.Warn("numeric fields coerced to null", "count", coerced)
	}

	return out, nil
}

// clean converts one record and reports how many numeric fields became null.
func (n *Normalizer) clean(r model.RawTransaction) (model.CleanedTransaction, int, error) {
	closed, err := ParseTime(r.DateUTC)
	if err != nil {
		return model.CleanedTransaction{}, 0, &ParseError{Field: "dateUtc", Value: r.DateUTC, Reference: r.Reference, Err: err}
	}
	opened, err := ParseTime(r.OpenDateUTC)
	if err != nil {
		return model.CleanedTransaction{}, 0, &ParseError{Field: "openDateUtc", Value: r.OpenDateUTC, Reference: r.Reference, Err: err}
	}
	pnl, err := ParseMoney(r.ProfitAndLoss, n.glyph)
	if err != nil {
		return model.CleanedTransaction{}, 0, &ParseError{Field: "profitAndLoss", Value: r.ProfitAndLoss, Reference: r.Reference, Err: err}
	}

	size := ParseNumber(r.Size)
	openLevel := ParseNumber(r.OpenLevel)
	closeLevel := ParseNumber(r.CloseLevel)

	nulls := 0
	for _, pair := range []struct {
		raw string
		val decimal.NullDecimal
	}{{r.Size, size}, {r.OpenLevel, openLevel}, {r.CloseLevel, closeLevel}} {
		if pair.raw != "" && !pair.val.Valid {
			nulls++
		}
	}

	return model.CleanedTransaction{
		TransactionType: r.TransactionType,
		InstrumentName:  n.aliases.Canonicalize(r.InstrumentName),
		DateUTC:         closed,
		OpenDateUTC:     opened,
		Size:            size,
		OpenLevel:       openLevel,
		CloseLevel:      closeLevel,
		ProfitAndLoss:   pnl,
		Reference:       r.Reference,
		Currency:        r.Currency,
	}, nulls, nil
}

// ParseTime parses an IG UTC timestamp. RFC 3339 values are converted to UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(igTimeLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	t, rfcErr := time.Parse(time.RFC3339, s)
	if rfcErr != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseNumber parses a numeric field. Empty or invalid input is null.
// A leading "+" is accepted ("+0.5").
func ParseNumber(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ParseMoney strips every occurrence of glyph from s and parses the rest.
func ParseMoney(s, glyph string) (decimal.Decimal, error) {
	if glyph != "" {
		s = strings.ReplaceAll(s, glyph, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}
