package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/igtrades/internal/aggregate"
	"github.com/rickgao/igtrades/internal/api"
	"github.com/rickgao/igtrades/internal/auth"
	"github.com/rickgao/igtrades/internal/config"
	"github.com/rickgao/igtrades/internal/ledger"
	"github.com/rickgao/igtrades/internal/model"
	"github.com/rickgao/igtrades/internal/normalize"
	"github.com/rickgao/igtrades/internal/writer"
)

// Source supplies raw history. *api.Client implements it.
type Source interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Session, error)
	GetAllTransactions(ctx context.Context, session *auth.Session, from, to time.Time) ([]model.RawTransaction, error)
}

// Mirror receives the rows appended to the ledger. *writer.LedgerMirror implements it.
type Mirror interface {
	Insert(ctx context.Context, runID uuid.UUID, records []model.LedgerRecord) (writer.InsertStats, error)
}

// Result summarizes one run.
type Result struct {
	RunID    uuid.UUID
	From     time.Time
	To       time.Time
	Empty    bool // No transactions in range; nothing was read or written
	Fetched  int  // DEAL transactions returned by the API
	Trades   int  // Logical trades after aggregation
	New      int  // Trades not already in the ledger
	Appended int
	Mirrored writer.InsertStats
	Duration time.Duration
}

// Pipeline wires the export stages together.
type Pipeline struct {
	creds             auth.Credentials
	source            Source
	mirror            Mirror
	aliases           *normalize.AliasTable
	currencyGlyph     string
	ledgerPath        string
	paginationTimeout time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMirror also inserts appended rows into m.
func WithMirror(m Mirror) Option {
	return func(p *Pipeline) {
		p.mirror = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithClock sets the clock used for the default date range.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline from a validated config.
func New(cfg *config.Config, source Source, opts ...Option) (*Pipeline, error) {
	creds, err := auth.LoadCredentials(cfg.API.Username, cfg.API.Password, cfg.API.APIKey)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	aliases := normalize.DefaultAliasTable(cfg.Normalize.Aliases...)
	if err := aliases.Validate(); err != nil {
		return nil, fmt.Errorf("alias table: %w", err)
	}

	p := &Pipeline{
		creds:             *creds,
		source:            source,
		aliases:           aliases,
		currencyGlyph:     cfg.Normalize.CurrencyGlyph,
		ledgerPath:        cfg.Ledger.Path,
		paginationTimeout: cfg.API.PaginationTimeout,
		logger:            slog.Default(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p, nil
}

// NewAPIClient builds the IG client described by cfg.
func NewAPIClient(cfg config.APIConfig, logger *slog.Logger) *api.Client {
	if logger == nil {
		logger = slog.Default()
	}
	return api.NewClient(cfg.BaseURL, cfg.APIKey,
		api.WithTimeout(cfg.Timeout),
		api.WithRateLimit(cfg.RequestsPerSecond),
		api.WithLogger(logger.With("component", "api")),
	)
}

// Run performs one export over [from, to]. Zero dates select the default
// window (the last day). An empty history is not an error.
func (p *Pipeline) Run(ctx context.Context, from, to time.Time) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.New()}
	res.From, res.To = api.DateRange(from, to, p.now())

	logger := p.logger.With("run_id", res.RunID.String())
	logger.Info("starting run",
		"from", res.From.Format(api.QueryDateLayout),
		"to", res.To.Format(api.QueryDateLayout),
		"ledger", p.ledgerPath,
	)

	session, err := p.source.Login(ctx, p.creds)
	if err != nil {
		return res, fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in", "account_id", session.Account.AccountID)

	raw, err := p.fetch(ctx, session, res.From, res.To)
	if err != nil {
		return res, fmt.Errorf("fetch transactions: %w", err)
	}
	res.Fetched = len(raw)
	logger.Info("fetched transactions", "count", res.Fetched)

	if len(raw) == 0 {
		res.Empty = true
		res.Duration = time.Since(start)
		logger.Info("no transactions found, nothing to do")
		return res, nil
	}

	nopts := []normalize.Option{normalize.WithAliases(p.aliases), normalize.WithLogger(logger)}
	if p.currencyGlyph != "" {
		nopts = append(nopts, normalize.WithCurrencyGlyph(p.currencyGlyph))
	}
	cleaned, err := normalize.New(nopts...).Clean(raw)
	if err != nil {
		return res, fmt.Errorf("clean transactions: %w", err)
	}
	logger.Info("cleaned transactions", "count", len(cleaned))

	trades := aggregate.New(logger).Aggregate(cleaned)
	records := aggregate.Format(trades)
	res.Trades = len(records)
	logger.Info("aggregated trades", "fills", len(cleaned), "trades", res.Trades)

	l := ledger.New(p.ledgerPath, logger)
	fresh, err := l.Reconcile(records)
	if err != nil {
		return res, fmt.Errorf("reconcile ledger: %w", err)
	}
	res.New = len(fresh)

	res.Appended, err = l.Append(fresh)
	if err != nil {
		return res, fmt.Errorf("append ledger: %w", err)
	}

	if p.mirror != nil && len(fresh) > 0 {
		res.Mirrored, err = p.mirror.Insert(ctx, res.RunID, fresh)
		if err != nil {
			logger.Error("ledger written but mirror failed", "appended", res.Appended, "error", err)
			return res, fmt.Errorf("mirror ledger rows: %w", err)
		}
	}

	res.Duration = time.Since(start)
	logger.Info("run complete",
		"fetched", res.Fetched,
		"trades", res.Trades,
		"new", res.New,
		"appended", res.Appended,
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, session *auth.Session, from, to time.Time) ([]model.RawTransaction, error) {
	if p.paginationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.paginationTimeout)
		defer cancel()
	}
	return p.source.GetAllTransactions(ctx, session, from, to)
}
