package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/igtrades/internal/api"
	"github.com/rickgao/igtrades/internal/config"
	"github.com/rickgao/igtrades/internal/model"
	"github.com/rickgao/igtrades/internal/normalize"
	"github.com/rickgao/igtrades/internal/writer"
)

var fixedNow = time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)

// partialFills is two fills of one gold trade plus a deposit that must be ignored.
var partialFills = []map[string]any{
	{
		"transactionType": "DEAL",
		"instrumentName":  "Spot Gold - Cash",
		"dateUtc":         "2024-01-15T13:59:00",
		"openDateUtc":     "2024-01-15T12:00:00",
		"size":            "+0.5",
		"openLevel":       "2050.5",
		"closeLevel":      "2051.5",
		"profitAndLoss":   "£5.00",
		"reference":       "REF2",
		"currency":        "£",
	},
	{
		"transactionType": "DEAL",
		"instrumentName":  "Spot Gold - Cash",
		"dateUtc":         "2024-01-15T14:00:00",
		"openDateUtc":     "2024-01-15T12:00:00",
		"size":            "+0.5",
		"openLevel":       "2050.5",
		"closeLevel":      "2051.5",
		"profitAndLoss":   "£10.00",
		"reference":       "REF1",
		"currency":        "£",
	},
	{
		"transactionType": "DEPO",
		"instrumentName":  "Deposit",
		"dateUtc":         "2024-01-15T09:00:00",
		"profitAndLoss":   "£500.00",
		"reference":       "DEP1",
	},
}

const wantLedger = "symbol,trade_type,entry_price,exit_price,lot_size,pnl,closed_at,opened_at,strategy,notes,stop_loss,target_price,commission\n" +
	"XAUUSD,buy,2050.5,2051.5,1.0,15.0,2024.01.15 14:00:00,2024.01.15 12:00:00,,REF1; REF2,,,\n"

type igServer struct {
	*httptest.Server
	logins       atomic.Int32
	historyCalls atomic.Int32
}

func newIGServer(t *testing.T, loginStatus int, transactions []map[string]any) *igServer {
	t.Helper()
	s := &igServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session":
			s.logins.Add(1)
			if loginStatus != http.StatusOK {
				w.WriteHeader(loginStatus)
				w.Write([]byte(`{"errorCode":"error.security.invalid-details"}`))
				return
			}
			w.Header().Set("CST", "cst-token")
			w.Header().Set("X-SECURITY-TOKEN", "security-token")
			json.NewEncoder(w).Encode(map[string]any{
				"currentAccountId": "ABC123",
				"currencyIsoCode":  "GBP",
			})
		case "/history/transactions":
			s.historyCalls.Add(1)
			if r.Header.Get("CST") != "cst-token" {
				t.Errorf("CST = %q, want cst-token", r.Header.Get("CST"))
			}
			q := r.URL.Query()
			if q.Get("from") != "2024-01-15" || q.Get("to") != "2024-01-16" {
				t.Errorf("from/to = %s/%s, want the day before now", q.Get("from"), q.Get("to"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"transactions": transactions,
				"metadata":     map[string]any{"pageData": map[string]any{"totalPages": 1}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func testConfig(baseURL, ledgerPath string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:           baseURL,
			Username:          "trader",
			Password:          "hunter2",
			APIKey:            "key-123",
			Timeout:           5 * time.Second,
			PaginationTimeout: 30 * time.Second,
		},
		Ledger:    config.LedgerConfig{Path: ledgerPath},
		Normalize: config.NormalizeConfig{CurrencyGlyph: normalize.DefaultCurrencyGlyph},
	}
}

func newPipeline(t *testing.T, cfg *config.Config, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	p, err := New(cfg, NewAPIClient(cfg.API, nil), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func readLedger(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	server := newIGServer(t, http.StatusOK, partialFills)
	path := filepath.Join(t.TempDir(), "ig_transactions_formatted.csv")
	p := newPipeline(t, testConfig(server.URL, path))

	res, err := p.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Empty {
		t.Error("Empty = true, want false")
	}
	if res.Fetched != 2 || res.Trades != 1 || res.New != 1 || res.Appended != 1 {
		t.Errorf("result = %+v, want 2 fetched, 1 trade, 1 new, 1 appended", res)
	}
	if res.RunID == uuid.Nil {
		t.Error("RunID not set")
	}
	if got := readLedger(t, path); got != wantLedger {
		t.Errorf("ledger:\n%s\nwant:\n%s", got, wantLedger)
	}

	// A second run over the same history finds nothing new.
	res, err = p.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.New != 0 || res.Appended != 0 {
		t.Errorf("second run = %+v, want nothing new", res)
	}
	if got := readLedger(t, path); got != wantLedger {
		t.Errorf("ledger changed on second run:\n%s", got)
	}
	if server.logins.Load() != 2 {
		t.Errorf("logins = %d, want one per run", server.logins.Load())
	}
}

func TestRun_EmptyHistory(t *testing.T) {
	server := newIGServer(t, http.StatusOK, nil)
	path := filepath.Join(t.TempDir(), "trades.csv")
	p := newPipeline(t, testConfig(server.URL, path))

	res, err := p.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Empty {
		t.Error("Empty = false, want true")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ledger should not be created for an empty history: %v", err)
	}
}

func TestRun_ExplicitRange(t *testing.T) {
	var gotFrom, gotTo string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" {
			w.Header().Set("CST", "c")
			w.Header().Set("X-SECURITY-TOKEN", "s")
			w.Write([]byte(`{}`))
			return
		}
		gotFrom, gotTo = r.URL.Query().Get("from"), r.URL.Query().Get("to")
		w.Write([]byte(`{"transactions":[],"metadata":{}}`))
	}))
	defer server.Close()

	p := newPipeline(t, testConfig(server.URL, filepath.Join(t.TempDir(), "t.csv")))
	from := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	res, err := p.Run(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotFrom != "2023-12-01" || gotTo != "2023-12-31" {
		t.Errorf("from/to = %s/%s, want 2023-12-01/2023-12-31", gotFrom, gotTo)
	}
	if !res.From.Equal(from) || !res.To.Equal(to) {
		t.Errorf("result range = %v..%v", res.From, res.To)
	}
}

func TestRun_LoginRejected(t *testing.T) {
	server := newIGServer(t, http.StatusUnauthorized, partialFills)
	path := filepath.Join(t.TempDir(), "trades.csv")
	p := newPipeline(t, testConfig(server.URL, path))

	_, err := p.Run(context.Background(), time.Time{}, time.Time{})
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Run error = %v, want *api.AuthError", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", authErr.StatusCode)
	}
	if server.historyCalls.Load() != 0 {
		t.Error("history fetched after a failed login")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("ledger touched after a failed login")
	}
}

func TestRun_MalformedPnL(t *testing.T) {
	bad := []map[string]any{{
		"transactionType": "DEAL",
		"instrumentName":  "US Tech 100",
		"dateUtc":         "2024-01-15T14:00:00",
		"openDateUtc":     "2024-01-15T12:00:00",
		"size":            "-1",
		"profitAndLoss":   "£n/a",
		"reference":       "REF1",
	}}
	server := newIGServer(t, http.StatusOK, bad)
	path := filepath.Join(t.TempDir(), "trades.csv")
	p := newPipeline(t, testConfig(server.URL, path))

	_, err := p.Run(context.Background(), time.Time{}, time.Time{})
	var parseErr *normalize.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Run error = %v, want *normalize.ParseError", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("ledger written despite a parse error")
	}
}

type fakeMirror struct {
	runID   uuid.UUID
	records []model.LedgerRecord
	err     error
}

func (m *fakeMirror) Insert(ctx context.Context, runID uuid.UUID, records []model.LedgerRecord) (writer.InsertStats, error) {
	m.runID = runID
	m.records = records
	if m.err != nil {
		return writer.InsertStats{}, m.err
	}
	return writer.InsertStats{Inserts: len(records)}, nil
}

func TestRun_Mirror(t *testing.T) {
	server := newIGServer(t, http.StatusOK, partialFills)
	path := filepath.Join(t.TempDir(), "trades.csv")
	mirror := &fakeMirror{}
	p := newPipeline(t, testConfig(server.URL, path), WithMirror(mirror))

	res, err := p.Run(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mirror.runID != res.RunID {
		t.Errorf("mirror run id = %v, want %v", mirror.runID, res.RunID)
	}
	if len(mirror.records) != 1 || mirror.records[0].Notes != "REF1; REF2" {
		t.Errorf("mirrored records = %+v", mirror.records)
	}
	if res.Mirrored.Inserts != 1 {
		t.Errorf("Mirrored = %+v, want 1 insert", res.Mirrored)
	}

	// Nothing new on the second run, so the mirror is not called.
	mirror.records = nil
	if _, err := p.Run(context.Background(), time.Time{}, time.Time{}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if mirror.records != nil {
		t.Errorf("mirror called with %d records on a run with nothing new", len(mirror.records))
	}
}

func TestRun_MirrorFailureAfterAppend(t *testing.T) {
	server := newIGServer(t, http.StatusOK, partialFills)
	path := filepath.Join(t.TempDir(), "trades.csv")
	mirror := &fakeMirror{err: errors.New("connection refused")}
	p := newPipeline(t, testConfig(server.URL, path), WithMirror(mirror))

	res, err := p.Run(context.Background(), time.Time{}, time.Time{})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("Run error = %v, want mirror failure", err)
	}
	if res.Appended != 1 {
		t.Errorf("Appended = %d, want 1", res.Appended)
	}
	if got := readLedger(t, path); got != wantLedger {
		t.Errorf("ledger should be written before the mirror:\n%s", got)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://unused", "trades.csv")
	cfg.API.Password = ""

	if _, err := New(cfg, nil); err == nil {
		t.Error("New should reject missing credentials")
	}
}
