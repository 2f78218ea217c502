package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/igtrades/internal/model"
)

// ErrHeaderMismatch is returned when the ledger header shares no column with
// the trade schema, so rows could be neither compared nor written.
var ErrHeaderMismatch = errors.New("ledger header shares no column with the trade schema")

const (
	utf8BOM   = "\ufeff"
	nullCell  = "\x00"
	keyJoiner = "\x1f"
)

// Ledger is a CSV trade ledger on disk.
type Ledger struct {
	path   string
	logger *slog.Logger
}

// New creates a Ledger for the file at path. The file need not exist.
func New(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{path: path, logger: logger}
}

// Snapshot is the parsed content of the ledger file.
type Snapshot struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the ledger holds no data rows.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Rows) == 0
}

// SharedColumns returns the header columns that are part of the trade schema,
// in header order.
func (s *Snapshot) SharedColumns() []string {
	if s == nil {
		return nil
	}
	return sharedColumns(s.Header)
}

// Load reads the ledger. A missing or zero-byte file yields an empty
// snapshot with no header.
func (l *Ledger) Load() (*Snapshot, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return &Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger rows: %w", err)
	}

	return &Snapshot{Header: cleanHeader(header), Rows: rows}, nil
}

// Reconcile returns the records that have no identical row in the ledger,
// in input order. Rows are compared on the columns shared by the file header
// and the trade schema. A ledger without data rows makes every record new.
func (l *Ledger) Reconcile(records []model.LedgerRecord) ([]model.LedgerRecord, error) {
	snap, err := l.Load()
	if err != nil {
		return nil, err
	}

	if snap.Empty() {
		l.logger.Info("ledger has no rows, all trades are new",
			"path", l.path,
			"trades", len(records),
		)
		return append([]model.LedgerRecord(nil), records...), nil
	}

	shared := snap.SharedColumns()
	if len(shared) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHeaderMismatch, strings.Join(snap.Header, ","))
	}

	index := make([]int, len(shared))
	for i, col := range shared {
		index[i] = indexOf(snap.Header, col)
	}

	existing := make(map[string]struct{}, len(snap.Rows))
	cells := make([]string, len(shared))
	for _, row := range snap.Rows {
		for i, idx := range index {
			cell := ""
			if idx < len(row) {
				cell = row[idx]
			}
			cells[i] = normalizeCell(cell)
		}
		existing[strings.Join(cells, keyJoiner)] = struct{}{}
	}

	fresh := make([]model.LedgerRecord, 0, len(records))
	for _, rec := range records {
		for i, col := range shared {
			v, _ := rec.Value(col)
			cells[i] = normalizeCell(v)
		}
		if _, ok := existing[strings.Join(cells, keyJoiner)]; ok {
			continue
		}
		fresh = append(fresh, rec)
	}

	l.logger.Info("reconciled against ledger",
		"path", l.path,
		"existing_rows", len(snap.Rows),
		"compared_columns", len(shared),
		"trades", len(records),
		"new", len(fresh),
	)
	return fresh, nil
}

// Append adds records to the end of the ledger and returns the number of
// rows written. A missing or zero-byte file is created with the schema
// header. Otherwise rows follow the existing header's column order, and
// columns unknown to the schema are left empty. Zero records touch nothing.
func (l *Ledger) Append(records []model.LedgerRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	header, needsNewline, err := l.inspect()
	if err != nil {
		return 0, err
	}

	writeHeader := header == nil
	if writeHeader {
		header = model.LedgerColumns
	} else if len(sharedColumns(header)) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrHeaderMismatch, strings.Join(header, ","))
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open ledger for append: %w", err)
	}

	if err := writeRows(f, header, writeHeader, needsNewline, records); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, fmt.Errorf("sync ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close ledger: %w", err)
	}

	l.logger.Info("appended to ledger",
		"path", l.path,
		"rows", len(records),
		"created", writeHeader,
	)
	return len(records), nil
}

// inspect returns the existing header (nil when the file is missing or
// empty) and whether the file lacks a trailing newline.
func (l *Ledger) inspect() (header []string, needsNewline bool, err error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat ledger: %w", err)
	}
	if info.Size() == 0 {
		return nil, false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return nil, false, fmt.Errorf("read ledger tail: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("seek ledger: %w", err)
	}
	header, err = newReader(f).Read()
	if err != nil {
		return nil, false, fmt.Errorf("read ledger header: %w", err)
	}

	return cleanHeader(header), last[0] != '\n', nil
}

func writeRows(w io.Writer, header []string, withHeader, leadingNewline bool, records []model.LedgerRecord) error {
	if leadingNewline {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write ledger: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	for _, rec := range records {
		if err := cw.Write(rec.Values(header)); err != nil {
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	return nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

func cleanHeader(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header
}

func sharedColumns(header []string) []string {
	var shared []string
	for _, col := range header {
		if model.IsLedgerColumn(col) && indexOf(shared, col) < 0 {
			shared = append(shared, col)
		}
	}
	return shared
}

func indexOf(items []string, s string) int {
	for i, item := range items {
		if item == s {
			return i
		}
	}
	return -1
}

// normalizeCell maps a cell to its comparison form.
func normalizeCell(s string) string {
	if s == "" {
		return nullCell
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d.String()
	}
	return s
}
