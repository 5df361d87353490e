// Package store implements the durable CSV record store. The backing file is
// the single source of truth: every read loads the whole table and every
// mutation rewrites it in full. Row identity is the positional index into the
// loaded table, so deleting a row shifts the indices of everything after it.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hisab/internal/core"
)

// RequiredFields is the canonical header, in column order.
var RequiredFields = []string{"Date", "Category", "Amount", "Type"}

var ErrRowNotFound = errors.New("row not found")

// Store owns a single CSV file of transactions. The mutex serializes this
// process's read-modify-write cycles; there is no cross-process locking and no
// atomic rename on write, which is an accepted limitation at this scale.
type Store struct {
	mu   sync.Mutex
	path string
}

// New ensures the backing file exists with a valid header and returns a store
// bound to it. A file whose header is missing any required field is moved
// aside with a timestamp suffix and replaced by a fresh canonical file, so
// malformed data is quarantined rather than destroyed.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s := &Store{path: path}
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureInitialized() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.createEmptyFile()
	}
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}

	header, readErr := csv.NewReader(f).Read()
	f.Close()

	if readErr == io.EOF {
		// Empty file, nothing to quarantine.
		return s.createEmptyFile()
	}
	if readErr != nil || !headerValid(header) {
		quarantined := fmt.Sprintf("%s.invalid-%s", s.path, time.Now().Format("20060102T150405"))
		if err := os.Rename(s.path, quarantined); err != nil {
			return fmt.Errorf("quarantine invalid data file: %w", err)
		}
		slog.Warn("Data file header invalid, quarantined and recreated",
			"path", s.path,
			"quarantined_as", quarantined)
		return s.createEmptyFile()
	}
	return nil
}

func (s *Store) createEmptyFile() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create data file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(RequiredFields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// headerValid reports whether every required field name appears in the header,
// matched case-insensitively.
func headerValid(header []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, req := range RequiredFields {
		if !present[strings.ToLower(req)] {
			return false
		}
	}
	return true
}

// Append normalizes and appends one transaction. Type is lower-cased and
// trimmed; a non-finite amount is stored as 0.0 with a warning rather than
// rejecting the write. Category and Date are stored as given.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.Type = core.NormalizeType(string(tx.Type))
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		slog.WarnContext(ctx, "Invalid amount on append, storing 0.0",
			"date", tx.Date,
			"category", tx.Category)
		tx.Amount = 0
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open data file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tx.Record()); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	return nil
}

// Load reads the full table. All coercions are applied: Amount falls back to
// 0.0 when non-numeric, Type is lower-cased, Date and Category are trimmed,
// and columns missing from the file are synthesized as empty. Repeated header
// rows embedded in the data are dropped. An unreadable file yields an empty
// table, never an error.
func (s *Store) Load(ctx context.Context) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) []core.Transaction {
	f, err := os.Open(s.path)
	if err != nil {
		slog.WarnContext(ctx, "Unable to read data file, treating as empty", "path", s.path, "error", err)
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		slog.WarnContext(ctx, "Unable to parse data file, treating as empty", "path", s.path, "error", err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	cols := columnIndexes(records[0])
	rows := make([]core.Transaction, 0, len(records)-1)
	for _, rec := range records[1:] {
		// A concatenated file can repeat the header mid-table. Drop those
		// rows instead of loading them as Date="Date" transactions.
		if fieldAt(rec, cols["date"]) == "Date" {
			continue
		}
		amountRaw := fieldAt(rec, cols["amount"])
		amount, ok := core.CoerceAmount(amountRaw)
		if !ok && strings.TrimSpace(amountRaw) != "" {
			slog.WarnContext(ctx, "Non-numeric amount coerced to 0.0", "value", amountRaw)
		}
		rows = append(rows, core.Transaction{
			Date:     strings.TrimSpace(fieldAt(rec, cols["date"])),
			Category: strings.TrimSpace(fieldAt(rec, cols["category"])),
			Amount:   amount,
			Type:     core.NormalizeType(fieldAt(rec, cols["type"])),
		})
	}
	return rows
}

// columnIndexes maps canonical lower-cased field names to their position in
// the file's header. Missing fields map to -1 and read back as empty.
func columnIndexes(header []string) map[string]int {
	idx := map[string]int{"date": -1, "category": -1, "amount": -1, "type": -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[name]; ok && idx[name] == -1 {
			idx[name] = i
		}
	}
	return idx
}

func fieldAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// UpdateRow overwrites the row at the given positional index. The replacement
// goes through the same normalization as Append.
func (s *Store) UpdateRow(ctx context.Context, index int, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.loadLocked(ctx)
	if index < 0 || index >= len(rows) {
		return ErrRowNotFound
	}

	tx.Type = core.NormalizeType(string(tx.Type))
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		slog.WarnContext(ctx, "Invalid amount on update, storing 0.0", "index", index)
		tx.Amount = 0
	}
	rows[index] = tx
	return s.writeAllLocked(rows)
}

// DeleteRow removes the row at the given positional index, preserving the
// relative order of the remaining rows.
func (s *Store) DeleteRow(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.loadLocked(ctx)
	if index < 0 || index >= len(rows) {
		return ErrRowNotFound
	}
	rows = append(rows[:index], rows[index+1:]...)
	return s.writeAllLocked(rows)
}

func (s *Store) writeAllLocked(rows []core.Transaction) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("rewrite data file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(RequiredFields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range rows {
		if err := w.Write(tx.Record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush data file: %w", err)
	}
	return nil
}
