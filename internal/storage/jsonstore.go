package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"qayd/internal/core"
)

const (
	expensesFile = "expenses.json"
	incomeFile   = "income.json"
)

// FileStore keeps both ledgers as JSON arrays on disk, one file per ledger.
// It is the default backend: no daemon, no schema, survives restarts. The
// whole ledger is held in memory and each mutation rewrites its file.
type FileStore struct {
	dir string

	mu       sync.Mutex
	expenses []core.ExpenseRecord
	income   []core.IncomeRecord
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &FileStore{dir: dir}
	s.expenses = loadLedger[core.ExpenseRecord](filepath.Join(dir, expensesFile))
	s.income = loadLedger[core.IncomeRecord](filepath.Join(dir, incomeFile))

	slog.Info("File store opened",
		"dir", dir,
		"expenses", len(s.expenses),
		"income", len(s.income))

	return s, nil
}

// loadLedger reads one ledger file. A missing or unreadable file and a file
// that does not parse as a JSON array both yield an empty ledger; the next
// mutation overwrites whatever was there.
func loadLedger[R any](path string) []R {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Ledger file unreadable, starting empty", "path", path, "error", err)
		}
		return []R{}
	}

	var records []R
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Ledger file corrupt, starting empty", "path", path, "error", err)
		return []R{}
	}
	if records == nil {
		records = []R{}
	}
	return records
}

// writeLedger rewrites one ledger file atomically via a temp file rename.
func writeLedger[R any](path string, records []R) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (s *FileStore) CreateExpense(ctx context.Context, rec core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first, so lists render in insertion order without sorting.
	next := append([]core.ExpenseRecord{rec}, s.expenses...)
	if err := writeLedger(filepath.Join(s.dir, expensesFile), next); err != nil {
		return err
	}
	s.expenses = next

	slog.InfoContext(ctx, "Expense saved",
		"id", rec.ID,
		"amount", rec.Amount,
		"main_category", rec.MainCategory)
	return nil
}

func (s *FileStore) CreateIncome(ctx context.Context, rec core.IncomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]core.IncomeRecord{rec}, s.income...)
	if err := writeLedger(filepath.Join(s.dir, incomeFile), next); err != nil {
		return err
	}
	s.income = next

	slog.InfoContext(ctx, "Income saved",
		"id", rec.ID,
		"amount", rec.Amount,
		"type", rec.Type)
	return nil
}

func (s *FileStore) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.ExpenseRecord, 0, len(s.expenses))
	for _, rec := range s.expenses {
		if rec.ID != id {
			next = append(next, rec)
		}
	}
	if len(next) == len(s.expenses) {
		return core.ErrRecordNotFound
	}
	if err := writeLedger(filepath.Join(s.dir, expensesFile), next); err != nil {
		return err
	}
	s.expenses = next

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (s *FileStore) DeleteIncome(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.IncomeRecord, 0, len(s.income))
	for _, rec := range s.income {
		if rec.ID != id {
			next = append(next, rec)
		}
	}
	if len(next) == len(s.income) {
		return core.ErrRecordNotFound
	}
	if err := writeLedger(filepath.Join(s.dir, incomeFile), next); err != nil {
		return err
	}
	s.income = next

	slog.InfoContext(ctx, "Income deleted", "id", id)
	return nil
}

func (s *FileStore) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.ExpenseRecord, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

func (s *FileStore) ListIncome(ctx context.Context) ([]core.IncomeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.IncomeRecord, len(s.income))
	copy(out, s.income)
	return out, nil
}

func (s *FileStore) Close() error { return nil }
