// Package memory is an in-process stand-in for the remote ledger, used in
// tests and when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"qayd/internal/core"
)

type Store struct {
	mu       sync.Mutex
	expenses []core.ExpenseRecord
	income   []core.IncomeRecord
	deleted  []string
}

func New() *Store {
	return &Store{}
}

func (s *Store) AppendExpense(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, rec)
	return fmt.Sprintf("mem:expenses:%d", len(s.expenses)), nil
}

func (s *Store) AppendIncome(_ context.Context, rec core.IncomeRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income = append(s.income, rec)
	return fmt.Sprintf("mem:income:%d", len(s.income)), nil
}

func (s *Store) DeleteRecord(_ context.Context, kind, id string) error {
	if kind != "expense" && kind != "income" {
		return fmt.Errorf("unknown record kind %q", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case "expense":
		for i, rec := range s.expenses {
			if rec.ID == id {
				s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
				break
			}
		}
	case "income":
		for i, rec := range s.income {
			if rec.ID == id {
				s.income = append(s.income[:i], s.income[i+1:]...)
				break
			}
		}
	}
	s.deleted = append(s.deleted, kind+":"+id)
	return nil
}

// Expenses returns a copy of the appended expense rows.
func (s *Store) Expenses() []core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseRecord(nil), s.expenses...)
}

// Income returns a copy of the appended income rows.
func (s *Store) Income() []core.IncomeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IncomeRecord(nil), s.income...)
}

// Deleted returns the kind:id pairs passed to DeleteRecord.
func (s *Store) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
