package backend

import (
	"context"

	"qayd/internal/core"
)

// ExpenseStore is the expense ledger port.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, rec core.ExpenseRecord) error
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
}

// IncomeStore is the income ledger port.
type IncomeStore interface {
	CreateIncome(ctx context.Context, rec core.IncomeRecord) error
	DeleteIncome(ctx context.Context, id string) error
	ListIncome(ctx context.Context) ([]core.IncomeRecord, error)
}

// Store is the full persistence surface the server needs.
type Store interface {
	ExpenseStore
	IncomeStore
	Close() error
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Type selects the persistence backend.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
