package sheets

import (
	"context"

	"qayd/internal/core"
)

// Ports for the remote ledger backup.
type (
	LedgerWriter interface {
		AppendExpense(ctx context.Context, rec core.ExpenseRecord) (rowRef string, err error)
		AppendIncome(ctx context.Context, rec core.IncomeRecord) (rowRef string, err error)
	}

	// LedgerDeleter removes a previously appended record. Kind is "expense"
	// or "income".
	LedgerDeleter interface {
		DeleteRecord(ctx context.Context, kind, id string) error
	}

	Ledger interface {
		LedgerWriter
		LedgerDeleter
	}
)
