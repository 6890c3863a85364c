package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"qayd/internal/amqp"
	"qayd/internal/core"
	"qayd/internal/sheets/memory"
	"qayd/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "qayd.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ledger := memory.New()
	return NewSyncWorker(repo, ledger, 10), repo, ledger
}

func TestHandleMessageSync(t *testing.T) {
	ctx := context.Background()
	w, repo, ledger := newTestWorker(t)

	rec, err := core.NewExpenseRecord(80, core.Operation, "payment gateway", "", time.Now())
	if err != nil {
		t.Fatalf("NewExpenseRecord: %v", err)
	}
	if err := repo.CreateExpense(ctx, rec); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(amqp.KindExpense, rec.ID)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if got := ledger.Expenses(); len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("record not appended to remote ledger: %+v", got)
	}

	pending, err := repo.GetPendingSync(ctx, "expenses", 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("record still pending after sync: %+v", pending)
	}
}

func TestHandleMessageDelete(t *testing.T) {
	ctx := context.Background()
	w, repo, ledger := newTestWorker(t)

	rec, err := core.NewContractIncome(3000, "Advanced Tech Co", "", time.Now())
	if err != nil {
		t.Fatalf("NewContractIncome: %v", err)
	}
	if err := repo.CreateIncome(ctx, rec); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(amqp.KindIncome, rec.ID)); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewDeleteMessage(amqp.KindIncome, rec.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := ledger.Income(); len(got) != 0 {
		t.Fatalf("record not removed from remote ledger: %+v", got)
	}
}

func TestSyncSkipsVanishedRecord(t *testing.T) {
	ctx := context.Background()
	w, _, ledger := newTestWorker(t)

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(amqp.KindExpense, "ghost")); err != nil {
		t.Fatalf("expected vanished record to be skipped, got %v", err)
	}
	if got := ledger.Expenses(); len(got) != 0 {
		t.Fatalf("unexpected append: %+v", got)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	w, repo, ledger := newTestWorker(t)

	for i := 0; i < 3; i++ {
		rec, err := core.NewExpenseRecord(float64(10*(i+1)), core.Marketing, "social media ads", "", time.Now())
		if err != nil {
			t.Fatalf("NewExpenseRecord: %v", err)
		}
		if err := repo.CreateExpense(ctx, rec); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if got := ledger.Expenses(); len(got) != 3 {
		t.Fatalf("expected 3 records synced, got %d", len(got))
	}

	pending, err := repo.GetPendingSync(ctx, "expenses", 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("records still pending: %+v", pending)
	}
}
