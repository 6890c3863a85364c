package memory

import (
	"context"
	"testing"
	"time"

	"qayd/internal/core"
)

func TestStoreAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec, err := core.NewExpenseRecord(120, core.Foundation, "licensing and legal fees", "", time.Now())
	if err != nil {
		t.Fatalf("NewExpenseRecord: %v", err)
	}

	ref, err := s.AppendExpense(ctx, rec)
	if err != nil {
		t.Fatalf("AppendExpense: %v", err)
	}
	if ref == "" {
		t.Fatal("expected a row reference")
	}
	if got := s.Expenses(); len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("unexpected stored expenses: %+v", got)
	}

	if err := s.DeleteRecord(ctx, "expense", rec.ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if got := s.Expenses(); len(got) != 0 {
		t.Fatalf("expense not removed: %+v", got)
	}
	if got := s.Deleted(); len(got) != 1 || got[0] != "expense:"+rec.ID {
		t.Fatalf("delete not recorded: %v", got)
	}
}

func TestStoreRejectsInvalidRecord(t *testing.T) {
	s := New()
	if _, err := s.AppendExpense(context.Background(), core.ExpenseRecord{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestStoreRejectsUnknownKind(t *testing.T) {
	s := New()
	if err := s.DeleteRecord(context.Background(), "refund", "x"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
