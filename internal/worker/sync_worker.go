package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"qayd/internal/amqp"
	"qayd/internal/core"
	"qayd/internal/sheets"
	"qayd/internal/storage"
)

// SyncWorker copies ledger records from SQLite to the remote spreadsheet.
// It is driven by AMQP messages, with a periodic pending-records sweep as a
// backup in case messages are lost.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.Ledger
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger sheets.Ledger, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one queue message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.RecordMessage) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.handleSync(ctx, msg)
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg)
	}
	return fmt.Errorf("unknown message op %q", msg.Op)
}

func (w *SyncWorker) handleSync(ctx context.Context, msg *amqp.RecordMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "kind", msg.Kind, "id", msg.ID)
	return w.syncRecord(ctx, msg.Kind, msg.ID)
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.RecordMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "kind", msg.Kind, "id", msg.ID)

	if err := w.ledger.DeleteRecord(ctx, string(msg.Kind), msg.ID); err != nil {
		return fmt.Errorf("delete record from remote ledger: %w", err)
	}

	slog.InfoContext(ctx, "Deleted record from remote ledger", "kind", msg.Kind, "id", msg.ID)
	return nil
}

// syncRecord fetches the record from SQLite and appends it to the remote
// ledger. A record deleted before its sync message arrives is skipped and
// marked synced so it never clogs the pending queue.
func (w *SyncWorker) syncRecord(ctx context.Context, kind amqp.RecordKind, id string) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	var appendErr error
	switch kind {
	case amqp.KindExpense:
		var rec core.ExpenseRecord
		rec, err = w.storage.GetExpense(ctx, id)
		if err == nil {
			_, appendErr = w.ledger.AppendExpense(ctx, rec)
		}
	case amqp.KindIncome:
		var rec core.IncomeRecord
		rec, err = w.storage.GetIncome(ctx, id)
		if err == nil {
			_, appendErr = w.ledger.AppendIncome(ctx, rec)
		}
	}

	if errors.Is(err, core.ErrRecordNotFound) {
		slog.WarnContext(ctx, "Record vanished before sync, skipping", "kind", kind, "id", id)
		return w.storage.MarkSynced(ctx, table, id)
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	if appendErr != nil {
		if markErr := w.storage.MarkSyncError(ctx, table, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to remote ledger: %w", appendErr)
	}

	if err := w.storage.MarkSynced(ctx, table, id); err != nil {
		// The sync itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced record to remote ledger", "kind", kind, "id", id)
	return nil
}

// ProcessPending sweeps records that never got a queue message through.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	for _, kind := range []amqp.RecordKind{amqp.KindExpense, amqp.KindIncome} {
		if err := w.processPendingKind(ctx, kind, w.batchSize); err != nil {
			return err
		}
	}
	return nil
}

// StartupSyncCheck recovers records left pending by missed messages or
// worker downtime. Runs with a larger batch than the periodic sweep.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	for _, kind := range []amqp.RecordKind{amqp.KindExpense, amqp.KindIncome} {
		if err := w.processPendingKind(ctx, kind, w.batchSize*5); err != nil {
			return err
		}
	}
	return nil
}

func (w *SyncWorker) processPendingKind(ctx context.Context, kind amqp.RecordKind, batch int) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	pending, err := w.storage.GetPendingSync(ctx, table, batch)
	if err != nil {
		return fmt.Errorf("get pending %s records: %w", kind, err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "kind", kind, "count", len(pending))

	synced, failed := 0, 0
	for _, p := range pending {
		if err := w.syncRecord(ctx, kind, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending record",
				"kind", kind, "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Pending sweep completed",
		"kind", kind, "total", len(pending), "synced", synced, "errors", failed)
	return nil
}

func tableForKind(kind amqp.RecordKind) (string, error) {
	switch kind {
	case amqp.KindExpense:
		return "expenses", nil
	case amqp.KindIncome:
		return "income", nil
	}
	return "", fmt.Errorf("unknown record kind %q", kind)
}
