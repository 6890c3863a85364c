package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"qayd/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the ledger backup pipeline. A record starts pending,
// moves to synced once the worker has written it to the remote ledger,
// and to error after a failed attempt so the startup check retries it.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// PendingRecord is the minimal shape the sync queue needs.
type PendingRecord struct {
	ID        string
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, rec core.ExpenseRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, amount, main_category, sub_category, recorded_at, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Amount, string(rec.MainCategory), rec.SubCategory,
		rec.Date.UTC().Format(time.RFC3339Nano), rec.Note)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", rec.ID,
		"amount", rec.Amount,
		"main_category", rec.MainCategory)
	return nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, rec core.IncomeRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO income (id, amount, income_type, detail, recorded_at, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Amount, string(rec.Type), rec.Detail,
		rec.Date.UTC().Format(time.RFC3339Nano), rec.Note)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", rec.ID,
		"amount", rec.Amount,
		"type", rec.Type)
	return nil
}

// DeleteExpense soft-deletes so the worker can still propagate the removal
// to the remote ledger afterwards.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.softDelete(ctx, "expenses", id)
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	return r.softDelete(ctx, "income", id)
}

func (r *SQLiteRepository) softDelete(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, table),
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}

	slog.InfoContext(ctx, "Record deleted", "table", table, "id", id)
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, main_category, sub_category, recorded_at, note
		FROM expenses
		WHERE deleted_at IS NULL
		ORDER BY recorded_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	records := make([]core.ExpenseRecord, 0)
	for rows.Next() {
		var rec core.ExpenseRecord
		var main, recordedAt string
		if err := rows.Scan(&rec.ID, &rec.Amount, &main, &rec.SubCategory, &recordedAt, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		rec.MainCategory = core.MainCategory(main)
		if rec.Date, err = parseStoredTime(recordedAt); err != nil {
			return nil, fmt.Errorf("expense %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) ListIncome(ctx context.Context) ([]core.IncomeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, income_type, detail, recorded_at, note
		FROM income
		WHERE deleted_at IS NULL
		ORDER BY recorded_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list income: %w", err)
	}
	defer rows.Close()

	records := make([]core.IncomeRecord, 0)
	for rows.Next() {
		var rec core.IncomeRecord
		var typ, recordedAt string
		if err := rows.Scan(&rec.ID, &rec.Amount, &typ, &rec.Detail, &recordedAt, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		rec.Type = core.IncomeType(typ)
		if rec.Date, err = parseStoredTime(recordedAt); err != nil {
			return nil, fmt.Errorf("income %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetExpense fetches one expense by id, including soft-deleted rows so the
// worker can read a record it is about to remove from the remote ledger.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.ExpenseRecord, error) {
	var rec core.ExpenseRecord
	var main, recordedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, amount, main_category, sub_category, recorded_at, note
		FROM expenses WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Amount, &main, &rec.SubCategory, &recordedAt, &rec.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrRecordNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	rec.MainCategory = core.MainCategory(main)
	if rec.Date, err = parseStoredTime(recordedAt); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("expense %s: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id string) (core.IncomeRecord, error) {
	var rec core.IncomeRecord
	var typ, recordedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, amount, income_type, detail, recorded_at, note
		FROM income WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Amount, &typ, &rec.Detail, &recordedAt, &rec.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IncomeRecord{}, core.ErrRecordNotFound
	}
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("get income: %w", err)
	}
	rec.Type = core.IncomeType(typ)
	if rec.Date, err = parseStoredTime(recordedAt); err != nil {
		return core.IncomeRecord{}, fmt.Errorf("income %s: %w", id, err)
	}
	return rec, nil
}

// GetPendingSync returns records that have not reached the remote ledger,
// oldest first so the backup preserves insertion order.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, table string, limit int) ([]PendingRecord, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, created_at FROM %s
		WHERE sync_status != ? AND deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?`, table), SyncSynced, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync from %s: %w", table, err)
	}
	defer rows.Close()

	var pending []PendingRecord
	for rows.Next() {
		var p PendingRecord
		var createdAt string
		if err := rows.Scan(&p.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		if p.CreatedAt, err = parseStoredTime(createdAt); err != nil {
			return nil, fmt.Errorf("pending record %s: %w", p.ID, err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, table, id string) error {
	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE id = ?`, table), SyncSynced, id); err != nil {
		return fmt.Errorf("mark synced in %s: %w", table, err)
	}
	slog.InfoContext(ctx, "Record marked as synced", "table", table, "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, table, id string) error {
	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE id = ?`, table), SyncError, id); err != nil {
		return fmt.Errorf("mark sync error in %s: %w", table, err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "table", table, "id", id)
	return nil
}

// parseStoredTime accepts both the nanosecond format we write and the plain
// RFC3339 sqlite defaults produce.
func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
