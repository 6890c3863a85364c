package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qayd/internal/amqp"
	"qayd/internal/backend"
	"qayd/internal/core"
)

// RecordService orchestrates ledger operations: records are validated by
// the core constructors, written to the local store, and announced to the
// backup queue. The queue is best-effort; a publish failure never fails
// the request.
type RecordService struct {
	store      backend.Store
	amqpClient *amqp.Client
	now        func() time.Time
}

func NewRecordService(store backend.Store, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		store:      store,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// AddExpense validates and stores a new expense record.
func (s *RecordService) AddExpense(ctx context.Context, amount float64, main core.MainCategory, sub, note string) (core.ExpenseRecord, error) {
	rec, err := core.NewExpenseRecord(amount, main, sub, note, s.now())
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	if err := s.store.CreateExpense(ctx, rec); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, amqp.KindExpense, rec.ID)
	return rec, nil
}

// AddContractIncome validates and stores a contract income record.
func (s *RecordService) AddContractIncome(ctx context.Context, amount float64, detail, note string) (core.IncomeRecord, error) {
	rec, err := core.NewContractIncome(amount, detail, note, s.now())
	if err != nil {
		return core.IncomeRecord{}, err
	}

	if err := s.store.CreateIncome(ctx, rec); err != nil {
		return core.IncomeRecord{}, fmt.Errorf("save income: %w", err)
	}

	s.publishSync(ctx, amqp.KindIncome, rec.ID)
	return rec, nil
}

// AddSubscriptionIncome stores a subscription income record. The amount
// comes from the plan's price table, never from the caller.
func (s *RecordService) AddSubscriptionIncome(ctx context.Context, plan core.SubscriptionPlan, note string) (core.IncomeRecord, error) {
	rec, err := core.NewSubscriptionIncome(plan, note, s.now())
	if err != nil {
		return core.IncomeRecord{}, err
	}

	if err := s.store.CreateIncome(ctx, rec); err != nil {
		return core.IncomeRecord{}, fmt.Errorf("save income: %w", err)
	}

	s.publishSync(ctx, amqp.KindIncome, rec.ID)
	return rec, nil
}

// DeleteExpense removes an expense locally and announces the delete.
func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publishDelete(ctx, amqp.KindExpense, id)
	return nil
}

// DeleteIncome removes an income record locally and announces the delete.
func (s *RecordService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.publishDelete(ctx, amqp.KindIncome, id)
	return nil
}

func (s *RecordService) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.store.ListExpenses(ctx)
}

func (s *RecordService) ListIncome(ctx context.Context) ([]core.IncomeRecord, error) {
	return s.store.ListIncome(ctx)
}

// ExpenseSummary derives the dashboard statistics for the expense ledger.
func (s *RecordService) ExpenseSummary(ctx context.Context) (core.Summary, error) {
	records, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	return core.ExpenseSummary(records), nil
}

// IncomeSummary derives the dashboard statistics for the income ledger.
func (s *RecordService) IncomeSummary(ctx context.Context) (core.Summary, error) {
	records, err := s.store.ListIncome(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list income: %w", err)
	}
	return core.IncomeSummary(records), nil
}

// Report filters both ledgers against the requested range.
func (s *RecordService) Report(ctx context.Context, start, end time.Time, typ core.ReportType) (core.Report, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list expenses: %w", err)
	}
	income, err := s.store.ListIncome(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list income: %w", err)
	}
	return core.ComputeReport(expenses, income, start, end, typ), nil
}

func (s *RecordService) publishSync(ctx context.Context, kind amqp.RecordKind, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordSync(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"kind", kind, "id", id, "error", err)
	}
}

func (s *RecordService) publishDelete(ctx context.Context, kind amqp.RecordKind, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishRecordDelete(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"kind", kind, "id", id, "error", err)
	}
}

// Close closes the store and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
