package core

import (
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeReportFiltersAndSorts(t *testing.T) {
	expenses := []ExpenseRecord{
		expense(50, Marketing, "social media ads"),
		expense(100, Foundation, "platform development"),
	}
	expenses[0].Date = day(2026, 2, 10)
	expenses[1].Date = day(2026, 1, 5)

	income := []IncomeRecord{
		contractIncome(400, "alpha", day(2026, 3, 1)),
		contractIncome(700, "beta", day(2026, 1, 20)),
	}

	r := ComputeReport(expenses, income, day(2026, 1, 1), day(2026, 2, 28), ReportAll)

	if len(r.Expenses) != 2 || len(r.Income) != 1 {
		t.Fatalf("unexpected filtering: %d expenses, %d income", len(r.Expenses), len(r.Income))
	}
	// The report is a historical ledger: chronological, oldest first.
	if !r.Expenses[0].Date.Before(r.Expenses[1].Date) {
		t.Fatalf("expenses not chronological: %v, %v", r.Expenses[0].Date, r.Expenses[1].Date)
	}
	if r.TotalExpense != 150 || r.TotalIncome != 700 || r.Net != 550 {
		t.Fatalf("unexpected totals: expense %g income %g net %g", r.TotalExpense, r.TotalIncome, r.Net)
	}
}

func TestComputeReportRangeInclusivity(t *testing.T) {
	startDay := day(2026, 1, 10)
	endDay := day(2026, 1, 20)

	atStart := contractIncome(10, "a", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	beforeStart := contractIncome(20, "b", time.Date(2026, 1, 9, 23, 59, 59, 999_000_000, time.UTC))
	lateOnEnd := contractIncome(30, "c", time.Date(2026, 1, 20, 23, 59, 59, 998_000_000, time.UTC))
	pastEnd := contractIncome(40, "d", time.Date(2026, 1, 21, 0, 0, 0, 1_000_000, time.UTC))

	r := ComputeReport(nil, []IncomeRecord{atStart, beforeStart, lateOnEnd, pastEnd}, startDay, endDay, ReportIncomeOnly)

	if len(r.Income) != 2 {
		t.Fatalf("expected 2 records in range, got %d", len(r.Income))
	}
	if r.Income[0].Detail != "a" || r.Income[1].Detail != "c" {
		t.Fatalf("wrong records included: %v", r.Income)
	}
	if r.TotalIncome != 40 {
		t.Fatalf("expected total 40, got %g", r.TotalIncome)
	}
}

func TestComputeReportTimeOfDayIgnoredInBounds(t *testing.T) {
	// The caller's range carries arbitrary times of day; normalization
	// widens it to full calendar days.
	rec := contractIncome(10, "a", time.Date(2026, 5, 2, 23, 0, 0, 0, time.UTC))
	r := ComputeReport(nil, []IncomeRecord{rec}, time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC), time.Date(2026, 5, 2, 6, 0, 0, 0, time.UTC), ReportAll)
	if len(r.Income) != 1 {
		t.Fatalf("expected the record included, got %v", r.Income)
	}
}

func TestComputeReportDegenerateRange(t *testing.T) {
	income := []IncomeRecord{contractIncome(100, "a", day(2026, 6, 15))}
	expenses := []ExpenseRecord{expense(40, Operation, "API fees")}

	r := ComputeReport(expenses, income, day(2026, 7, 1), day(2026, 6, 1), ReportAll)

	if len(r.Expenses) != 0 || len(r.Income) != 0 {
		t.Fatalf("expected empty report, got %d/%d", len(r.Expenses), len(r.Income))
	}
	if r.TotalExpense != 0 || r.TotalIncome != 0 || r.Net != 0 {
		t.Fatalf("expected zero totals, got %+v", r)
	}
}

func TestComputeReportEmptyRange(t *testing.T) {
	r := ComputeReport(nil, nil, day(2026, 1, 1), day(2026, 12, 31), ReportAll)
	if len(r.Expenses) != 0 || len(r.Income) != 0 || r.Net != 0 {
		t.Fatalf("expected empty valid report, got %+v", r)
	}
}

func TestComputeReportIdempotent(t *testing.T) {
	expenses := []ExpenseRecord{expense(75, Foundation, "brand identity design")}
	income := []IncomeRecord{contractIncome(900, "alpha", testNow)}

	a := ComputeReport(expenses, income, day(2026, 1, 1), day(2026, 12, 31), ReportAll)
	b := ComputeReport(expenses, income, day(2026, 1, 1), day(2026, 12, 31), ReportAll)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("report not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestComputeReportTypeDoesNotChangeComputation(t *testing.T) {
	expenses := []ExpenseRecord{expense(75, Foundation, "brand identity design")}
	income := []IncomeRecord{contractIncome(900, "alpha", testNow)}

	for _, typ := range []ReportType{ReportAll, ReportIncomeOnly, ReportExpenseOnly} {
		r := ComputeReport(expenses, income, day(2026, 1, 1), day(2026, 12, 31), typ)
		if r.TotalExpense != 75 || r.TotalIncome != 900 || r.Net != 825 {
			t.Fatalf("type %s changed computed totals: %+v", typ, r)
		}
	}
}

func TestDefaultReportRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 5, 0, 0, time.UTC)
	start, end := DefaultReportRange(now)
	if !start.Equal(day(2026, 1, 1)) {
		t.Fatalf("expected Jan 1, got %v", start)
	}
	if end.Year() != 2026 || end.Month() != 8 || end.Day() != 29 || end.Hour() != 23 {
		t.Fatalf("expected end of today, got %v", end)
	}
}
