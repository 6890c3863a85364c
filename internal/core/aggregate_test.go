package core

import (
	"testing"
	"time"
)

func expense(amount float64, main MainCategory, sub string) ExpenseRecord {
	return ExpenseRecord{
		ID:           NewRecordID(),
		Amount:       amount,
		MainCategory: main,
		SubCategory:  sub,
		Date:         testNow,
	}
}

func contractIncome(amount float64, detail string, date time.Time) IncomeRecord {
	return IncomeRecord{
		ID:     NewRecordID(),
		Amount: amount,
		Type:   Contract,
		Detail: detail,
		Date:   date,
	}
}

func expenseAmount(e ExpenseRecord) float64 { return e.Amount }

func TestTotalEmpty(t *testing.T) {
	if got := Total(nil, expenseAmount); got != 0 {
		t.Fatalf("expected 0, got %g", got)
	}
}

func TestSumByKeysSuppressesZeroSums(t *testing.T) {
	records := []ExpenseRecord{
		expense(100, Foundation, "platform development"),
		expense(200, Operation, "hosting and servers"),
		expense(0, Marketing, "social media ads"),
	}

	got := SumByKeys(records, MainCategories, func(e ExpenseRecord) MainCategory { return e.MainCategory }, expenseAmount)

	want := []KeyAmount{{"foundation", 100}, {"operation", 200}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if total := Total(records, expenseAmount); total != 300 {
		t.Fatalf("expected total 300, got %g", total)
	}
}

func TestSumByKeysConservation(t *testing.T) {
	// A record keyed outside the fixed enumeration is excluded from the
	// breakdown but still counts toward the total: nothing is lost or
	// double-counted across grouping.
	records := []ExpenseRecord{
		expense(100, Foundation, "platform development"),
		expense(40, MainCategory("rogue"), "misc"),
	}

	byKey := SumByKeys(records, MainCategories, func(e ExpenseRecord) MainCategory { return e.MainCategory }, expenseAmount)
	var grouped float64
	for _, ka := range byKey {
		grouped += ka.Amount
	}

	if total := Total(records, expenseAmount); total != grouped+40 {
		t.Fatalf("conservation broken: total %g, grouped %g + 40", total, grouped)
	}
}

func TestTopByKeyRankingAndTies(t *testing.T) {
	records := []IncomeRecord{
		contractIncome(30, "delta", testNow),
		contractIncome(50, "alpha", testNow),
		contractIncome(40, "beta", testNow),
		contractIncome(40, "gamma", testNow),
		contractIncome(10, "epsilon", testNow),
	}

	got := TopByKey(records, func(i IncomeRecord) string { return i.Detail }, func(i IncomeRecord) float64 { return i.Amount }, 3)

	// The two 40s keep their first-occurrence order: beta before gamma.
	want := []KeyAmount{{"alpha", 50}, {"beta", 40}, {"gamma", 40}}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTopByKeyBound(t *testing.T) {
	var records []IncomeRecord
	for i, amt := range []float64{5, 25, 15, 35, 45} {
		records = append(records, contractIncome(amt, string(rune('a'+i)), testNow))
	}

	got := TopByKey(records, func(i IncomeRecord) string { return i.Detail }, func(i IncomeRecord) float64 { return i.Amount }, 2)
	if len(got) != 2 {
		t.Fatalf("expected at most 2 entries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Amount > got[i-1].Amount {
			t.Fatalf("not sorted non-increasing: %v", got)
		}
	}
	// No excluded group outranks a returned one.
	if got[len(got)-1].Amount < 35 {
		t.Fatalf("a higher group was excluded: %v", got)
	}
}

func TestTopByKeyAccumulatesPerKey(t *testing.T) {
	records := []IncomeRecord{
		contractIncome(10, "alpha", testNow),
		contractIncome(5, "beta", testNow),
		contractIncome(20, "alpha", testNow),
	}

	got := TopByKey(records, func(i IncomeRecord) string { return i.Detail }, func(i IncomeRecord) float64 { return i.Amount }, TopGroups)
	if len(got) != 2 || got[0] != (KeyAmount{"alpha", 30}) {
		t.Fatalf("unexpected grouping: %v", got)
	}
}

func TestSummariesEmpty(t *testing.T) {
	es := ExpenseSummary(nil)
	if es.Total != 0 || len(es.ByKey) != 0 || len(es.TopDetails) != 0 {
		t.Fatalf("expected empty expense summary, got %+v", es)
	}
	is := IncomeSummary(nil)
	if is.Total != 0 || len(is.ByKey) != 0 || len(is.TopDetails) != 0 {
		t.Fatalf("expected empty income summary, got %+v", is)
	}
}

func TestIncomeSummaryByType(t *testing.T) {
	sub, err := NewSubscriptionIncome(PlanAnnual, "", testNow)
	if err != nil {
		t.Fatalf("subscription: %v", err)
	}
	records := []IncomeRecord{
		sub,
		contractIncome(1200, "Advanced Tech Co", testNow),
		contractIncome(300, "Advanced Tech Co", testNow),
	}

	s := IncomeSummary(records)
	if s.Total != 2299 {
		t.Fatalf("expected total 2299, got %g", s.Total)
	}
	want := []KeyAmount{{"subscription", 799}, {"contract", 1500}}
	if len(s.ByKey) != 2 || s.ByKey[0] != want[0] || s.ByKey[1] != want[1] {
		t.Fatalf("unexpected breakdown: %v", s.ByKey)
	}
	if s.TopDetails[0] != (KeyAmount{"Advanced Tech Co", 1500}) {
		t.Fatalf("unexpected ranking: %v", s.TopDetails)
	}
}
