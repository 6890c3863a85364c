package core

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func TestNewExpenseRecord(t *testing.T) {
	rec, err := NewExpenseRecord(150, Operation, "hosting and servers", "march invoice", testNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if !rec.Date.Equal(testNow) {
		t.Fatalf("expected date %v, got %v", testNow, rec.Date)
	}

	cases := []struct {
		name   string
		amount float64
		main   MainCategory
		sub    string
		want   error
	}{
		{"negative amount", -1, Operation, "API fees", ErrInvalidAmount},
		{"unknown category", 10, MainCategory("travel"), "flight", ErrUnknownCategory},
		{"empty sub category", 10, Marketing, "  ", ErrEmptySubCategory},
	}
	for _, tc := range cases {
		if _, err := NewExpenseRecord(tc.amount, tc.main, tc.sub, "", testNow); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestNewSubscriptionIncomePriceIntegrity(t *testing.T) {
	cases := []struct {
		plan SubscriptionPlan
		want float64
	}{
		{PlanMonthly, 99},
		{PlanSemiAnnual, 499},
		{PlanAnnual, 799},
	}
	for _, tc := range cases {
		rec, err := NewSubscriptionIncome(tc.plan, "", testNow)
		if err != nil {
			t.Fatalf("plan %s: expected ok, got %v", tc.plan, err)
		}
		if rec.Amount != tc.want {
			t.Fatalf("plan %s: expected amount %g, got %g", tc.plan, tc.want, rec.Amount)
		}
		if rec.Type != Subscription || rec.Detail != string(tc.plan) {
			t.Fatalf("plan %s: unexpected record %+v", tc.plan, rec)
		}
	}

	if _, err := NewSubscriptionIncome(SubscriptionPlan("weekly"), "", testNow); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}

func TestNewContractIncome(t *testing.T) {
	rec, err := NewContractIncome(2500, "Advanced Tech Co", "Q1 retainer", testNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if rec.Type != Contract || rec.Amount != 2500 {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, err := NewContractIncome(100, "", "", testNow); !errors.Is(err, ErrEmptyDetail) {
		t.Fatalf("expected ErrEmptyDetail, got %v", err)
	}
	if _, err := NewContractIncome(-5, "x", "", testNow); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestIncomeValidateRejectsTamperedSubscriptionAmount(t *testing.T) {
	rec, err := NewSubscriptionIncome(PlanMonthly, "", testNow)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	rec.Amount = 1
	if err := rec.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestNewRecordIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewRecordID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
