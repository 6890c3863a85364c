package core

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MainCategory is the closed set of top-level expense categories.
type MainCategory string

const (
	Foundation MainCategory = "foundation"
	Operation  MainCategory = "operation"
	Marketing  MainCategory = "marketing"
)

// MainCategories is the fixed enumeration order used by breakdowns.
var MainCategories = []MainCategory{Foundation, Operation, Marketing}

// IncomeType is the closed set of income sources.
type IncomeType string

const (
	Subscription IncomeType = "subscription"
	Contract     IncomeType = "contract"
)

// IncomeTypes is the fixed enumeration order used by breakdowns.
var IncomeTypes = []IncomeType{Subscription, Contract}

// SubscriptionPlan is the closed set of subscription durations.
type SubscriptionPlan string

const (
	PlanMonthly    SubscriptionPlan = "monthly"
	PlanSemiAnnual SubscriptionPlan = "semi_annual"
	PlanAnnual     SubscriptionPlan = "annual"
)

// SubscriptionPlans is the fixed display order used by forms.
var SubscriptionPlans = []SubscriptionPlan{PlanMonthly, PlanSemiAnnual, PlanAnnual}

// Subcategories maps each main category to its fixed list of sub items.
// Static configuration, not user-editable.
var Subcategories = map[MainCategory][]string{
	Foundation: {
		"payment gateway setup",
		"brand identity design",
		"platform development",
		"licensing and legal fees",
	},
	Operation: {
		"hosting and servers",
		"API fees",
		"payment gateway",
	},
	Marketing: {
		"influencer collaboration",
		"social media ads",
	},
}

// SubscriptionPrices fixes the amount of every subscription plan, in QAR.
// A persisted subscription record's amount must equal the table value for
// its plan at the time of creation.
var SubscriptionPrices = map[SubscriptionPlan]float64{
	PlanMonthly:    99,
	PlanSemiAnnual: 499,
	PlanAnnual:     799,
}

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnknownCategory   = errors.New("unknown main category")
	ErrEmptySubCategory  = errors.New("empty sub category")
	ErrUnknownIncomeType = errors.New("unknown income type")
	ErrUnknownPlan       = errors.New("unknown subscription plan")
	ErrEmptyDetail       = errors.New("empty income detail")
	ErrEmptyID           = errors.New("empty record id")
	ErrZeroDate          = errors.New("record date cannot be zero")
	ErrRecordNotFound    = errors.New("record not found")
)

// ExpenseRecord is one immutable expense event. Records are append-only:
// created once, removed only by explicit delete, never edited in place.
type ExpenseRecord struct {
	ID           string       `json:"id"`
	Amount       float64      `json:"amount"`
	MainCategory MainCategory `json:"mainCategory"`
	SubCategory  string       `json:"subCategory"`
	Date         time.Time    `json:"date"`
	Note         string       `json:"note,omitempty"`
}

// IncomeRecord is one immutable income event. Detail holds the plan name
// for subscriptions or the contract/entity name for contracts.
type IncomeRecord struct {
	ID     string     `json:"id"`
	Amount float64    `json:"amount"`
	Type   IncomeType `json:"type"`
	Detail string     `json:"detail"`
	Date   time.Time  `json:"date"`
	Note   string     `json:"note,omitempty"`
}

func (c MainCategory) Valid() bool {
	switch c {
	case Foundation, Operation, Marketing:
		return true
	}
	return false
}

func (t IncomeType) Valid() bool {
	switch t {
	case Subscription, Contract:
		return true
	}
	return false
}

// PlanPrice returns the fixed amount for a subscription plan.
func PlanPrice(p SubscriptionPlan) (float64, bool) {
	price, ok := SubscriptionPrices[p]
	return price, ok
}

// NewRecordID returns an opaque unique identifier for a new record.
func NewRecordID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("rec_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// NewExpenseRecord builds a validated expense record stamped at now.
func NewExpenseRecord(amount float64, main MainCategory, sub, note string, now time.Time) (ExpenseRecord, error) {
	rec := ExpenseRecord{
		ID:           NewRecordID(),
		Amount:       amount,
		MainCategory: main,
		SubCategory:  strings.TrimSpace(sub),
		Date:         now.UTC(),
		Note:         strings.TrimSpace(note),
	}
	if err := rec.Validate(); err != nil {
		return ExpenseRecord{}, err
	}
	return rec, nil
}

// NewContractIncome builds an income record for an external contract.
// The amount is freely entered; the detail names the contracting entity.
func NewContractIncome(amount float64, contract, note string, now time.Time) (IncomeRecord, error) {
	rec := IncomeRecord{
		ID:     NewRecordID(),
		Amount: amount,
		Type:   Contract,
		Detail: strings.TrimSpace(contract),
		Date:   now.UTC(),
		Note:   strings.TrimSpace(note),
	}
	if err := rec.Validate(); err != nil {
		return IncomeRecord{}, err
	}
	return rec, nil
}

// NewSubscriptionIncome builds an income record for a subscription plan.
// The amount always comes from the price table; caller input never reaches
// the stored amount.
func NewSubscriptionIncome(plan SubscriptionPlan, note string, now time.Time) (IncomeRecord, error) {
	price, ok := PlanPrice(plan)
	if !ok {
		return IncomeRecord{}, ErrUnknownPlan
	}
	rec := IncomeRecord{
		ID:     NewRecordID(),
		Amount: price,
		Type:   Subscription,
		Detail: string(plan),
		Date:   now.UTC(),
		Note:   strings.TrimSpace(note),
	}
	if err := rec.Validate(); err != nil {
		return IncomeRecord{}, err
	}
	return rec, nil
}

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if !e.MainCategory.Valid() {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(e.SubCategory) == "" {
		return ErrEmptySubCategory
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (i IncomeRecord) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	if i.Amount < 0 {
		return ErrInvalidAmount
	}
	if !i.Type.Valid() {
		return ErrUnknownIncomeType
	}
	if strings.TrimSpace(i.Detail) == "" {
		return ErrEmptyDetail
	}
	if i.Type == Subscription {
		price, ok := PlanPrice(SubscriptionPlan(i.Detail))
		if !ok {
			return ErrUnknownPlan
		}
		if i.Amount != price {
			return fmt.Errorf("%w: plan %s must cost %g", ErrInvalidAmount, i.Detail, price)
		}
	}
	if i.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
