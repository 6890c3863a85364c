package http

import (
	"net/http"

	"qayd/internal/core"
)

// planOption is what the subscription plan selector renders: picking a
// plan fixes the amount, the user never types it.
type planOption struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

func planOptions() []planOption {
	labels := map[core.SubscriptionPlan]string{
		core.PlanMonthly:    "Monthly",
		core.PlanSemiAnnual: "Semi-annual",
		core.PlanAnnual:     "Annual",
	}
	opts := make([]planOption, 0, len(core.SubscriptionPlans))
	for _, p := range core.SubscriptionPlans {
		price, _ := core.PlanPrice(p)
		opts = append(opts, planOption{
			Value: string(p),
			Label: labels[p],
			Price: price,
		})
	}
	return opts
}

type categoryOption struct {
	Value         string
	Subcategories []string
}

func categoryOptions() []categoryOption {
	opts := make([]categoryOption, 0, len(core.MainCategories))
	for _, c := range core.MainCategories {
		opts = append(opts, categoryOption{
			Value:         string(c),
			Subcategories: core.Subcategories[c],
		})
	}
	return opts
}

type dashboardData struct {
	Expenses       []core.ExpenseRecord
	Income         []core.IncomeRecord
	ExpenseSummary core.Summary
	IncomeSummary  core.Summary
	Categories     []categoryOption
	Plans          []planOption
	Error          string
}

// handleDashboard renders the main page: both ledgers newest first, the
// derived summaries, and the entry forms.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	expenses, err := s.service.ListExpenses(ctx)
	if err != nil {
		s.requestLog(r).ErrorContext(ctx, "Failed to list expenses", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	income, err := s.service.ListIncome(ctx)
	if err != nil {
		s.requestLog(r).ErrorContext(ctx, "Failed to list income", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Expenses:       expenses,
		Income:         income,
		ExpenseSummary: core.ExpenseSummary(expenses),
		IncomeSummary:  core.IncomeSummary(income),
		Categories:     categoryOptions(),
		Plans:          planOptions(),
		Error:          r.URL.Query().Get("error"),
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard", data); err != nil {
		s.requestLog(r).ErrorContext(ctx, "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
