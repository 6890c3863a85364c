package core

// TopGroups bounds the free-key ranking shown on the dashboard charts.
const TopGroups = 5

// Summary is the display-ready reduction of one record collection: the
// running total, the fixed-key breakdown feeding the pie chart, and the
// top free-key groups feeding the bar chart.
type Summary struct {
	Total      float64     `json:"total"`
	ByKey      []KeyAmount `json:"byKey"`
	TopDetails []KeyAmount `json:"topDetails"`
}

// ExpenseSummary reduces an expense snapshot: breakdown by main category,
// ranking by sub category.
func ExpenseSummary(records []ExpenseRecord) Summary {
	amount := func(e ExpenseRecord) float64 { return e.Amount }
	return Summary{
		Total:      Total(records, amount),
		ByKey:      SumByKeys(records, MainCategories, func(e ExpenseRecord) MainCategory { return e.MainCategory }, amount),
		TopDetails: TopByKey(records, func(e ExpenseRecord) string { return e.SubCategory }, amount, TopGroups),
	}
}

// IncomeSummary reduces an income snapshot: breakdown by income type,
// ranking by detail (plan name or contract name).
func IncomeSummary(records []IncomeRecord) Summary {
	amount := func(i IncomeRecord) float64 { return i.Amount }
	return Summary{
		Total:      Total(records, amount),
		ByKey:      SumByKeys(records, IncomeTypes, func(i IncomeRecord) IncomeType { return i.Type }, amount),
		TopDetails: TopByKey(records, func(i IncomeRecord) string { return i.Detail }, amount, TopGroups),
	}
}
