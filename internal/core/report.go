package core

import (
	"sort"
	"time"
)

// ReportType selects which sections the report renderer includes. It never
// changes what gets computed: all totals are derived for every report and
// the renderer decides presentation.
type ReportType string

const (
	ReportAll         ReportType = "all"
	ReportIncomeOnly  ReportType = "income"
	ReportExpenseOnly ReportType = "expense"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportAll, ReportIncomeOnly, ReportExpenseOnly:
		return true
	}
	return false
}

// Report is the self-consistent slice of data behind the printable report:
// both ledgers filtered to the range and sorted chronologically, plus the
// derived totals and net.
type Report struct {
	Type         ReportType      `json:"type"`
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Expenses     []ExpenseRecord `json:"expenses"`
	Income       []IncomeRecord  `json:"income"`
	TotalExpense float64         `json:"totalExpense"`
	TotalIncome  float64         `json:"totalIncome"`
	Net          float64         `json:"net"`
}

// DayStart normalizes t to 00:00:00.000 of its calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayEnd normalizes t to 23:59:59.999 of its calendar day.
func DayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}

// DefaultReportRange is January 1 of the current year through today. It is
// recomputed on every call; "today" drifts across sessions.
func DefaultReportRange(now time.Time) (start, end time.Time) {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), DayEnd(now)
}

// ComputeReport filters both ledgers to the inclusive calendar-day range
// [start, end], sorts them chronologically, and derives the totals. A
// start after end produces an empty, valid report. The input slices are
// never mutated.
func ComputeReport(expenses []ExpenseRecord, income []IncomeRecord, start, end time.Time, typ ReportType) Report {
	lo, hi := DayStart(start), DayEnd(end)
	inRange := func(d time.Time) bool {
		return !d.Before(lo) && !d.After(hi)
	}

	fe := make([]ExpenseRecord, 0)
	for _, e := range expenses {
		if inRange(e.Date) {
			fe = append(fe, e)
		}
	}
	sort.SliceStable(fe, func(i, j int) bool { return fe[i].Date.Before(fe[j].Date) })

	fi := make([]IncomeRecord, 0)
	for _, r := range income {
		if inRange(r.Date) {
			fi = append(fi, r)
		}
	}
	sort.SliceStable(fi, func(i, j int) bool { return fi[i].Date.Before(fi[j].Date) })

	totalExpense := Total(fe, func(e ExpenseRecord) float64 { return e.Amount })
	totalIncome := Total(fi, func(i IncomeRecord) float64 { return i.Amount })

	return Report{
		Type:         typ,
		Start:        lo,
		End:          hi,
		Expenses:     fe,
		Income:       fi,
		TotalExpense: totalExpense,
		TotalIncome:  totalIncome,
		Net:          totalIncome - totalExpense,
	}
}
