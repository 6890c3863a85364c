package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"qayd/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListExpenses(r.Context())
	if err != nil {
		s.requestLog(r).ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeAPIError(w, statusForError(err), "failed to list expenses")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListIncome(r.Context())
	if err != nil {
		s.requestLog(r).ErrorContext(r.Context(), "Failed to list income", "error", err)
		writeAPIError(w, statusForError(err), "failed to list income")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	s.serveSummary(w, r, summaryCacheKeyExpenses, s.service.ExpenseSummary)
}

func (s *Server) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	s.serveSummary(w, r, summaryCacheKeyIncome, s.service.IncomeSummary)
}

func (s *Server) serveSummary(w http.ResponseWriter, r *http.Request, cacheKey string, compute func(ctx context.Context) (core.Summary, error)) {
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := compute(r.Context())
	if err != nil {
		s.requestLog(r).ErrorContext(r.Context(), "Summary computation failed", "error", err)
		writeAPIError(w, statusForError(err), "failed to compute summary")
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handlePlans exposes the fixed subscription price table so clients never
// hardcode amounts.
func (s *Server) handlePlans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, planOptions())
}

// reportParams reads start, end, and type from the query string, falling
// back to the year-to-date range and the combined report.
func reportParams(r *http.Request, now time.Time) (start, end time.Time, typ core.ReportType, err error) {
	q := r.URL.Query()

	start, end = core.DefaultReportRange(now)
	if v := q.Get("start"); v != "" {
		if start, err = parseDate(v); err != nil {
			return start, end, typ, fmt.Errorf("invalid start date %q", v)
		}
	}
	if v := q.Get("end"); v != "" {
		if end, err = parseDate(v); err != nil {
			return start, end, typ, fmt.Errorf("invalid end date %q", v)
		}
	}

	typ = core.ReportAll
	if v := q.Get("type"); v != "" {
		typ = core.ReportType(v)
		if !typ.Valid() {
			return start, end, typ, fmt.Errorf("invalid report type %q", v)
		}
	}
	return start, end, typ, nil
}

func reportCacheKey(start, end time.Time, typ core.ReportType) string {
	return fmt.Sprintf("report:%s:%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"), typ)
}

func (s *Server) handleReportAPI(w http.ResponseWriter, r *http.Request) {
	start, end, typ, err := reportParams(r, time.Now())
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := reportCacheKey(start, end, typ)
	if cached, ok := s.reportCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.service.Report(r.Context(), start, end, typ)
	if err != nil {
		s.requestLog(r).ErrorContext(r.Context(), "Report computation failed", "error", err)
		writeAPIError(w, statusForError(err), "failed to compute report")
		return
	}

	s.reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}
