package http

import (
	"net/http"
	"time"

	"qayd/internal/core"
)

type reportPageData struct {
	Report core.Report
	Types  []core.ReportType
	Error  string
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, templateName string) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	start, end, typ, err := reportParams(r, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := reportCacheKey(start, end, typ)
	report, ok := s.reportCache.Get(key)
	if !ok {
		report, err = s.service.Report(r.Context(), start, end, typ)
		if err != nil {
			s.requestLog(r).ErrorContext(r.Context(), "Report computation failed", "error", err)
			http.Error(w, "failed to compute report", http.StatusInternalServerError)
			return
		}
		s.reportCache.Set(key, report)
	}

	data := reportPageData{
		Report: report,
		Types:  []core.ReportType{core.ReportAll, core.ReportIncomeOnly, core.ReportExpenseOnly},
	}
	if err := s.templates.ExecuteTemplate(w, templateName, data); err != nil {
		s.requestLog(r).ErrorContext(r.Context(), "Report template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleReportPage renders the interactive report screen with the range
// and type selectors.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, "report")
}

// handleReportPrint renders the same report laid out for printing.
func (s *Server) handleReportPrint(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, "report_print")
}
