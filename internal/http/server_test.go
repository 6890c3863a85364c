package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"qayd/internal/core"
	"qayd/internal/services"
	"qayd/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	service := services.NewRecordService(store, nil)
	t.Cleanup(func() { _ = service.Close() })

	return NewServer(":0", service, nil)
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateExpenseRedirects(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/expenses", url.Values{
		"amount":        {"150.50"},
		"main_category": {"operation"},
		"sub_category":  {"hosting and servers"},
		"note":          {"march invoice"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	api := get(t, srv, "/api/expenses")
	if api.Code != http.StatusOK {
		t.Fatalf("list expenses: %d", api.Code)
	}
	var records []core.ExpenseRecord
	if err := json.NewDecoder(api.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Amount != 150.50 || records[0].MainCategory != core.Operation {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestCreateExpenseValidationRedirectsWithError(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/expenses", url.Values{
		"amount":        {"50"},
		"main_category": {"gambling"},
		"sub_category":  {"lottery"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if loc.Query().Get("error") == "" {
		t.Fatal("expected error message in redirect")
	}

	api := get(t, srv, "/api/expenses")
	var records []core.ExpenseRecord
	_ = json.NewDecoder(api.Body).Decode(&records)
	if len(records) != 0 {
		t.Fatalf("invalid record must not be stored, got %d", len(records))
	}
}

func TestSubscriptionIncomeUsesPlanPrice(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/income", url.Values{
		"income_type": {"subscription"},
		"plan":        {"annual"},
		"amount":      {"1"}, // ignored for subscriptions
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	api := get(t, srv, "/api/income")
	var records []core.IncomeRecord
	if err := json.NewDecoder(api.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Amount != 799 {
		t.Fatalf("annual plan must cost 799, got %g", records[0].Amount)
	}
	if records[0].Detail != "annual" {
		t.Fatalf("detail must carry the plan, got %q", records[0].Detail)
	}
}

func TestDeleteIncomeRemovesRecord(t *testing.T) {
	srv := newTestServer(t)

	postForm(t, srv, "/income", url.Values{
		"income_type": {"contract"},
		"amount":      {"5000"},
		"detail":      {"acme retainer"},
	})

	api := get(t, srv, "/api/income")
	var records []core.IncomeRecord
	if err := json.NewDecoder(api.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := postForm(t, srv, "/income/"+records[0].ID+"/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	api = get(t, srv, "/api/income")
	records = nil
	_ = json.NewDecoder(api.Body).Decode(&records)
	if len(records) != 0 {
		t.Fatalf("expected empty ledger after delete, got %d", len(records))
	}
}

func TestDeleteMissingRecordStillRedirectsHome(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/expenses/nope/delete", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("deleting a missing record should not surface an error, got %q", loc)
	}
}

func TestSummaryEndpointReflectsWrites(t *testing.T) {
	srv := newTestServer(t)

	readTotal := func() float64 {
		api := get(t, srv, "/api/summary/expenses")
		if api.Code != http.StatusOK {
			t.Fatalf("summary: %d", api.Code)
		}
		var s core.Summary
		if err := json.NewDecoder(api.Body).Decode(&s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return s.Total
	}

	if total := readTotal(); total != 0 {
		t.Fatalf("expected empty summary, got %g", total)
	}

	postForm(t, srv, "/expenses", url.Values{
		"amount":        {"100"},
		"main_category": {"marketing"},
		"sub_category":  {"social media ads"},
	})

	// The write must purge the cached summary.
	if total := readTotal(); total != 100 {
		t.Fatalf("expected total 100 after write, got %g", total)
	}
}

func TestPlansEndpoint(t *testing.T) {
	srv := newTestServer(t)

	api := get(t, srv, "/api/plans")
	if api.Code != http.StatusOK {
		t.Fatalf("plans: %d", api.Code)
	}
	var plans []planOption
	if err := json.NewDecoder(api.Body).Decode(&plans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	want := map[string]float64{"monthly": 99, "semi_annual": 499, "annual": 799}
	for _, p := range plans {
		if want[p.Value] != p.Price {
			t.Fatalf("plan %s: expected %g, got %g", p.Value, want[p.Value], p.Price)
		}
	}
}

func TestReportAPIFiltersByRange(t *testing.T) {
	srv := newTestServer(t)

	postForm(t, srv, "/expenses", url.Values{
		"amount":        {"40"},
		"main_category": {"operation"},
		"sub_category":  {"API fees"},
	})
	postForm(t, srv, "/income", url.Values{
		"income_type": {"subscription"},
		"plan":        {"monthly"},
	})

	// Everything was recorded today, so the default range includes it.
	api := get(t, srv, "/api/report")
	if api.Code != http.StatusOK {
		t.Fatalf("report: %d", api.Code)
	}
	var report core.Report
	if err := json.NewDecoder(api.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.TotalExpense != 40 || report.TotalIncome != 99 {
		t.Fatalf("unexpected totals: expense %g income %g", report.TotalExpense, report.TotalIncome)
	}
	if report.Net != 59 {
		t.Fatalf("expected net 59, got %g", report.Net)
	}

	// A range in the distant past excludes everything.
	api = get(t, srv, "/api/report?start=2000-01-01&end=2000-12-31")
	report = core.Report{}
	if err := json.NewDecoder(api.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Expenses) != 0 || len(report.Income) != 0 {
		t.Fatalf("expected empty report for past range")
	}
}

func TestReportAPIRejectsBadParams(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/report?start=not-a-date",
		"/api/report?end=31-12-2026",
		"/api/report?type=everything",
	} {
		if rec := get(t, srv, path); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestDashboardRenders(t *testing.T) {
	srv := newTestServer(t)

	postForm(t, srv, "/expenses", url.Values{
		"amount":        {"75"},
		"main_category": {"foundation"},
		"sub_category":  {"platform development"},
	})

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"QAR 75.00", "platform development", "Add Expense", "Add Income"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestReportPagesRender(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/report", "/report/print"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestReportPrintRespectsScriptCSP(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/report/print")
	if rec.Code != http.StatusOK {
		t.Fatalf("report print: %d", rec.Code)
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "script-src 'self'") {
		t.Fatalf("expected self-only script-src, got %q", csp)
	}

	// Inline handlers would be blocked by that policy.
	body := rec.Body.String()
	if strings.Contains(body, "onclick=") {
		t.Fatal("print page carries an inline event handler")
	}
	if !strings.Contains(body, "/static/print.js") {
		t.Fatal("print page does not load its script")
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t)

	if rec := get(t, srv, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := get(t, srv, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newTestServer(t)

	if rec := get(t, srv, "/definitely-not-here"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
