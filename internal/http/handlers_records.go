package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"qayd/internal/core"
	"qayd/internal/log"
)

// redirectWithError sends the browser back to the dashboard with a short
// message the page renders in its error banner.
func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "invalid form submission")
		return
	}

	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		redirectWithError(w, r, "amount must be a number")
		return
	}
	main := core.MainCategory(sanitizeInput(r.FormValue("main_category")))
	sub := sanitizeInput(r.FormValue("sub_category"))
	note := sanitizeInput(r.FormValue("note"))

	rec, err := s.service.AddExpense(r.Context(), amount, main, sub, note)
	if err != nil {
		s.requestLog(r).WarnContext(r.Context(), "Expense rejected", log.FieldError, err.Error())
		redirectWithError(w, r, err.Error())
		return
	}

	s.requestLog(r).InfoContext(r.Context(), "Expense recorded",
		log.FieldRecordID, rec.ID,
		log.FieldAmount, rec.Amount,
		log.FieldMainCategory, string(rec.MainCategory))

	s.invalidateCaches()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "invalid form submission")
		return
	}

	note := sanitizeInput(r.FormValue("note"))

	var rec core.IncomeRecord
	var err error
	switch typ := core.IncomeType(sanitizeInput(r.FormValue("income_type"))); typ {
	case core.Subscription:
		plan := core.SubscriptionPlan(sanitizeInput(r.FormValue("plan")))
		rec, err = s.service.AddSubscriptionIncome(r.Context(), plan, note)
	case core.Contract:
		var amount float64
		amount, err = parseAmount(r.FormValue("amount"))
		if err != nil {
			redirectWithError(w, r, "amount must be a number")
			return
		}
		detail := sanitizeInput(r.FormValue("detail"))
		rec, err = s.service.AddContractIncome(r.Context(), amount, detail, note)
	default:
		err = core.ErrUnknownIncomeType
	}

	if err != nil {
		s.requestLog(r).WarnContext(r.Context(), "Income rejected", log.FieldError, err.Error())
		redirectWithError(w, r, err.Error())
		return
	}

	s.requestLog(r).InfoContext(r.Context(), "Income recorded",
		log.FieldRecordID, rec.ID,
		log.FieldAmount, rec.Amount,
		log.FieldIncomeType, string(rec.Type))

	s.invalidateCaches()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.service.DeleteExpense)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, s.service.DeleteIncome)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		redirectWithError(w, r, "missing record id")
		return
	}

	if err := del(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			// Already gone; nothing to undo.
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.requestLog(r).ErrorContext(r.Context(), "Delete failed",
			log.FieldRecordID, id, log.FieldError, err.Error())
		redirectWithError(w, r, "could not delete record")
		return
	}

	s.requestLog(r).InfoContext(r.Context(), "Record deleted", log.FieldRecordID, id)
	s.invalidateCaches()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
