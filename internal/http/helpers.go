package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qayd/internal/core"
	"qayd/internal/log"
)

// requestLog returns the logger the middleware chain attached to the
// request, falling back to the process default outside the chain.
func (s *Server) requestLog(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(dateStr))
}

// parseAmount parses a positive decimal amount from a form field.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// formatQAR renders an amount in Qatari riyal for the templates.
func formatQAR(amount float64) string {
	return fmt.Sprintf("QAR %.2f", amount)
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"qar":  formatQAR,
		"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
		"day":  func(t time.Time) string { return t.Format("2006-01-02") },
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// statusForError maps domain validation errors to 422 and missing records
// to 404; everything else is a 500.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrUnknownCategory,
		core.ErrEmptySubCategory,
		core.ErrUnknownIncomeType,
		core.ErrUnknownPlan,
		core.ErrEmptyDetail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrRecordNotFound)
}
