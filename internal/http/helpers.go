package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// renderError maps domain errors to the HTTP surface. An ownership mismatch
// deliberately carries no detail: the caller is bounced back to the list
// view without learning whether the transaction exists.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, core.ErrDuplicateUsername.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, core.ErrInvalidCredentials.Error())
	case errors.Is(err, core.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, core.ErrForbidden):
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionJSON is the wire shape of a transaction. Amounts are decimal
// strings; cents never reach the client raw.
type transactionJSON struct {
	ID       int64  `json:"id"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       t.ID,
		Amount:   t.Amount.String(),
		Category: t.Category,
		Date:     t.Date.String(),
		Kind:     string(t.Kind),
	}
}

func toTransactionsJSON(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(ts))
	for i, t := range ts {
		out[i] = toTransactionJSON(t)
	}
	return out
}

// parseTransactionForm reads the amount/category/date/kind fields shared by
// the add and update endpoints. Malformed input surfaces as a validation
// error instead of an unhandled parse failure.
func parseTransactionForm(r *http.Request) (amount core.Money, category string, date core.Date, kind core.Kind, err error) {
	if err = r.ParseForm(); err != nil {
		return core.Money{}, "", core.Date{}, "", core.ErrValidation
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		return core.Money{}, "", core.Date{}, "", err
	}

	category = sanitizeInput(r.Form.Get("category"))

	date, err = core.ParseDate(r.Form.Get("date"))
	if err != nil {
		return core.Money{}, "", core.Date{}, "", err
	}

	kindField := r.Form.Get("kind")
	if kindField == "" {
		// The original form posts this field as "type"
		kindField = r.Form.Get("type")
	}
	kind, err = core.ParseKind(kindField)
	if err != nil {
		return core.Money{}, "", core.Date{}, "", err
	}

	return core.Money{Cents: cents}, category, date, kind, nil
}
