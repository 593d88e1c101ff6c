package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	user, err := s.repo.GetUser(r.Context(), uid)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	recent, err := s.transactions.Recent(r.Context(), uid, 10)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	balance, err := s.summaries.Balance(r.Context(), uid)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Username     string            `json:"username"`
		Balance      string            `json:"balance"`
		Transactions []transactionJSON `json:"transactions"`
	}{
		Username:     user.Username,
		Balance:      balance.String(),
		Transactions: toTransactionsJSON(recent),
	})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	amount, category, date, kind, err := parseTransactionForm(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if _, err := s.transactions.Create(r.Context(), userID(r.Context()), amount, category, date, kind); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleTransactions lists the user's transactions with optional search and
// date-range filters, combinable independently. GET reads the query string,
// POST reads the form, mirroring the original's two entry points.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	list, err := s.transactions.List(r.Context(), userID(r.Context()), filter)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions []transactionJSON `json:"transactions"`
	}{Transactions: toTransactionsJSON(list)})
}

// parseFilter builds the filter value from search/start_date/end_date
// fields. A date range needs both bounds; a malformed or half-open range is
// a validation error rather than a silently ignored filter.
func parseFilter(r *http.Request) (core.Filter, error) {
	f := core.Filter{Search: sanitizeInput(r.Form.Get("search"))}

	start := r.Form.Get("start_date")
	end := r.Form.Get("end_date")
	if start == "" && end == "" {
		return f, nil
	}
	if start == "" || end == "" {
		return core.Filter{}, core.ErrInvalidDate
	}

	from, err := core.ParseDate(start)
	if err != nil {
		return core.Filter{}, err
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return core.Filter{}, err
	}
	f.From, f.To = from, to
	return f, nil
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}

	t, err := s.transactions.Get(r.Context(), id, userID(r.Context()))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}

	amount, category, date, kind, err := parseTransactionForm(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.transactions.Update(r.Context(), id, userID(r.Context()), amount, category, date, kind); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := transactionID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, core.ErrNotFound.Error())
		return
	}

	if err := s.transactions.Delete(r.Context(), id, userID(r.Context())); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func transactionID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
