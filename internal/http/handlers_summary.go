package http

import (
	"net/http"

	"fintrack/internal/core"
)

// handleSummary aggregates the trailing period window. Unrecognized period
// values fall back to monthly.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := core.ParsePeriod(r.URL.Query().Get("period"))

	summary, err := s.summaries.PeriodSummary(r.Context(), userID(r.Context()), period)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	breakdown := make(map[string]string, len(summary.ByCategory))
	for _, ca := range summary.ByCategory {
		breakdown[ca.Name] = ca.Amount.String()
	}

	writeJSON(w, http.StatusOK, struct {
		Period            string            `json:"period"`
		Income            string            `json:"income"`
		Expenses          string            `json:"expenses"`
		CategoryBreakdown map[string]string `json:"category_breakdown"`
	}{
		Period:            string(summary.Period),
		Income:            summary.Income.String(),
		Expenses:          summary.Expenses.String(),
		CategoryBreakdown: breakdown,
	})
}
