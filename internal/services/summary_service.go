package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SummaryService derives aggregate numbers from a user's transactions.
type SummaryService struct {
	storage *storage.SQLiteRepository

	// now is swappable in tests to pin the period window.
	now func() time.Time
}

func NewSummaryService(storage *storage.SQLiteRepository) *SummaryService {
	return &SummaryService{
		storage: storage,
		now:     time.Now,
	}
}

// Balance sums income minus expenses over the user's entire history,
// independent of any listing filter.
func (s *SummaryService) Balance(ctx context.Context, userID int64) (core.Money, error) {
	cents, err := s.storage.Balance(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// PeriodSummary aggregates the trailing window of the period: independent
// income and expense totals plus an expense-only category breakdown.
func (s *SummaryService) PeriodSummary(ctx context.Context, userID int64, period core.Period) (core.PeriodSummary, error) {
	since := period.WindowStart(s.now())

	income, expenses, err := s.storage.PeriodTotals(ctx, userID, since)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("period totals: %w", err)
	}

	byCategory, err := s.storage.ExpenseCategorySums(ctx, userID, since)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("category breakdown: %w", err)
	}

	return core.PeriodSummary{
		Period:     period,
		Income:     core.Money{Cents: income},
		Expenses:   core.Money{Cents: expenses},
		ByCategory: byCategory,
	}, nil
}
