package core

import "time"

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Period selects the trailing window for aggregate summaries.
type Period string

// ParsePeriod maps a period label to a known period. Anything other than
// "weekly" falls back to monthly, matching the dashboard's default.
func ParsePeriod(s string) Period {
	if Period(s) == Weekly {
		return Weekly
	}
	return Monthly
}

// Days returns the window length of the period.
func (p Period) Days() int {
	if p == Weekly {
		return 7
	}
	return 30
}

// WindowStart returns the first date included in the period window ending now.
func (p Period) WindowStart(now time.Time) Date {
	return Date{Time: now.AddDate(0, 0, -p.Days())}
}

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// PeriodSummary aggregates a user's transactions over a trailing window.
// ByCategory breaks down expenses only; income stays a single total.
type PeriodSummary struct {
	Period     Period
	Income     Money
	Expenses   Money
	ByCategory []CategoryAmount
}
