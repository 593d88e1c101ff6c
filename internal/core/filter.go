package core

// Filter narrows a transaction listing. The zero value matches every
// transaction of the user. Fields combine independently with AND.
type Filter struct {
	// Search matches when it is a substring of the category or of the
	// kind label.
	Search string

	// From and To bound the date field inclusively. A range applies only
	// when both ends are set.
	From Date
	To   Date

	// Limit truncates the result when positive.
	Limit int
}

func (f Filter) HasSearch() bool {
	return f.Search != ""
}

func (f Filter) HasDateRange() bool {
	return !f.From.IsZero() && !f.To.IsZero()
}
