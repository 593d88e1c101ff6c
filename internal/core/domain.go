package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateFormat is the calendar date layout used everywhere: forms, storage, JSON.
const DateFormat = "2006-01-02"

type (
	// Kind classifies a transaction as money coming in or going out.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID        int64
		Username  string
		CreatedAt time.Time
	}

	// Transaction is a single income or expense record owned by one user.
	// Amount is a positive magnitude; Kind carries the sign.
	Transaction struct {
		ID       int64
		UserID   int64
		Amount   Money
		Category string
		Date     Date
		Kind     Kind
	}
)

var (
	ErrValidation = errors.New("invalid input")

	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidKind   = fmt.Errorf("%w: kind must be income or expense", ErrValidation)
	ErrEmptyCategory = fmt.Errorf("%w: empty category", ErrValidation)
	ErrEmptyUsername = fmt.Errorf("%w: empty username", ErrValidation)
	ErrEmptyPassword = fmt.Errorf("%w: empty password", ErrValidation)

	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrNotFound           = errors.New("transaction not found")
	ErrForbidden          = errors.New("transaction owned by another user")
)

// ParseKind validates a kind label. Only the two enumerated values are accepted.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Income, Expense:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	return nil
}

// SignedCents returns the amount with the sign implied by the kind:
// positive for income, negative for expense.
func (t Transaction) SignedCents() int64 {
	if t.Kind == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}
