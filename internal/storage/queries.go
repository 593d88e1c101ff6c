package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// User is the persisted user row. PasswordHash never leaves the storage and
// auth layers.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

const createUser = `
INSERT INTO users (username, password_hash) VALUES (?, ?)`

func (q *Queries) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := q.db.ExecContext(ctx, createUser, username, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getUserByUsername = `
SELECT id, username, password_hash FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByUsername, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	return u, err
}

const getUserByID = `
SELECT id, username FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx, getUserByID, id).Scan(&u.ID, &u.Username)
	return u, err
}

const insertTransaction = `
INSERT INTO transactions (user_id, amount_cents, category, date, kind)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertTransaction,
		t.UserID, t.Amount.Cents, t.Category, t.Date.String(), string(t.Kind))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getTransaction = `
SELECT id, user_id, amount_cents, category, date, kind FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	return scanTransaction(row.Scan)
}

const updateTransaction = `
UPDATE transactions SET amount_cents = ?, category = ?, date = ?, kind = ?
WHERE id = ?`

// UpdateTransaction overwrites the four mutable fields. Identity and owner
// are immutable after creation.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		t.Amount.Cents, t.Category, t.Date.String(), string(t.Kind), t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest date first. Equal dates break ties by descending id, so the most
// recently inserted row wins.
//
// The search term is a plain substring match via instr, over both the
// category and the kind label.
func (q *Queries) ListTransactions(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, amount_cents, category, date, kind FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if f.HasSearch() {
		query += ` AND (instr(category, ?) > 0 OR instr(kind, ?) > 0)`
		args = append(args, f.Search, f.Search)
	}
	if f.HasDateRange() {
		query += ` AND date BETWEEN ? AND ?`
		args = append(args, f.From.String(), f.To.String())
	}
	query += ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const balance = `
SELECT COALESCE(SUM(CASE kind WHEN 'income' THEN amount_cents ELSE -amount_cents END), 0)
FROM transactions WHERE user_id = ?`

// Balance sums income minus expenses over the user's whole history.
func (q *Queries) Balance(ctx context.Context, userID int64) (int64, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx, balance, userID).Scan(&cents)
	return cents, err
}

const periodTotals = `
SELECT
    COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0)
FROM transactions WHERE user_id = ? AND date >= ?`

// PeriodTotals sums income and expenses independently for transactions dated
// on or after since.
func (q *Queries) PeriodTotals(ctx context.Context, userID int64, since core.Date) (income, expenses int64, err error) {
	err = q.db.QueryRowContext(ctx, periodTotals, userID, since.String()).
		Scan(&income, &expenses)
	return income, expenses, err
}

const expenseCategorySums = `
SELECT category, SUM(amount_cents)
FROM transactions
WHERE user_id = ? AND kind = 'expense' AND date >= ?
GROUP BY category
ORDER BY SUM(amount_cents) DESC, category`

// ExpenseCategorySums breaks down expenses by category for transactions
// dated on or after since. Income is never broken down; categories with no
// expense in the window are absent.
func (q *Queries) ExpenseCategorySums(ctx context.Context, userID int64, since core.Date) ([]core.CategoryAmount, error) {
	rows, err := q.db.QueryContext(ctx, expenseCategorySums, userID, since.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, err
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

func scanTransaction(scan func(dest ...any) error) (core.Transaction, error) {
	var (
		t    core.Transaction
		date string
		kind string
	)
	if err := scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Category, &date, &kind); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = d
	t.Kind = core.Kind(kind)
	return t, nil
}
