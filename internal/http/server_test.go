package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/auth"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type testApp struct {
	t   *testing.T
	srv *Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	sessions := session.NewManager(time.Hour)
	t.Cleanup(sessions.Close)

	srv := NewServer(
		":0",
		repo,
		auth.NewService(repo, bcrypt.MinCost),
		sessions,
		services.NewTransactionService(repo),
		services.NewSummaryService(repo),
		false,
	)
	t.Cleanup(func() { srv.rateLimiter.stop() })

	return &testApp{t: t, srv: srv}
}

func (a *testApp) do(method, path string, form url.Values, sessionToken string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionToken})
	}
	rr := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) register(username, password string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/register", url.Values{
		"username": {username},
		"password": {password},
	}, "")
}

// login registers nothing; it authenticates and returns the session token.
func (a *testApp) login(username, password string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {password},
	}, "")
	require.Equal(a.t, http.StatusSeeOther, rr.Code, "login should redirect: %s", rr.Body.String())
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c.Value
		}
	}
	a.t.Fatal("no session cookie set on login")
	return ""
}

func (a *testApp) signup(username, password string) string {
	a.t.Helper()
	rr := a.register(username, password)
	require.Equal(a.t, http.StatusSeeOther, rr.Code)
	return a.login(username, password)
}

func (a *testApp) addTransaction(token, amount, category, date, kind string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/add_transaction", url.Values{
		"amount":   {amount},
		"category": {category},
		"date":     {date},
		"kind":     {kind},
	}, token)
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

type transactionsResponse struct {
	Transactions []transactionJSON `json:"transactions"`
}

type dashboardResponse struct {
	Username     string            `json:"username"`
	Balance      string            `json:"balance"`
	Transactions []transactionJSON `json:"transactions"`
}

type summaryResponse struct {
	Period            string            `json:"period"`
	Income            string            `json:"income"`
	Expenses          string            `json:"expenses"`
	CategoryBreakdown map[string]string `json:"category_breakdown"`
}

func TestHealthAndIndex(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/healthz", "/readyz"} {
		rr := app.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	rr := app.register("alice", "s3cret")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	// Second registration with the same username is rejected
	rr = app.register("alice", "other")
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Wrong password does not reveal whether the user exists
	rr = app.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = app.do(http.MethodPost, "/login", url.Values{"username": {"ghost"}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := app.login("alice", "s3cret")

	rr = app.do(http.MethodGet, "/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decodeJSON[dashboardResponse](t, rr)
	assert.Equal(t, "alice", dash.Username)
	assert.Equal(t, "0.00", dash.Balance)

	// Logout clears the session; the token no longer resolves
	rr = app.do(http.MethodGet, "/logout", nil, token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = app.do(http.MethodGet, "/dashboard", nil, token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestUnauthenticatedRedirects(t *testing.T) {
	app := newTestApp(t)

	paths := []string{"/dashboard", "/transactions", "/summary", "/logout", "/delete_transaction/1"}
	for _, path := range paths {
		rr := app.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/login", rr.Header().Get("Location"), path)
	}

	rr := app.do(http.MethodGet, "/dashboard", nil, "bogus-token")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("alice", "s3cret")

	now := time.Now()
	day1 := now.AddDate(0, 0, -2).Format("2006-01-02")
	day2 := now.AddDate(0, 0, -1).Format("2006-01-02")

	rr := app.addTransaction(token, "100", "salary", day1, "income")
	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())
	rr = app.addTransaction(token, "40", "food", day2, "expense")
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(http.MethodGet, "/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decodeJSON[dashboardResponse](t, rr)
	assert.Equal(t, "60.00", dash.Balance)
	require.Len(t, dash.Transactions, 2)
	assert.Equal(t, "food", dash.Transactions[0].Category, "later date first")
	assert.Equal(t, "salary", dash.Transactions[1].Category)

	rr = app.do(http.MethodGet, "/summary?period=weekly", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decodeJSON[summaryResponse](t, rr)
	assert.Equal(t, "weekly", sum.Period)
	assert.Equal(t, "100.00", sum.Income)
	assert.Equal(t, "40.00", sum.Expenses)
	assert.Equal(t, map[string]string{"food": "40.00"}, sum.CategoryBreakdown)

	// Unrecognized periods fall back to monthly
	rr = app.do(http.MethodGet, "/summary?period=yearly", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "monthly", decodeJSON[summaryResponse](t, rr).Period)

	// Update the expense and verify the overwrite
	rr = app.do(http.MethodGet, "/transactions", nil, token)
	list := decodeJSON[transactionsResponse](t, rr)
	require.Len(t, list.Transactions, 2)
	foodID := list.Transactions[0].ID

	rr = app.do(http.MethodPost, "/update_transaction/"+itoa(foodID), url.Values{
		"amount":   {"45.50"},
		"category": {"groceries"},
		"date":     {day2},
		"kind":     {"expense"},
	}, token)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/transactions", rr.Header().Get("Location"))

	rr = app.do(http.MethodGet, "/update_transaction/"+itoa(foodID), nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeJSON[transactionJSON](t, rr)
	assert.Equal(t, "45.50", got.Amount)
	assert.Equal(t, "groceries", got.Category)

	// Delete it
	rr = app.do(http.MethodGet, "/delete_transaction/"+itoa(foodID), nil, token)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(http.MethodGet, "/transactions", nil, token)
	list = decodeJSON[transactionsResponse](t, rr)
	assert.Len(t, list.Transactions, 1)
}

func TestTransactionFilters(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("alice", "s3cret")

	rr := app.addTransaction(token, "100", "salary", "2024-01-01", "income")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	rr = app.addTransaction(token, "40", "food", "2024-01-02", "expense")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	rr = app.addTransaction(token, "15", "food", "2024-02-01", "expense")
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(http.MethodGet, "/transactions?search=food", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeJSON[transactionsResponse](t, rr).Transactions, 2)

	// The kind label matches too
	rr = app.do(http.MethodGet, "/transactions?search=income", nil, token)
	assert.Len(t, decodeJSON[transactionsResponse](t, rr).Transactions, 1)

	// POST form filters work like GET query filters
	rr = app.do(http.MethodPost, "/transactions", url.Values{
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-01-31"},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeJSON[transactionsResponse](t, rr)
	require.Len(t, list.Transactions, 2)
	assert.Equal(t, "2024-01-02", list.Transactions[0].Date)

	// Search and range combine
	rr = app.do(http.MethodPost, "/transactions", url.Values{
		"search":     {"food"},
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-01-31"},
	}, token)
	assert.Len(t, decodeJSON[transactionsResponse](t, rr).Transactions, 1)

	// Half-open or malformed ranges are validation errors
	rr = app.do(http.MethodPost, "/transactions", url.Values{"start_date": {"2024-01-01"}}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = app.do(http.MethodPost, "/transactions", url.Values{
		"start_date": {"first of june"}, "end_date": {"2024-01-31"},
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAddTransactionValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("alice", "s3cret")

	cases := []struct {
		name   string
		amount string
		date   string
		kind   string
	}{
		{"malformed amount", "abc", "2024-01-01", "income"},
		{"negative amount", "-5", "2024-01-01", "income"},
		{"malformed date", "10", "01/01/2024", "income"},
		{"unknown kind", "10", "2024-01-01", "transfer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := app.addTransaction(token, tc.amount, "cat", tc.date, tc.kind)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		})
	}

	// The original form's "type" field name still works
	rr := app.do(http.MethodPost, "/add_transaction", url.Values{
		"amount":   {"10"},
		"category": {"food"},
		"date":     {"2024-01-01"},
		"type":     {"expense"},
	}, token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestOwnershipMismatchIsSilent(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup("alice", "pw-alice")
	bob := app.signup("bob", "pw-bob")

	rr := app.addTransaction(alice, "40", "food", "2024-01-02", "expense")
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = app.do(http.MethodGet, "/transactions", nil, alice)
	id := decodeJSON[transactionsResponse](t, rr).Transactions[0].ID

	// Bob's attempts are denied with a plain redirect to the list view,
	// with no hint whether the transaction exists.
	rr = app.do(http.MethodGet, "/delete_transaction/"+itoa(id), nil, bob)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/transactions", rr.Header().Get("Location"))
	assert.Empty(t, rr.Body.String())

	rr = app.do(http.MethodPost, "/update_transaction/"+itoa(id), url.Values{
		"amount": {"1"}, "category": {"hijack"}, "date": {"2024-01-01"}, "kind": {"income"},
	}, bob)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/transactions", rr.Header().Get("Location"))

	// A genuinely unknown id is a 404 for its owner
	rr = app.do(http.MethodGet, "/delete_transaction/99999", nil, alice)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = app.do(http.MethodGet, "/delete_transaction/notanumber", nil, alice)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Alice's transaction is untouched
	rr = app.do(http.MethodGet, "/transactions", nil, alice)
	list := decodeJSON[transactionsResponse](t, rr)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, "food", list.Transactions[0].Category)
	assert.Equal(t, "40.00", list.Transactions[0].Amount)
}

func TestAuthenticatedUserSkipsRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	token := app.signup("alice", "s3cret")

	rr := app.do(http.MethodPost, "/register", url.Values{
		"username": {"other"}, "password": {"pw"},
	}, token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = app.do(http.MethodPost, "/login", url.Values{
		"username": {"alice"}, "password": {"s3cret"},
	}, token)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
