package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monexel/internal/api"
	"monexel/internal/core"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	routes   map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
		h, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, api.New(srv.URL, api.TokenFunc(func() string { return "tok" }))
}

func (fb *fakeBackend) handle(route string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (fb *fakeBackend) last() recorded {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func january() core.DateRange {
	return core.NewDateRange(core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
}

func TestIncome_ListByUser(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/income/getAllIncomeByUser/7", http.StatusOK,
		`[{"id":1,"source":"Salary","amount":3000,"date":"2025-01-05","description":"Jan"},
		  {"id":2,"source":"Bonus","amount":2000.00,"date":"2025-01-20","description":"Q4"}]`)

	got, err := NewIncome(client).ListByUser(context.Background(), 7, january())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Salary", got[0].Source)
	assert.True(t, core.Sum(got).Equal(core.NewMoney(5000)))
	assert.Equal(t, "endDate=2025-01-31&startDate=2025-01-01", fb.last().Query)
}

func TestExpenseAndBorrowedPaths(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/expenses/getAllExpensesByUser/3", http.StatusOK, `[]`)
	fb.handle("GET /api/borrowed-money/getAllBorrowedMoneyByUser/3", http.StatusOK, `null`)
	fb.handle("PUT /api/expenses/updateExpense/12", http.StatusOK, `{"id":12,"title":"Rent","amount":900,"categoryName":"Home"}`)
	fb.handle("DELETE /api/borrowed-money/deleteBorrowedMoney/4", http.StatusOK, `"Borrowed money deleted"`)

	ctx := context.Background()
	exp, err := NewExpense(client).ListByUser(ctx, 3, january())
	require.NoError(t, err)
	assert.Empty(t, exp)

	bor, err := NewBorrowed(client).ListByUser(ctx, 3, january())
	require.NoError(t, err)
	assert.NotNil(t, bor, "null body should still yield an empty list")

	updated, err := NewExpense(client).Update(ctx, 12, core.Expense{ID: 12, Title: "Rent", Amount: core.NewMoney(900), CategoryID: 5})
	require.NoError(t, err)
	assert.Equal(t, "Home", updated.CategoryName)
	assert.JSONEq(t, `{"id":12,"title":"Rent","amount":900,"date":null,"categoryId":5}`, fb.last().Body)

	require.NoError(t, NewBorrowed(client).Delete(ctx, 4))
	assert.Equal(t, http.MethodDelete, fb.last().Method)
}

func TestResource_PropagatesHTTPError(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("POST /api/income/addIncome", http.StatusBadRequest, `{"message":"Amount must be positive","status":"BAD_REQUEST"}`)

	_, err := NewIncome(client).Add(context.Background(), core.Income{Source: "x"})
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Amount must be positive", httpErr.Message)
}

func TestDashboard_SummaryFallsBackToZero(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/dashboard/getDashboardSummary/1", http.StatusInternalServerError, `boom`)

	got := NewDashboard(client, nil).Summary(context.Background(), 1, january())
	assert.True(t, got.IsZero())
	assert.Equal(t, 1, fb.count())
}

func TestDashboard_Summary(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/dashboard/getDashboardSummary/1", http.StatusOK,
		`{"totalIncome":5000,"totalExpense":2000,"totalBorrowed":0,"netBalance":3000}`)

	got := NewDashboard(client, nil).Summary(context.Background(), 1, january())
	assert.True(t, got.TotalIncome.Equal(core.NewMoney(5000)))
	assert.True(t, got.TotalExpense.Equal(core.NewMoney(2000)))
	assert.True(t, got.NetBalance.Equal(core.NewMoney(3000)))
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *fakePublisher) PublishMutation(_ context.Context, op string, kind core.Kind, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, op+":"+kind.String()+":"+strconv.FormatInt(id, 10))
	return p.err
}

func TestTransactions_ForDispatchesByKind(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("POST /api/borrowed-money/addBorrowedMoney", http.StatusOK, `{"id":31,"amount":100,"borrowedFrom":"Bank"}`)
	fb.handle("PUT /api/income/updateIncome/8", http.StatusOK, `{"id":8,"source":"Salary","amount":10}`)
	fb.handle("DELETE /api/expenses/deleteExpense/5", http.StatusNoContent, ``)

	pub := &fakePublisher{}
	txs := NewTransactions(client, nil).WithPublisher(pub)
	ctx := context.Background()

	m, err := txs.For(core.KindBorrowed)
	require.NoError(t, err)
	out, err := m.Add(ctx, core.Borrowed{Amount: core.NewMoney(100), BorrowedFrom: "Bank"})
	require.NoError(t, err)
	assert.Equal(t, int64(31), out.TransactionID())

	m, err = txs.For(core.KindIncome)
	require.NoError(t, err)
	_, err = m.Update(ctx, 8, core.Income{ID: 8, Source: "Salary", Amount: core.NewMoney(10)})
	require.NoError(t, err)
	assert.Equal(t, "/api/income/updateIncome/8", fb.last().Path)

	m, err = txs.For(core.KindExpense)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, 5))

	assert.Equal(t, []string{"create:borrowed:31", "update:income:8", "delete:expense:5"}, pub.events)
}

func TestTransactions_RejectsMismatchedPayload(t *testing.T) {
	fb, client := newFakeBackend(t)
	m, err := NewTransactions(client, nil).For(core.KindIncome)
	require.NoError(t, err)

	_, err = m.Add(context.Background(), core.Expense{Title: "oops"})
	assert.ErrorIs(t, err, core.ErrInvalidKind)
	assert.Zero(t, fb.count(), "no request may be sent for a mismatched payload")

	_, err = NewTransactions(client, nil).For("loan")
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestTransactions_PublishFailureDoesNotFailMutation(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("DELETE /api/income/deleteIncome/2", http.StatusOK, ``)

	txs := NewTransactions(client, nil).WithPublisher(&fakePublisher{err: errors.New("broker down")})
	m, _ := txs.For(core.KindIncome)
	assert.NoError(t, m.Delete(context.Background(), 2))
}

func TestTransactions_FailedMutationIsNotPublished(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("POST /api/income/addIncome", http.StatusInternalServerError, ``)

	pub := &fakePublisher{}
	m, _ := NewTransactions(client, nil).WithPublisher(pub).For(core.KindIncome)
	_, err := m.Add(context.Background(), core.Income{Source: "Salary", Amount: core.NewMoney(1)})
	require.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestCategory_Endpoints(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/categories/getAllCategories", http.StatusOK,
		`[{"id":1,"name":"Food","createdByUserId":null},{"id":2,"name":"Gym","createdByUserId":7}]`)
	fb.handle("GET /api/categories/getCustomCategoryByUser/7", http.StatusOK, `[{"id":2,"name":"Gym","createdByUserId":7}]`)
	fb.handle("POST /api/categories/addCategory", http.StatusOK, `{"id":3,"name":"Pets","createdByUserId":7}`)

	svc := NewCategory(client)
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].IsGlobal())

	custom, err := svc.ListCustom(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, custom, 1)

	u := core.UserID(7)
	created, err := svc.Add(ctx, core.Category{Name: "Pets", UserID: u, CreatedByUserID: &u})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.JSONEq(t, `{"name":"Pets","userId":7,"createdByUserId":7}`, fb.last().Body)
}

func TestUser_SignInAndProfile(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("POST /api/users/signin", http.StatusOK, `{"email":"a@b.com","jwt":"x.y.z","id":7}`)
	fb.handle("GET /api/users/profile", http.StatusOK, `{"id":7,"name":"Asha","email":"a+b@c.com","phoneNumber":"9876543210"}`)
	fb.handle("GET /api/users/signout", http.StatusOK, `You've been signed out!`)

	svc := NewUser(client)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, core.Credentials{Email: "a@b.com", Password: "secret1!"})
	require.NoError(t, err)
	assert.Equal(t, core.UserID(7), res.ID)
	assert.Equal(t, "x.y.z", res.JWT)

	p, err := svc.Profile(ctx, "a+b@c.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, "email=a%2Bb%40c.com", fb.last().Query)

	msg, err := svc.SignOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, "You've been signed out!", msg)
}
