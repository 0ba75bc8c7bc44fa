package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monexel/internal/config"
	"monexel/internal/core"
	"monexel/internal/log"
)

type backendStub struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	income   string
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	income := b.income
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/dashboard/getDashboardSummary/7"):
		_, _ = w.Write([]byte(`{"totalIncome":5000,"totalExpense":2000,"totalBorrowed":0,"netBalance":3000}`))
	case strings.HasPrefix(r.URL.Path, "/api/income/getAllIncomeByUser/7"):
		_, _ = w.Write([]byte(income))
	case strings.HasPrefix(r.URL.Path, "/api/expenses/getAllExpensesByUser/7"),
		strings.HasPrefix(r.URL.Path, "/api/borrowed-money/getAllBorrowedMoneyByUser/7"):
		_, _ = w.Write([]byte(`[]`))
	case r.Method == http.MethodDelete && r.URL.Path == "/api/income/deleteIncome/1":
		b.mu.Lock()
		b.income = `[]`
		b.mu.Unlock()
		_, _ = w.Write([]byte(`"Income deleted"`))
	default:
		http.NotFound(w, r)
	}
}

func (b *backendStub) saw(req string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r == req {
			n++
		}
	}
	return n
}

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	t.Setenv("MONEXEL_API_URL", url)
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	cfg, err := LoadAndValidateConfig(log.Discard())
	require.NoError(t, err)
	return cfg
}

func TestBootstrap_DashboardListAndDelete(t *testing.T) {
	stub := &backendStub{income: `[{"id":1,"source":"Salary","amount":5000,"date":"2025-01-01","description":"Jan"}]`}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	var out, errOut bytes.Buffer
	ctx := context.Background()
	app, err := Bootstrap(ctx, testConfig(t, srv.URL), log.Discard(), Streams{
		In:  strings.NewReader("y\n"),
		Out: &out,
		Err: &errOut,
	})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.RequireUser(ctx)
	require.Error(t, err, "no session yet")

	_, err = app.Session.Begin(ctx, core.LoginResult{Email: "asha@example.com", JWT: "tok", ID: 7})
	require.NoError(t, err)
	_, err = app.RequireUser(ctx)
	require.NoError(t, err)
	require.NoError(t, app.Dashboard.SetRange(ctx, core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31)))

	snap := app.Dashboard.Snapshot()
	assert.Equal(t, "₹3000.00", snap.Summary.NetBalance.Format(app.Config.CurrencySymbol))
	require.Len(t, snap.Income, 1)

	tabs := app.Tabs()
	tx, ok := tabs.Find(1)
	require.True(t, ok)
	deleted, err := tabs.Delete(ctx, tx)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, 1, stub.saw("DELETE /api/income/deleteIncome/1"))
	assert.Empty(t, app.Dashboard.Snapshot().Income, "reload after delete replaces the list")
	assert.Contains(t, errOut.String(), "income deleted successfully!")
	assert.Contains(t, out.String(), "Are you sure you want to delete this transaction?")

	stub.mu.Lock()
	defer stub.mu.Unlock()
	for _, a := range stub.auth {
		assert.Equal(t, "Bearer tok", a)
	}
}

func TestRequireUser_BindsWithoutFetching(t *testing.T) {
	stub := &backendStub{income: `[]`}
	srv := httptest.NewServer(stub)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.SessionBackend = "sqlite"
	cfg.SessionDBPath = filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()
	streams := Streams{In: strings.NewReader(""), Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}

	first, err := Bootstrap(ctx, cfg, log.Discard(), streams)
	require.NoError(t, err)
	_, err = first.Session.Begin(ctx, core.LoginResult{Email: "asha@example.com", JWT: "tok", ID: 7})
	require.NoError(t, err)
	require.NoError(t, first.Session.SaveRange(ctx, core.NewDateRange(core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))))
	require.NoError(t, first.Close())

	app, err := Bootstrap(ctx, cfg, log.Discard(), streams)
	require.NoError(t, err)

	s, err := app.RequireUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.UserID(7), s.UserID)
	assert.Equal(t, core.UserID(7), app.Dashboard.User())
	assert.Zero(t, stub.saw("GET /api/dashboard/getDashboardSummary/7"), "binding a user does not fetch")

	require.NoError(t, app.LoadDashboard(ctx))
	assert.Equal(t, 1, stub.saw("GET /api/dashboard/getDashboardSummary/7"))
	assert.Equal(t, 1, stub.saw("GET /api/income/getAllIncomeByUser/7"))

	require.NoError(t, app.Close())
	require.NoError(t, app.Close(), "second close is a no-op")
}

func TestLoadAndValidateConfig_Invalid(t *testing.T) {
	t.Setenv("MONEXEL_API_URL", "ftp://example.com")
	t.Setenv("SESSION_BACKEND", "memory")
	_, err := LoadAndValidateConfig(log.Discard())
	assert.ErrorContains(t, err, "configuration validation failed")
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=app")
}
