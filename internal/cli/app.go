package cli

import (
	"context"
	"fmt"
	"errors"
	"io"

	"monexel/internal/account"
	"monexel/internal/api"
	"monexel/internal/backend"
	"monexel/internal/cache"
	"monexel/internal/category"
	"monexel/internal/config"
	"monexel/internal/core"
	"monexel/internal/dashboard"
	"monexel/internal/form"
	"monexel/internal/log"
	"monexel/internal/notify"
	"monexel/internal/report"
	"monexel/internal/services"
	"monexel/internal/session"
	"monexel/internal/tabs"
	"monexel/internal/ui"
	"monexel/internal/worker"
)

// Streams are the terminal handles commands read from and write to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App is the wired client shared by every command.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Streams  Streams
	Notifier notify.Notifier
	Prompter *ui.Prompter

	Session      *session.Manager
	Client       *api.Client
	Transactions *services.Transactions
	Categories   *services.Category
	Users        *services.User
	Dashboard    *dashboard.Orchestrator
	Selector     *category.Selector
	Account      *account.Service
	Reports      *report.Builder

	cleanup backend.CleanupFunc
}

// Bootstrap builds the App from cfg: session store, gateway, services and
// controllers. The persisted session is restored before it returns.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, streams Streams) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(res.Store, logger)
	if err := sessions.Restore(ctx); err != nil {
		_ = res.Cleanup()
		return nil, err
	}

	toaster := ui.NewToaster(streams.Err)
	notifier := notify.Multi{toaster, notify.NewLog(logger.WithComponent(log.ComponentApp))}

	client := api.New(cfg.APIBaseURL, sessions, api.WithLogger(logger))
	txs := services.NewTransactions(client, logger).WithPublisher(res.Publisher)
	cats := services.NewCategory(client)
	users := services.NewUser(client)

	catCache := cache.NewLRUCache[[]core.Category](cfg.CategoryCacheSize, cfg.CategoryCacheTTL)

	orch := dashboard.New(dashboard.Sources{
		Summary:  services.NewDashboard(client, logger),
		Income:   txs.Income,
		Expense:  txs.Expense,
		Borrowed: txs.Borrowed,
	}, sessions, notifier, logger)

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Streams:      streams,
		Notifier:     notifier,
		Prompter:     ui.NewPrompter(streams.In, streams.Out),
		Session:      sessions,
		Client:       client,
		Transactions: txs,
		Categories:   cats,
		Users:        users,
		Dashboard:    orch,
		Selector:     category.NewSelector(cats, catCache, notifier, logger),
		Account:      account.NewService(users, sessions, notifier, logger),
		Reports: report.NewBuilder(report.Sources{
			Income:   txs.Income,
			Expense:  txs.Expense,
			Borrowed: txs.Borrowed,
		}, notifier, logger),
		cleanup: res.Cleanup,
	}
	return app, nil
}

// RequireUser returns the signed-in user and binds it to the dashboard
// without fetching, so a stored range that cannot be loaded never blocks a
// command.
func (a *App) RequireUser(ctx context.Context) (session.Session, error) {
	s, err := a.Session.Current()
	if err != nil {
		return s, err
	}
	a.Dashboard.BindUser(s.UserID)
	return s, nil
}

// LoadDashboard binds the signed-in user and fetches the stored range.
func (a *App) LoadDashboard(ctx context.Context) error {
	if _, err := a.RequireUser(ctx); err != nil {
		return err
	}
	if err := a.Dashboard.Reload(ctx); err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
		return err
	}
	return nil
}

// Tabs returns the list controller over the dashboard snapshot.
func (a *App) Tabs() *tabs.Controller {
	return a.TabsWithConfirmer(a.Prompter)
}

// TabsWithConfirmer is Tabs with the delete prompt replaced.
func (a *App) TabsWithConfirmer(c tabs.Confirmer) *tabs.Controller {
	return tabs.New(tabs.Config{
		Source:     a.Dashboard,
		Gateway:    a.Transactions,
		Categories: a.Selector,
		Confirmer:  c,
		Notifier:   a.Notifier,
		User:       a.Session.UserID,
		Currency:   a.Config.CurrencySymbol,
		Logger:     a.Logger,
	})
}

// FormDeps wires a standalone form to the dashboard reload.
func (a *App) FormDeps() form.Deps {
	return form.Deps{
		Gateway:    a.Transactions,
		Notifier:   a.Notifier,
		User:       a.Session.UserID,
		OnRefresh:  a.Dashboard.Reload,
		Categories: a.Selector,
		Logger:     a.Logger,
	}
}

// Watch reloads the dashboard on the configured schedule until ctx ends,
// calling render with each applied snapshot.
func (a *App) Watch(ctx context.Context, render func(core.Snapshot)) error {
	a.Dashboard.OnChange(render)
	defer a.Dashboard.OnChange(nil)

	w := worker.NewRefreshWorker(a.Dashboard, a.Config.RefreshSchedule, a.Logger)
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Close releases the session store and the event publisher. Later calls are
// no-ops.
func (a *App) Close() error {
	cleanup := a.cleanup
	a.cleanup = nil
	if cleanup == nil {
		return nil
	}
	if err := cleanup(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}
