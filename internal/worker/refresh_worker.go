// Package worker runs background jobs for long-lived commands.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"monexel/internal/dashboard"
	"monexel/internal/log"
)

// Reloader is the dashboard's refresh entry point.
type Reloader interface {
	Reload(ctx context.Context) error
}

// RefreshWorker reloads the dashboard on a cron schedule. Runs never
// overlap: a tick that fires while the previous reload is still going is
// skipped.
type RefreshWorker struct {
	reloader Reloader
	schedule string
	logger   *log.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	runs   int
	onRun  func(err error)
}

func NewRefreshWorker(reloader Reloader, schedule string, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshWorker{
		reloader: reloader,
		schedule: schedule,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// OnRun registers fn to be called after every reload with its result.
func (w *RefreshWorker) OnRun(fn func(err error)) {
	w.mu.Lock()
	w.onRun = fn
	w.mu.Unlock()
}

// Start runs one reload immediately and then schedules the rest. It returns
// an error for an invalid schedule or when already started.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cron != nil {
		w.mu.Unlock()
		return errors.New("refresh worker already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { _ = w.RunOnce(ctx) }); err != nil {
		w.mu.Unlock()
		cancel()
		return fmt.Errorf("schedule %q: %w", w.schedule, err)
	}
	w.cron = c
	w.cancel = cancel
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Refresh worker started",
		log.FieldOperation, log.OpStartup, "schedule", w.schedule)
	_ = w.RunOnce(ctx)
	c.Start()
	return nil
}

// RunOnce performs a single reload. A reload superseded by a newer one is
// not a failure.
func (w *RefreshWorker) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := w.reloader.Reload(ctx)
	if errors.Is(err, dashboard.ErrSuperseded) {
		err = nil
	}

	w.mu.Lock()
	w.runs++
	runs := w.runs
	fn := w.onRun
	w.mu.Unlock()

	fields := log.NewFields().WithOperation(log.OpRefresh)
	fields[log.FieldCount] = runs
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	if err != nil {
		w.logger.ErrorContext(ctx, "Scheduled refresh failed", fields.WithError(err).ToSlice()...)
	} else {
		w.logger.DebugContext(ctx, "Scheduled refresh complete", fields.ToSlice()...)
	}
	if fn != nil {
		fn(err)
	}
	return err
}

// Runs returns how many reloads have been attempted.
func (w *RefreshWorker) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Stop cancels the in-flight reload and waits for it to return. It is safe
// to call without Start and more than once.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	w.logger.Info("Refresh worker stopped", log.FieldOperation, log.OpShutdown)
}
