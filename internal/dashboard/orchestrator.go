// Package dashboard owns the date range and the canonical snapshot that every
// dashboard view renders from.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"monexel/internal/core"
	"monexel/internal/log"
	"monexel/internal/notify"
)

var (
	// ErrNoUser is returned by Reload before a user is set.
	ErrNoUser = errors.New("no signed-in user")
	// ErrSuperseded is returned by a refresh whose results were discarded
	// because a newer refresh started.
	ErrSuperseded = errors.New("refresh superseded")
)

const (
	msgRangeInverted = "End date must be after start date!"
	msgLoadFailed    = "Failed to load transactions"
)

type SummaryService interface {
	Summary(ctx context.Context, user core.UserID, rng core.DateRange) core.DashboardSummary
}

type IncomeLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Income, error)
}

type ExpenseLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Expense, error)
}

type BorrowedLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Borrowed, error)
}

// Sources are the reads a refresh performs.
type Sources struct {
	Summary  SummaryService
	Income   IncomeLister
	Expense  ExpenseLister
	Borrowed BorrowedLister
}

// RangeStore persists the selected range between runs.
type RangeStore interface {
	Range() core.DateRange
	SaveRange(ctx context.Context, rng core.DateRange) error
}

type Orchestrator struct {
	src      Sources
	ranges   RangeStore
	notifier notify.Notifier
	logger   *log.Logger

	mu       sync.Mutex
	user     core.UserID
	rng      core.DateRange
	snap     core.Snapshot
	gen      uint64
	cancel   context.CancelFunc
	onChange func(core.Snapshot)
}

// New builds an orchestrator and restores the persisted range. Nothing is
// fetched until a user is set.
func New(src Sources, ranges RangeStore, notifier notify.Notifier, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Discard()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	o := &Orchestrator{
		src:      src,
		ranges:   ranges,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentDashboard),
	}
	if ranges != nil {
		o.rng = ranges.Range()
	}
	return o
}

// OnChange registers fn to receive a copy of the snapshot after each apply.
func (o *Orchestrator) OnChange(fn func(core.Snapshot)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() core.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.Clone()
}

func (o *Orchestrator) Range() core.DateRange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rng
}

func (o *Orchestrator) User() core.UserID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.user
}

// Generation is the id of the latest refresh.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// SetUser switches the user and refreshes when the range is complete.
func (o *Orchestrator) SetUser(ctx context.Context, user core.UserID) error {
	o.BindUser(user)
	if user == 0 {
		return nil
	}
	return o.maybeRefresh(ctx)
}

// BindUser switches the user without fetching. A zero user cancels any
// refresh and clears the snapshot.
func (o *Orchestrator) BindUser(user core.UserID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.user = user
	if user != 0 {
		return
	}
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.snap = core.Snapshot{}
}

func (o *Orchestrator) SetRange(ctx context.Context, start, end core.Date) error {
	return o.updateRange(ctx, func(r *core.DateRange) {
		r.Start = start
		r.End = end
	})
}

func (o *Orchestrator) SetStart(ctx context.Context, d core.Date) error {
	return o.updateRange(ctx, func(r *core.DateRange) { r.Start = d })
}

func (o *Orchestrator) SetEnd(ctx context.Context, d core.Date) error {
	return o.updateRange(ctx, func(r *core.DateRange) { r.End = d })
}

func (o *Orchestrator) updateRange(ctx context.Context, mutate func(*core.DateRange)) error {
	o.mu.Lock()
	mutate(&o.rng)
	rng := o.rng
	o.mu.Unlock()

	if o.ranges != nil {
		if err := o.ranges.SaveRange(ctx, rng); err != nil {
			o.logger.WarnContext(ctx, "Failed to persist date range",
				log.NewFields().WithRange(rng.Start.String(), rng.End.String()).WithError(err).ToSlice()...)
		}
	}
	return o.maybeRefresh(ctx)
}

// maybeRefresh fetches only when a user and both range ends are present.
func (o *Orchestrator) maybeRefresh(ctx context.Context) error {
	o.mu.Lock()
	ready := o.user != 0 && o.rng.Complete()
	o.mu.Unlock()
	if !ready {
		return nil
	}
	return o.refresh(ctx)
}

// Reload is the single refresh entry point shared by every child view.
func (o *Orchestrator) Reload(ctx context.Context) error {
	o.mu.Lock()
	user, rng := o.user, o.rng
	o.mu.Unlock()

	if user == 0 {
		return ErrNoUser
	}
	if !rng.Complete() {
		return core.ErrRangeIncomplete
	}
	return o.refresh(ctx)
}

func (o *Orchestrator) refresh(ctx context.Context) error {
	o.mu.Lock()
	user, rng := o.user, o.rng
	if err := rng.Validate(); err != nil {
		o.mu.Unlock()
		if errors.Is(err, core.ErrRangeInverted) {
			o.notifier.Error(msgRangeInverted)
		}
		return err
	}

	o.gen++
	gen := o.gen
	if o.cancel != nil {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()
	defer o.finish(gen, cancel)

	fields := log.NewFields().
		WithOperation(log.OpRefresh).
		WithUser(int64(user)).
		WithRange(rng.Start.String(), rng.End.String())
	fields[log.FieldGeneration] = gen
	o.logger.DebugContext(ctx, "Dashboard refresh started", fields.ToSlice()...)

	summary := o.src.Summary.Summary(ctx, user, rng)
	if !o.apply(gen, func(s *core.Snapshot) { s.Summary = summary }) {
		return ErrSuperseded
	}

	var (
		income   []core.Income
		expense  []core.Expense
		borrowed []core.Borrowed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = o.src.Income.ListByUser(gctx, user, rng)
		return err
	})
	g.Go(func() (err error) {
		expense, err = o.src.Expense.ListByUser(gctx, user, rng)
		return err
	})
	g.Go(func() (err error) {
		borrowed, err = o.src.Borrowed.ListByUser(gctx, user, rng)
		return err
	})

	if err := g.Wait(); err != nil {
		if !o.current(gen) {
			return ErrSuperseded
		}
		o.logger.ErrorContext(ctx, "Failed to load transactions", fields.WithError(err).ToSlice()...)
		o.notifier.Error(msgLoadFailed)
		return fmt.Errorf("load transactions: %w", err)
	}

	if !o.apply(gen, func(s *core.Snapshot) {
		s.Income = income
		s.Expense = expense
		s.Borrowed = borrowed
	}) {
		return ErrSuperseded
	}

	fields[log.FieldCount] = len(income) + len(expense) + len(borrowed)
	o.logger.DebugContext(ctx, "Dashboard refresh applied", fields.ToSlice()...)
	return nil
}

func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen == gen
}

// apply mutates the snapshot only while gen is still the latest refresh.
func (o *Orchestrator) apply(gen uint64, mutate func(*core.Snapshot)) bool {
	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return false
	}
	mutate(&o.snap)
	fn := o.onChange
	snap := o.snap.Clone()
	o.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return true
}

func (o *Orchestrator) finish(gen uint64, cancel context.CancelFunc) {
	o.mu.Lock()
	if o.gen == gen {
		o.cancel = nil
	}
	o.mu.Unlock()
	cancel()
}
