// Package report totals the three transaction lists of a user over a range.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"monexel/internal/core"
	"monexel/internal/log"
	"monexel/internal/notify"
)

type IncomeLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Income, error)
}

type ExpenseLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Expense, error)
}

type BorrowedLister interface {
	ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.Borrowed, error)
}

type Sources struct {
	Income   IncomeLister
	Expense  ExpenseLister
	Borrowed BorrowedLister
}

// Report is the client-side aggregate shown on the reports screen.
type Report struct {
	Range         core.DateRange
	TotalIncome   core.Money
	TotalExpense  core.Money
	TotalBorrowed core.Money
	Counts        map[core.Kind]int
}

// Net is income minus expense.
func (r Report) Net() core.Money {
	return r.TotalIncome.Sub(r.TotalExpense)
}

// Share returns the percentage kind contributes to the sum of all three
// totals, rounded to one decimal. It is zero when nothing was recorded.
func (r Report) Share(kind core.Kind) decimal.Decimal {
	all := r.TotalIncome.Add(r.TotalExpense).Add(r.TotalBorrowed)
	if !all.Positive() {
		return decimal.Zero
	}
	var part core.Money
	switch kind {
	case core.KindIncome:
		part = r.TotalIncome
	case core.KindExpense:
		part = r.TotalExpense
	case core.KindBorrowed:
		part = r.TotalBorrowed
	}
	return part.Decimal.Mul(decimal.NewFromInt(100)).Div(all.Decimal).Round(1)
}

type Builder struct {
	src      Sources
	notifier notify.Notifier
	logger   *log.Logger
}

func NewBuilder(src Sources, notifier notify.Notifier, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Discard()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	return &Builder{src: src, notifier: notifier, logger: logger.WithComponent(log.ComponentReport)}
}

// Build fetches the three lists concurrently and totals them. Nothing is
// fetched for an incomplete or inverted range.
func (b *Builder) Build(ctx context.Context, user core.UserID, rng core.DateRange) (Report, error) {
	if err := rng.Validate(); err != nil {
		if errors.Is(err, core.ErrRangeInverted) {
			b.notifier.Error("End date must be after start date!")
		}
		return Report{}, err
	}

	var (
		income   []core.Income
		expense  []core.Expense
		borrowed []core.Borrowed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = b.src.Income.ListByUser(gctx, user, rng)
		return err
	})
	g.Go(func() (err error) {
		expense, err = b.src.Expense.ListByUser(gctx, user, rng)
		return err
	})
	g.Go(func() (err error) {
		borrowed, err = b.src.Borrowed.ListByUser(gctx, user, rng)
		return err
	})

	fields := log.NewFields().WithUser(int64(user)).WithRange(rng.Start.String(), rng.End.String())
	if err := g.Wait(); err != nil {
		b.logger.ErrorContext(ctx, "Error loading report", fields.WithError(err).ToSlice()...)
		return Report{}, fmt.Errorf("load report: %w", err)
	}

	r := Report{
		Range:         rng,
		TotalIncome:   core.Sum(income),
		TotalExpense:  core.Sum(expense),
		TotalBorrowed: core.Sum(borrowed),
		Counts: map[core.Kind]int{
			core.KindIncome:   len(income),
			core.KindExpense:  len(expense),
			core.KindBorrowed: len(borrowed),
		},
	}
	b.logger.DebugContext(ctx, "Report built", fields.ToSlice()...)
	return r, nil
}
