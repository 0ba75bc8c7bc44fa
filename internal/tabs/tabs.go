// Package tabs is the transaction list: one tab per discriminator, rendered
// from the dashboard snapshot, with edit and delete actions per row.
package tabs

import (
	"context"
	"fmt"
	"time"

	"monexel/internal/core"
	"monexel/internal/form"
	"monexel/internal/log"
	"monexel/internal/notify"
)

const (
	confirmDeletePrompt = "Are you sure you want to delete this transaction?"
	msgDeleteFailed     = "Failed to delete transaction!"
	emptyCell           = "-"
)

// Source is the read-only view of the dashboard plus its reload entry point.
type Source interface {
	Snapshot() core.Snapshot
	Reload(ctx context.Context) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type Config struct {
	Source     Source
	Gateway    form.Gateway
	Categories form.CategoryResolver
	Confirmer  Confirmer
	Notifier   notify.Notifier
	User       func() core.UserID
	Currency   string
	Now        func() time.Time
	Logger     *log.Logger
}

// Row is one rendered line of a tab.
type Row struct {
	Tx    core.Transaction
	Cells []string
}

type Controller struct {
	cfg    Config
	logger *log.Logger
	active core.Kind
}

func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewLog(cfg.Logger)
	}
	if cfg.Confirmer == nil {
		cfg.Confirmer = ConfirmFunc(func(string) bool { return false })
	}
	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger.WithComponent(log.ComponentTabs),
		active: core.KindIncome,
	}
}

func (c *Controller) Active() core.Kind { return c.active }

func (c *Controller) SetActive(kind core.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	c.active = kind
	return nil
}

// Columns returns the headers of the tab for kind.
func Columns(kind core.Kind) []string {
	switch kind {
	case core.KindIncome:
		return []string{"Source", "Amount", "Date", "Description"}
	case core.KindExpense:
		return []string{"Title", "Amount", "Category", "Date"}
	case core.KindBorrowed:
		return []string{"Borrowed From", "Amount", "Borrowed Date", "Due Date"}
	}
	return nil
}

// Rows renders the active tab from the current snapshot.
func (c *Controller) Rows() []Row {
	txs := c.cfg.Source.Snapshot().Rows(c.active)
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{Tx: tx, Cells: Cells(tx, c.cfg.Currency)})
	}
	return rows
}

// Cells renders tx in the column order of its tab.
func Cells(tx core.Transaction, currency string) []string {
	amount := tx.Total().Format(currency)
	switch v := tx.(type) {
	case core.Income:
		return []string{cell(v.Source), amount, cell(v.Date.String()), cell(v.Description)}
	case core.Expense:
		return []string{cell(v.Title), amount, cell(v.CategoryName), cell(v.Date.String())}
	case core.Borrowed:
		return []string{cell(v.BorrowedFrom), amount, cell(v.BorrowedDate.String()), cell(v.DueDate.String())}
	}
	return nil
}

func cell(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}

// Find returns the row of the active tab with the given id.
func (c *Controller) Find(id int64) (core.Transaction, bool) {
	for _, tx := range c.cfg.Source.Snapshot().Rows(c.active) {
		if tx.TransactionID() == id {
			return tx, true
		}
	}
	return nil, false
}

// Delete removes tx on the server after confirmation and then reloads the
// dashboard once. The row is never removed locally; the reload is what makes
// it disappear. It reports whether the delete was carried out.
func (c *Controller) Delete(ctx context.Context, tx core.Transaction) (bool, error) {
	if !c.cfg.Confirmer.Confirm(confirmDeletePrompt) {
		return false, nil
	}

	fields := log.NewFields().WithOperation(log.OpDelete).WithTransaction(tx.Kind().String(), tx.TransactionID())
	m, err := c.cfg.Gateway.For(tx.Kind())
	if err != nil {
		return false, err
	}
	if err := m.Delete(ctx, tx.TransactionID()); err != nil {
		c.logger.ErrorContext(ctx, "Delete failed", fields.WithError(err).ToSlice()...)
		c.cfg.Notifier.Error(msgDeleteFailed)
		return false, fmt.Errorf("delete %s %d: %w", tx.Kind(), tx.TransactionID(), err)
	}

	c.logger.InfoContext(ctx, "Transaction deleted", fields.ToSlice()...)
	c.cfg.Notifier.Success(fmt.Sprintf("%s deleted successfully!", tx.Kind()))
	if err := c.cfg.Source.Reload(ctx); err != nil {
		c.logger.WarnContext(ctx, "Reload after delete failed", log.FieldError, err.Error())
	}
	return true, nil
}

func (c *Controller) formDeps() form.Deps {
	return form.Deps{
		Gateway:    c.cfg.Gateway,
		Notifier:   c.cfg.Notifier,
		User:       c.cfg.User,
		OnRefresh:  c.cfg.Source.Reload,
		Categories: c.cfg.Categories,
		Now:        c.cfg.Now,
		Logger:     c.cfg.Logger,
	}
}

// Edit opens an edit form for tx wired to the shared reload.
func (c *Controller) Edit(tx core.Transaction) (*form.Controller, error) {
	return form.NewEdit(tx, c.formDeps())
}

// Add opens a create form for the active tab.
func (c *Controller) Add() (*form.Controller, error) {
	return form.NewCreate(c.active, c.formDeps())
}
