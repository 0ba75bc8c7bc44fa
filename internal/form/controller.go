// Package form implements the add/edit transaction form: a state machine over
// a discriminator (income, expense, borrowed) and a phase (create, edit).
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"monexel/internal/api"
	"monexel/internal/core"
	"monexel/internal/log"
	"monexel/internal/notify"
	"monexel/internal/services"
)

type Phase string

const (
	PhaseCreate Phase = "create"
	PhaseEdit   Phase = "edit"
)

const fallbackMessage = "Operation failed!"

var (
	ErrKindLocked   = errors.New("transaction type cannot change while editing")
	ErrClosed       = errors.New("form is closed")
	ErrUnknownField = errors.New("unknown field")
)

// Gateway returns the write wrapper for a discriminator.
type Gateway interface {
	For(kind core.Kind) (services.Mutator, error)
}

// CategoryResolver finds a visible category by id or name.
type CategoryResolver interface {
	Resolve(ctx context.Context, user core.UserID, ref string) (core.Category, error)
}

// Deps are the collaborators shared by every form.
type Deps struct {
	Gateway  Gateway
	Notifier notify.Notifier
	// User returns the signed-in user's id; it is attached to every payload.
	User func() core.UserID
	// OnSaved receives the saved record: the server's copy on create, the
	// submitted payload with the original id on edit.
	OnSaved func(core.Transaction)
	// OnRefresh is the shared reload entry point, optional.
	OnRefresh func(ctx context.Context) error
	// Categories resolves the category name of an edited expense to its id;
	// list rows carry the name only.
	Categories CategoryResolver
	Now        func() time.Time
	Logger     *log.Logger
}

type Controller struct {
	deps     Deps
	logger   *log.Logger
	kind     core.Kind
	phase    Phase
	original core.Transaction
	values   map[string]string
	open     bool

	// originalCategory is the id the edited expense belongs to, known once
	// its name is resolved.
	originalCategory int64
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.Discard()
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLog(d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.User == nil {
		d.User = func() core.UserID { return 0 }
	}
	return d
}

// NewCreate opens an empty form for kind.
func NewCreate(kind core.Kind, deps Deps) (*Controller, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()
	return &Controller{
		deps:   deps,
		logger: deps.Logger.WithComponent(log.ComponentForm),
		kind:   kind,
		phase:  PhaseCreate,
		values: map[string]string{},
		open:   true,
	}, nil
}

// NewEdit opens a form seeded from tx. Updates are keyed by tx's id.
func NewEdit(tx core.Transaction, deps Deps) (*Controller, error) {
	if tx == nil {
		return nil, fmt.Errorf("edit: nil transaction")
	}
	if tx.TransactionID() <= 0 {
		return nil, fmt.Errorf("edit %s: record has no id", tx.Kind())
	}
	deps = deps.withDefaults()
	c := &Controller{
		deps:     deps,
		logger:   deps.Logger.WithComponent(log.ComponentForm),
		kind:     tx.Kind(),
		phase:    PhaseEdit,
		original: tx,
		values:   seed(tx),
		open:     true,
	}
	if e, ok := tx.(core.Expense); ok {
		c.originalCategory = e.CategoryID
	}
	return c, nil
}

func seed(tx core.Transaction) map[string]string {
	amount := func(m core.Money) string {
		if m.IsZero() {
			return ""
		}
		return m.String()
	}
	switch v := tx.(type) {
	case core.Income:
		return map[string]string{
			"source":      v.Source,
			"amount":      amount(v.Amount),
			"date":        v.Date.String(),
			"description": v.Description,
		}
	case core.Expense:
		cat := ""
		if v.CategoryID > 0 {
			cat = strconv.FormatInt(v.CategoryID, 10)
		}
		return map[string]string{
			"title":      v.Title,
			"amount":     amount(v.Amount),
			"date":       v.Date.String(),
			"categoryId": cat,
		}
	case core.Borrowed:
		return map[string]string{
			"borrowedFrom": v.BorrowedFrom,
			"amount":       amount(v.Amount),
			"borrowedDate": v.BorrowedDate.String(),
			"dueDate":      v.DueDate.String(),
		}
	}
	return map[string]string{}
}

func (c *Controller) Kind() core.Kind { return c.kind }
func (c *Controller) Phase() Phase    { return c.phase }
func (c *Controller) IsOpen() bool    { return c.open }

// Original returns the record being edited, nil in create phase.
func (c *Controller) Original() core.Transaction { return c.original }

// Value returns the current raw input for field.
func (c *Controller) Value(field string) string { return c.values[field] }

// Values returns a copy of the current raw inputs.
func (c *Controller) Values() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// SetKind switches the discriminator and clears the payload. Only allowed
// while creating.
func (c *Controller) SetKind(kind core.Kind) error {
	if c.phase == PhaseEdit {
		return ErrKindLocked
	}
	if err := kind.Validate(); err != nil {
		return err
	}
	c.kind = kind
	c.values = map[string]string{}
	return nil
}

// Set records a raw input. Dates must be YYYY-MM-DD; capped dates after the
// end of the current month are refused.
func (c *Controller) Set(field, value string) error {
	f, ok := lookupField(c.kind, field)
	if !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownField, field, c.kind)
	}
	value = strings.TrimSpace(value)
	if f.Date && value != "" {
		d, err := core.ParseDate(value)
		if err != nil {
			return core.NewValidationError(field, "Invalid date, use YYYY-MM-DD")
		}
		if limit := MaxDate(c.deps.Now()); f.Capped && d.After(limit.Time) {
			return core.NewValidationError(field, fmt.Sprintf("%s cannot be after %s", f.Label, limit))
		}
	}
	c.values[field] = value
	return nil
}

// validate applies the client-side checks in order and returns the first
// failure.
func (c *Controller) validate() error {
	amount, err := core.ParseAmount(c.values["amount"])
	if err != nil || !amount.Positive() {
		return core.NewValidationError("amount", "Amount must be greater than zero")
	}

	if c.kind == core.KindBorrowed {
		b := core.Borrowed{Amount: amount}
		b.BorrowedDate, _ = core.ParseDate(c.values["borrowedDate"])
		b.DueDate, _ = core.ParseDate(c.values["dueDate"])
		if errors.Is(b.Validate(), core.ErrDueBeforeBorrow) {
			return core.NewValidationError("dueDate", "Due date must be after borrowed date")
		}
	}

	if c.phase == PhaseCreate {
		for _, f := range fieldsByKind[c.kind] {
			if f.Required && c.values[f.Name] == "" {
				return core.NewValidationError(f.Name, requiredMessage(c.kind))
			}
		}
	}
	return nil
}

func (c *Controller) payload() (core.Transaction, error) {
	amount, _ := core.ParseAmount(c.values["amount"])
	user := c.deps.User()
	var id int64
	if c.original != nil {
		id = c.original.TransactionID()
	}

	date := func(field string) (core.Date, error) {
		d, err := core.ParseDate(c.values[field])
		if err != nil {
			return core.Date{}, core.NewValidationError(field, "Invalid date, use YYYY-MM-DD")
		}
		return d, nil
	}

	switch c.kind {
	case core.KindIncome:
		d, err := date("date")
		if err != nil {
			return nil, err
		}
		return core.Income{
			ID:          id,
			Source:      c.values["source"],
			Amount:      amount,
			Date:        d,
			Description: c.values["description"],
			UserID:      user,
		}, nil
	case core.KindExpense:
		d, err := date("date")
		if err != nil {
			return nil, err
		}
		e := core.Expense{ID: id, Title: c.values["title"], Amount: amount, Date: d, UserID: user}
		if raw := c.values["categoryId"]; raw != "" {
			catID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || catID <= 0 {
				return nil, core.NewValidationError("categoryId", "Select a valid category")
			}
			e.CategoryID = catID
		}
		if orig, ok := c.original.(core.Expense); ok && e.CategoryID == c.originalCategory {
			e.CategoryName = orig.CategoryName
		}
		return e, nil
	case core.KindBorrowed:
		bd, err := date("borrowedDate")
		if err != nil {
			return nil, err
		}
		dd, err := date("dueDate")
		if err != nil {
			return nil, err
		}
		return core.Borrowed{
			ID:           id,
			Amount:       amount,
			BorrowedFrom: c.values["borrowedFrom"],
			BorrowedDate: bd,
			DueDate:      dd,
			UserID:       user,
		}, nil
	}
	return nil, c.kind.Validate()
}

// Submit validates and dispatches the form. Rejected submissions never reach
// the network. On success the form closes; on failure it stays open.
func (c *Controller) Submit(ctx context.Context) (core.Transaction, error) {
	if !c.open {
		return nil, ErrClosed
	}

	if err := c.validate(); err != nil {
		c.reject(ctx, err)
		return nil, err
	}
	if err := c.resolveCategory(ctx); err != nil {
		c.reject(ctx, err)
		return nil, err
	}
	tx, err := c.payload()
	if err != nil {
		c.reject(ctx, err)
		return nil, err
	}

	m, err := c.deps.Gateway.For(c.kind)
	if err != nil {
		return nil, err
	}

	var saved core.Transaction
	verb := "added"
	op := log.OpCreate
	if c.phase == PhaseEdit {
		verb, op = "updated", log.OpUpdate
		if _, err = m.Update(ctx, c.original.TransactionID(), tx); err == nil {
			saved = tx
		}
	} else {
		saved, err = m.Add(ctx, tx)
	}

	fields := log.NewFields().WithOperation(op).WithTransaction(c.kind.String(), tx.TransactionID())
	if err != nil {
		c.logger.ErrorContext(ctx, "Transaction submit failed", fields.WithError(err).ToSlice()...)
		c.deps.Notifier.Error(api.MessageOf(err, fallbackMessage))
		return nil, err
	}
	c.logger.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)

	c.deps.Notifier.Success(fmt.Sprintf("%s %s successfully!", c.kind, verb))
	if c.deps.OnSaved != nil {
		c.deps.OnSaved(saved)
	}
	if c.deps.OnRefresh != nil {
		if err := c.deps.OnRefresh(ctx); err != nil {
			c.logger.WarnContext(ctx, "Refresh after save failed", log.FieldError, err.Error())
		}
	}
	c.open = false
	return saved, nil
}

// resolveCategory fills the category id of an edited expense from its name.
// The server requires the id on every expense update.
func (c *Controller) resolveCategory(ctx context.Context) error {
	if c.kind != core.KindExpense || c.values["categoryId"] != "" {
		return nil
	}
	orig, ok := c.original.(core.Expense)
	if !ok {
		return nil
	}
	invalid := core.NewValidationError("categoryId", "Select a valid category")
	if orig.CategoryName == "" || c.deps.Categories == nil {
		return invalid
	}
	cat, err := c.deps.Categories.Resolve(ctx, c.deps.User(), orig.CategoryName)
	if err != nil {
		c.logger.WarnContext(ctx, "Category lookup failed",
			log.NewFields().WithOperation(log.OpUpdate).WithTransaction(c.kind.String(), orig.ID).WithError(err).ToSlice()...)
		return invalid
	}
	c.values["categoryId"] = strconv.FormatInt(cat.ID, 10)
	c.originalCategory = cat.ID
	return nil
}

func (c *Controller) reject(ctx context.Context, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		c.deps.Notifier.Error(verr.Msg)
		c.logger.DebugContext(ctx, "Submission rejected",
			log.FieldErrorType, log.ErrorTypeValidation, "field", verr.Field)
	}
}

// Close discards the form without submitting.
func (c *Controller) Close() { c.open = false }
