package services

import (
	"context"
	"fmt"

	"monexel/internal/api"
	"monexel/internal/core"
	"monexel/internal/log"
)

// Mutation operations reported to the Publisher.
const (
	MutationCreate = "create"
	MutationUpdate = "update"
	MutationDelete = "delete"
)

// Publisher receives a notice after every successful mutation.
type Publisher interface {
	PublishMutation(ctx context.Context, op string, kind core.Kind, id int64) error
}

// Mutator is the kind-erased write side of a transaction resource.
type Mutator interface {
	Add(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, id int64, tx core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// Transactions bundles the three transaction wrappers keyed by discriminator.
type Transactions struct {
	Income   *Income
	Expense  *Expense
	Borrowed *Borrowed

	publisher Publisher
	logger    *log.Logger
}

func NewTransactions(c *api.Client, logger *log.Logger) *Transactions {
	if logger == nil {
		logger = log.Discard()
	}
	return &Transactions{
		Income:   NewIncome(c),
		Expense:  NewExpense(c),
		Borrowed: NewBorrowed(c),
		logger:   logger.WithComponent(log.ComponentAPI),
	}
}

// WithPublisher makes successful mutations emit events. A nil publisher
// disables them.
func (t *Transactions) WithPublisher(p Publisher) *Transactions {
	t.publisher = p
	return t
}

// For returns the write wrapper for kind.
func (t *Transactions) For(kind core.Kind) (Mutator, error) {
	switch kind {
	case core.KindIncome:
		return &mutator[core.Income]{res: t.Income, parent: t}, nil
	case core.KindExpense:
		return &mutator[core.Expense]{res: t.Expense, parent: t}, nil
	case core.KindBorrowed:
		return &mutator[core.Borrowed]{res: t.Borrowed, parent: t}, nil
	default:
		return nil, kind.Validate()
	}
}

// publish never fails the caller: the mutation already happened server side.
func (t *Transactions) publish(ctx context.Context, op string, kind core.Kind, id int64) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishMutation(ctx, op, kind, id); err != nil {
		fields := log.NewFields().
			WithOperation(log.OpPublish).
			WithTransaction(kind.String(), id).
			WithError(err)
		t.logger.WarnContext(ctx, "Failed to publish mutation event", fields.ToSlice()...)
	}
}

type mutator[T core.Transaction] struct {
	res    *Resource[T]
	parent *Transactions
}

func (m *mutator[T]) cast(tx core.Transaction) (T, error) {
	v, ok := tx.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s payload for %s wrapper", core.ErrInvalidKind, tx.Kind(), zero.Kind())
	}
	return v, nil
}

func (m *mutator[T]) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	v, err := m.cast(tx)
	if err != nil {
		return nil, err
	}
	out, err := m.res.Add(ctx, v)
	if err != nil {
		return nil, err
	}
	m.parent.publish(ctx, MutationCreate, out.Kind(), out.TransactionID())
	return out, nil
}

func (m *mutator[T]) Update(ctx context.Context, id int64, tx core.Transaction) (core.Transaction, error) {
	v, err := m.cast(tx)
	if err != nil {
		return nil, err
	}
	out, err := m.res.Update(ctx, id, v)
	if err != nil {
		return nil, err
	}
	m.parent.publish(ctx, MutationUpdate, v.Kind(), id)
	return out, nil
}

func (m *mutator[T]) Delete(ctx context.Context, id int64) error {
	if err := m.res.Delete(ctx, id); err != nil {
		return err
	}
	var zero T
	m.parent.publish(ctx, MutationDelete, zero.Kind(), id)
	return nil
}
