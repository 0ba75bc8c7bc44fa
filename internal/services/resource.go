// Package services maps each backend resource to typed calls on the API
// gateway. Wrappers pass results through unchanged; the dashboard summary is
// the only call with a local fallback.
package services

import (
	"context"
	"fmt"
	"net/http"

	"monexel/internal/api"
	"monexel/internal/core"
)

// endpoints holds the per-resource paths. Paths ending in "/" take an id.
type endpoints struct {
	add, update, delete, get, list string
}

var (
	incomeEndpoints = endpoints{
		add:    "/api/income/addIncome",
		update: "/api/income/updateIncome/",
		delete: "/api/income/deleteIncome/",
		get:    "/api/income/getIncomeById/",
		list:   "/api/income/getAllIncomeByUser/",
	}
	expenseEndpoints = endpoints{
		add:    "/api/expenses/addExpense",
		update: "/api/expenses/updateExpense/",
		delete: "/api/expenses/deleteExpense/",
		get:    "/api/expenses/getExpenseById/",
		list:   "/api/expenses/getAllExpensesByUser/",
	}
	borrowedEndpoints = endpoints{
		add:    "/api/borrowed-money/addBorrowedMoney",
		update: "/api/borrowed-money/updateBorrowedMoney/",
		delete: "/api/borrowed-money/deleteBorrowedMoney/",
		get:    "/api/borrowed-money/getBorrowedMoneyById/",
		list:   "/api/borrowed-money/getAllBorrowedMoneyByUser/",
	}
)

// Resource is the CRUD wrapper shared by the three transaction kinds.
type Resource[T core.Transaction] struct {
	client *api.Client
	paths  endpoints
}

type (
	Income   = Resource[core.Income]
	Expense  = Resource[core.Expense]
	Borrowed = Resource[core.Borrowed]
)

func NewIncome(c *api.Client) *Income     { return &Income{client: c, paths: incomeEndpoints} }
func NewExpense(c *api.Client) *Expense   { return &Expense{client: c, paths: expenseEndpoints} }
func NewBorrowed(c *api.Client) *Borrowed { return &Borrowed{client: c, paths: borrowedEndpoints} }

func (r *Resource[T]) Add(ctx context.Context, v T) (T, error) {
	var out T
	err := r.client.Post(ctx, r.paths.add, v, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id int64, v T) (T, error) {
	var out T
	err := r.client.Put(ctx, fmt.Sprintf("%s%d", r.paths.update, id), v, &out)
	return out, err
}

// Delete discards whatever body the server returns.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, fmt.Sprintf("%s%d", r.paths.delete, id), nil, nil)
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.client.Get(ctx, fmt.Sprintf("%s%d", r.paths.get, id), &out)
	return out, err
}

// ListByUser returns the user's records inside rng, in server order.
func (r *Resource[T]) ListByUser(ctx context.Context, user core.UserID, rng core.DateRange) ([]T, error) {
	path := fmt.Sprintf("%s%d", r.paths.list, user)
	if q := rng.Query(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []T
	if err := r.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
