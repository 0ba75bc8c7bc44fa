package services

import (
	"context"
	"fmt"
	"net/http"

	"monexel/internal/api"
	"monexel/internal/core"
)

type Category struct {
	client *api.Client
}

func NewCategory(c *api.Client) *Category {
	return &Category{client: c}
}

func (s *Category) Add(ctx context.Context, c core.Category) (core.Category, error) {
	var out core.Category
	err := s.client.Post(ctx, "/api/categories/addCategory", c, &out)
	return out, err
}

func (s *Category) Update(ctx context.Context, id int64, c core.Category) (core.Category, error) {
	var out core.Category
	err := s.client.Put(ctx, fmt.Sprintf("/api/categories/updateCategory/%d", id), c, &out)
	return out, err
}

func (s *Category) Delete(ctx context.Context, id int64) error {
	return s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/deleteCategory/%d", id), nil, nil)
}

func (s *Category) Get(ctx context.Context, id int64) (core.Category, error) {
	var out core.Category
	err := s.client.Get(ctx, fmt.Sprintf("/api/categories/getCategoryById/%d", id), &out)
	return out, err
}

// List returns every category, global and user-created, unfiltered.
func (s *Category) List(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := s.client.Get(ctx, "/api/categories/getAllCategories", &out)
	return out, err
}

// ListCustom returns the categories created by user.
func (s *Category) ListCustom(ctx context.Context, user core.UserID) ([]core.Category, error) {
	var out []core.Category
	err := s.client.Get(ctx, fmt.Sprintf("/api/categories/getCustomCategoryByUser/%d", user), &out)
	return out, err
}
