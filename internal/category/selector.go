// Package category backs the category picker of the expense form: it lists
// the categories a user may pick and creates custom ones.
package category

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"monexel/internal/cache"
	"monexel/internal/core"
	"monexel/internal/log"
	"monexel/internal/notify"
)

const allKey = "all"

// Service is the subset of the category wrapper the selector uses.
type Service interface {
	List(ctx context.Context) ([]core.Category, error)
	Add(ctx context.Context, c core.Category) (core.Category, error)
}

type Selector struct {
	svc      Service
	cache    cache.Cache[[]core.Category]
	notifier notify.Notifier
	logger   *log.Logger
}

func NewSelector(svc Service, c cache.Cache[[]core.Category], notifier notify.Notifier, logger *log.Logger) *Selector {
	if logger == nil {
		logger = log.Discard()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	return &Selector{
		svc:      svc,
		cache:    c,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentCategory),
	}
}

func (s *Selector) all(ctx context.Context) ([]core.Category, error) {
	if s.cache != nil {
		if cats, ok := s.cache.Get(allKey); ok {
			return cats, nil
		}
	}
	cats, err := s.svc.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load categories", log.FieldError, err.Error())
		s.notifier.Error("Failed to load categories")
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(allKey, cats)
	}
	return cats, nil
}

// Visible returns global categories plus those user created.
func (s *Selector) Visible(ctx context.Context, user core.UserID) ([]core.Category, error) {
	cats, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return core.VisibleTo(cats, user), nil
}

// Resolve finds a visible category by id or by case-insensitive name.
func (s *Selector) Resolve(ctx context.Context, user core.UserID, ref string) (core.Category, error) {
	ref = strings.TrimSpace(ref)
	cats, err := s.Visible(ctx, user)
	if err != nil {
		return core.Category{}, err
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range cats {
			if c.ID == id {
				return c, nil
			}
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %q not found", ref)
}

// AddCustom creates a category owned by user. The new category is appended
// to the cached list so the picker can select it right away.
func (s *Selector) AddCustom(ctx context.Context, user core.UserID, name, description string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.notifier.Error("Category name is required")
		return core.Category{}, core.NewValidationError("name", "Category name is required")
	}
	if user <= 0 {
		return core.Category{}, core.ErrInvalidUserID
	}

	owner := user
	created, err := s.svc.Add(ctx, core.Category{
		Name:            name,
		Description:     strings.TrimSpace(description),
		UserID:          user,
		CreatedByUserID: &owner,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add category", log.FieldError, err.Error())
		s.notifier.Error("Failed to add category")
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}

	if s.cache != nil {
		if cats, ok := s.cache.Get(allKey); ok {
			next := make([]core.Category, 0, len(cats)+1)
			next = append(next, cats...)
			s.cache.Set(allKey, append(next, created))
		}
	}
	s.notifier.Success("Category added successfully!")
	return created, nil
}

// Invalidate forgets the cached list.
func (s *Selector) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
