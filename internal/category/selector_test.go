package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monexel/internal/cache"
	"monexel/internal/core"
	"monexel/internal/notify"
)

type fakeService struct {
	cats    []core.Category
	listErr error
	addErr  error
	lists   int
	added   []core.Category
}

func (f *fakeService) List(context.Context) ([]core.Category, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.cats, nil
}

func (f *fakeService) Add(_ context.Context, c core.Category) (core.Category, error) {
	if f.addErr != nil {
		return core.Category{}, f.addErr
	}
	f.added = append(f.added, c)
	c.ID = int64(100 + len(f.added))
	return c, nil
}

func uid(n int64) *core.UserID {
	u := core.UserID(n)
	return &u
}

func newSelector(svc *fakeService) (*Selector, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewSelector(svc, cache.NewLRUCache[[]core.Category](4, time.Minute), rec, nil), rec
}

func TestSelector_VisibleFiltersByCreator(t *testing.T) {
	svc := &fakeService{cats: []core.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Gym", CreatedByUserID: uid(7)},
		{ID: 3, Name: "Boat", CreatedByUserID: uid(8)},
	}}
	s, _ := newSelector(svc)

	got, err := s.Visible(context.Background(), 7)
	require.NoError(t, err)
	names := []string{}
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Food", "Gym"}, names)

	got, err = s.Visible(context.Background(), 8)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, svc.lists, "second call should be served from cache")
}

func TestSelector_ListFailureNotifies(t *testing.T) {
	svc := &fakeService{listErr: errors.New("down")}
	s, rec := newSelector(svc)

	_, err := s.Visible(context.Background(), 1)
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to load categories", last.Text)
}

func TestSelector_AddCustom(t *testing.T) {
	svc := &fakeService{cats: []core.Category{{ID: 1, Name: "Food"}}}
	s, rec := newSelector(svc)
	ctx := context.Background()

	_, err := s.Visible(ctx, 7)
	require.NoError(t, err)

	created, err := s.AddCustom(ctx, 7, "  Pets ", "")
	require.NoError(t, err)
	assert.Equal(t, "Pets", created.Name)
	require.Len(t, svc.added, 1)
	assert.Equal(t, core.UserID(7), svc.added[0].UserID)
	require.NotNil(t, svc.added[0].CreatedByUserID)
	assert.Equal(t, core.UserID(7), *svc.added[0].CreatedByUserID)

	visible, err := s.Visible(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
	assert.Equal(t, 1, svc.lists)

	last, _ := rec.Last()
	assert.Equal(t, notify.LevelSuccess, last.Level)
}

func TestSelector_AddCustomRequiresName(t *testing.T) {
	svc := &fakeService{}
	s, rec := newSelector(svc)

	_, err := s.AddCustom(context.Background(), 7, "   ", "desc")
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Category name is required", verr.Msg)
	assert.Empty(t, svc.added)
	last, _ := rec.Last()
	assert.Equal(t, "Category name is required", last.Text)
}

func TestSelector_Resolve(t *testing.T) {
	svc := &fakeService{cats: []core.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Gym", CreatedByUserID: uid(8)},
	}}
	s, _ := newSelector(svc)
	ctx := context.Background()

	c, err := s.Resolve(ctx, 7, "1")
	require.NoError(t, err)
	assert.Equal(t, "Food", c.Name)

	c, err = s.Resolve(ctx, 7, "food")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = s.Resolve(ctx, 7, "Gym")
	assert.Error(t, err, "another user's category must not resolve")

	s.Invalidate()
	_, _ = s.Visible(ctx, 7)
	assert.Equal(t, 2, svc.lists)
}
