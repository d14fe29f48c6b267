package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

func bikes() []*domain.CatalogItem {
	return []*domain.CatalogItem{
		{ID: "1", Title: "Mountain Bike Pro X1", Category: "Mountain Bikes", Price: decimal.RequireFromString("1299.99")},
		{ID: "2", Title: "Road Bike Speed Master", Category: "Road Bikes", Price: decimal.RequireFromString("899.99")},
		{ID: "3", Title: "City Cruiser Comfort", Category: "City Bikes", Price: decimal.RequireFromString("599.99")},
	}
}

func staticSource(items []*domain.CatalogItem, err error) domain.Source {
	return domain.SourceFunc(func(ctx context.Context) ([]*domain.CatalogItem, error) {
		return items, err
	})
}

// memStore is an in-memory QueryStore.
type memStore struct {
	mu      sync.Mutex
	queries map[string]domain.Query
}

func newMemStore() *memStore { return &memStore{queries: make(map[string]domain.Query)} }

func (m *memStore) SaveSessionQuery(ctx context.Context, id string, q domain.Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[id] = q
	return nil
}

func (m *memStore) GetSessionQuery(ctx context.Context, id string) (domain.Query, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queries[id]
	return q, ok, nil
}

func (m *memStore) DeleteSessionQuery(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queries, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateLoadsCatalog(t *testing.T) {
	r := NewRegistry(staticSource(bikes(), nil), nil, logger.NewNop(), 0)

	s, err := r.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, catalog.StateReady, s.Model.State())
	assert.Equal(t, 1, r.Count())

	got, err := r.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestCreateKeepsSessionOnLoadFailure(t *testing.T) {
	fe := domain.NewFetchError("shopify", domain.ErrUnauthorized)
	r := NewRegistry(staticSource(nil, fe), nil, logger.NewNop(), 0)

	s, err := r.Create(context.Background())
	require.NoError(t, err)
	v := s.Model.Snapshot()
	assert.Equal(t, catalog.StateError, v.State)
	assert.NotEmpty(t, v.Guidance)
}

func TestUpdateAppliesPatch(t *testing.T) {
	store := newMemStore()
	r := NewRegistry(staticSource(bikes(), nil), store, logger.NewNop(), 0)
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)

	v, err := r.Update(ctx, s.ID, Patch{SortKey: strPtr("price-low")})
	require.NoError(t, err)
	require.Len(t, v.Items, 3)
	assert.Equal(t, "City Cruiser Comfort", v.Items[0].Title)

	v, err = r.Update(ctx, s.ID, Patch{Category: strPtr("Road Bikes")})
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, domain.SortPriceLow, v.Query.SortKey, "unpatched controls are kept")

	stored, ok, _ := store.GetSessionQuery(ctx, s.ID)
	require.True(t, ok)
	assert.Equal(t, "Road Bikes", stored.Category)

	_, err = r.Update(ctx, s.ID, Patch{SortKey: strPtr("cheapest")})
	assert.ErrorIs(t, err, domain.ErrUnknownSortKey)
}

func TestUpdateInertInErrorState(t *testing.T) {
	r := NewRegistry(staticSource(nil, domain.NewFetchError("shopify", domain.ErrStoreNotFound)), nil, logger.NewNop(), 0)
	s, err := r.Create(context.Background())
	require.NoError(t, err)

	_, err = r.Update(context.Background(), s.ID, Patch{SearchTerm: strPtr("bike")})
	assert.ErrorIs(t, err, catalog.ErrControlsInert)
}

func TestReloadRecoversFromError(t *testing.T) {
	var mu sync.Mutex
	fail := true
	src := domain.SourceFunc(func(ctx context.Context) ([]*domain.CatalogItem, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, domain.NewFetchError("shopify", errors.New("connection refused"))
		}
		return bikes(), nil
	})
	r := NewRegistry(src, nil, logger.NewNop(), 0)
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, catalog.StateError, s.Model.State())

	mu.Lock()
	fail = false
	mu.Unlock()

	v, err := r.Reload(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StateReady, v.State)
	assert.Equal(t, 3, v.TotalCount)
}

func TestGetUnknownSession(t *testing.T) {
	r := NewRegistry(staticSource(bikes(), nil), newMemStore(), logger.NewNop(), 0)

	for _, id := range []string{"", "not-a-uuid", "9b2f1c0e-7f43-4a38-bb0b-5d5c0b3a1e11"} {
		_, err := r.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestResumeFromStore(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := NewRegistry(staticSource(bikes(), nil), store, logger.NewNop(), 0)
	s, err := first.Create(ctx)
	require.NoError(t, err)
	_, err = first.Update(ctx, s.ID, Patch{SearchTerm: strPtr("road")})
	require.NoError(t, err)
	first.CloseAll()

	second := NewRegistry(staticSource(bikes(), nil), store, logger.NewNop(), 0)
	resumed, err := second.Get(ctx, s.ID)
	require.NoError(t, err)
	v := resumed.Model.Snapshot()
	assert.Equal(t, "road", v.Query.SearchTerm)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Road Bike Speed Master", v.Items[0].Title)
}

func TestDeleteClosesModel(t *testing.T) {
	store := newMemStore()
	r := NewRegistry(staticSource(bikes(), nil), store, logger.NewNop(), 0)
	ctx := context.Background()

	s, err := r.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, s.ID))

	assert.ErrorIs(t, s.Model.Load(ctx), catalog.ErrClosed)
	assert.Equal(t, 0, r.Count())
	_, ok, _ := store.GetSessionQuery(ctx, s.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, r.Delete(ctx, s.ID), ErrNotFound)
}

func TestIdleAndMaxSessions(t *testing.T) {
	r := NewRegistry(staticSource(bikes(), nil), nil, logger.NewNop(), 2)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	old, err := r.Create(ctx)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	fresh, err := r.Create(ctx)
	require.NoError(t, err)

	_, err = r.Create(ctx)
	assert.ErrorIs(t, err, ErrFull)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, []string{old.ID}, r.Idle(30*time.Minute))

	_, err = r.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Empty(t, r.Idle(30*time.Minute), "Get touches the session")
	assert.NotEqual(t, old.ID, fresh.ID)
}
