package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/index"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	redisstore "github.com/MrSnakeDoc/bikeyard/internal/store/redis"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func items(ids ...string) []*domain.CatalogItem {
	out := make([]*domain.CatalogItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.CatalogItem{ID: id, Title: "item " + id})
	}
	return out
}

// countingSource returns items or err and counts its calls.
type countingSource struct {
	mu    sync.Mutex
	calls atomic.Int32
	items []*domain.CatalogItem
	err   error
	gate  chan struct{} // when set, fetches block until closed
}

func (s *countingSource) set(items []*domain.CatalogItem, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items, s.err = items, err
}

func (s *countingSource) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, s.err
}

// fakeCatalogStore is an in-memory CatalogStore.
type fakeCatalogStore struct {
	mu    sync.Mutex
	items []*domain.CatalogItem
	err   error
}

func (f *fakeCatalogStore) SaveCatalog(ctx context.Context, items []*domain.CatalogItem, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	return f.err
}

func (f *fakeCatalogStore) GetCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) == 0 {
		return nil, redisstore.ErrNoSnapshot
	}
	return f.items, nil
}

func TestReloadUpdatesIndexAndStore(t *testing.T) {
	src := &countingSource{items: items("b", "a")}
	store := &fakeCatalogStore{}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(src, "shopify", store, idx, logger.NewNop(), 0, nil)

	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if idx.Count() != 2 || idx.Items()[0].ID != "b" {
		t.Errorf("index = %v, want [b a]", idx.Items())
	}
	if len(store.items) != 2 {
		t.Errorf("store should hold the snapshot, got %d items", len(store.items))
	}
}

func TestReloadFailureIsRecorded(t *testing.T) {
	src := &countingSource{items: items("1")}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(src, "shopify", nil, idx, logger.NewNop(), 0, nil)
	ctx := context.Background()

	if err := cr.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	src.set(nil, errors.New("connection reset"))
	err := cr.Reload(ctx)
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Reload() error = %v, want *FetchError", err)
	}
	if idx.Count() != 0 || idx.Loaded() {
		t.Error("failed reload must not leave the previous snapshot")
	}
	if last, _ := idx.LastError(); last == nil {
		t.Error("failed reload should be recorded in the index")
	}
}

func TestReloadStoreFailureIsBestEffort(t *testing.T) {
	src := &countingSource{items: items("1")}
	store := &fakeCatalogStore{err: errors.New("redis down")}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(src, "shopify", store, idx, logger.NewNop(), 0, nil)

	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v, redis failures must not fail the reload", err)
	}
	if idx.Count() != 1 {
		t.Errorf("index count = %d, want 1", idx.Count())
	}
}

func TestConcurrentReloadsShareOneFetch(t *testing.T) {
	gate := make(chan struct{})
	src := &countingSource{items: items("1"), gate: gate}
	cr := NewCatalogReloader(src, "shopify", nil, index.NewMemoryIndex(), logger.NewNop(), 0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cr.Reload(context.Background())
		}()
	}

	// Let the callers pile up on the in-flight fetch.
	deadline := time.Now().Add(time.Second)
	for src.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if n := src.calls.Load(); n != 1 {
		t.Errorf("upstream fetched %d times, want 1", n)
	}
}

func TestSourceServesIndexOrReloads(t *testing.T) {
	src := &countingSource{items: items("1", "2")}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(src, "shopify", nil, idx, logger.NewNop(), 0, nil)
	ctx := context.Background()

	got, err := cr.Source().FetchCatalog(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("Source() before load = %v, %v", got, err)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("Source() should reload when nothing is loaded")
	}

	if _, err := cr.Source().FetchCatalog(ctx); err != nil {
		t.Fatal(err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("Source() should serve the loaded index without refetching")
	}

	src.set(nil, domain.NewFetchError("shopify", domain.ErrUnauthorized))
	_ = cr.Reload(ctx)
	if _, err := cr.Source().FetchCatalog(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Source() after failure error = %v, want ErrUnauthorized", err)
	}
}

func TestStartLoadsAndServesManualTrigger(t *testing.T) {
	src := &countingSource{items: items("1")}
	idx := index.NewMemoryIndex()
	trigger := make(chan struct{}, 1)
	cr := NewCatalogReloader(src, "shopify", nil, idx, logger.NewNop(), 0, trigger)

	cr.Start(context.Background())
	defer cr.Stop()

	waitFor(t, func() bool { return idx.Loaded() })

	src.set(items("1", "2", "3"), nil)
	trigger <- struct{}{}
	waitFor(t, func() bool { return idx.Count() == 3 })
}

func TestStartInitialFailureIsNotFatal(t *testing.T) {
	src := &countingSource{err: domain.NewFetchError("shopify", domain.ErrStoreNotFound)}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(src, "shopify", nil, idx, logger.NewNop(), 10*time.Millisecond, nil)

	cr.Start(context.Background())
	defer cr.Stop()

	waitFor(t, func() bool { last, _ := idx.LastError(); return last != nil })

	src.set(items("1"), nil)
	waitFor(t, func() bool { return idx.Loaded() })
}

func TestRedisSyncerWarmsIndex(t *testing.T) {
	idx := index.NewMemoryIndex()

	empty := NewRedisSyncer(&fakeCatalogStore{}, idx, logger.NewNop())
	if err := empty.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() with no snapshot error = %v", err)
	}
	if idx.Loaded() {
		t.Error("no snapshot should leave the index empty")
	}

	rs := NewRedisSyncer(&fakeCatalogStore{items: items("x", "y")}, idx, logger.NewNop())
	if err := rs.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if idx.Count() != 2 {
		t.Errorf("index count = %d, want 2", idx.Count())
	}

	failing := NewRedisSyncer(&fakeCatalogStore{err: errors.New("timeout")}, idx, logger.NewNop())
	if err := failing.Sync(context.Background()); err == nil {
		t.Error("Sync() should report store errors")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
