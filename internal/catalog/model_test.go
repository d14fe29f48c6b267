package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource returns queued results, one per call.
type fakeSource struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
}

type fakeResult struct {
	items []*domain.CatalogItem
	err   error
}

func (f *fakeSource) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[f.calls]
	if f.calls < len(f.results)-1 {
		f.calls++
	}
	return r.items, r.err
}

func bikes() []*domain.CatalogItem {
	return []*domain.CatalogItem{
		{ID: "1", Title: "Mountain Bike Pro X1", Category: "Mountain Bikes", Price: decimal.RequireFromString("1299.99")},
		{ID: "2", Title: "Road Bike Speed Master", Category: "Road Bikes", Price: decimal.RequireFromString("899.99")},
		{ID: "3", Title: "City Cruiser Comfort", Category: "City Bikes", Price: decimal.RequireFromString("599.99")},
	}
}

func titles(v View) []string {
	out := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		out = append(out, it.Title)
	}
	return out
}

func TestNewModelIsIdleAndInert(t *testing.T) {
	m := New(&fakeSource{results: []fakeResult{{items: bikes()}}})

	if m.State() != StateIdle {
		t.Fatalf("State() = %s, want idle", m.State())
	}
	if err := m.SetSearchTerm("bike"); !errors.Is(err, ErrControlsInert) {
		t.Errorf("SetSearchTerm before load error = %v, want ErrControlsInert", err)
	}

	v := m.Snapshot()
	if v.ResultCount != 0 || v.TotalCount != 0 || v.Empty {
		t.Errorf("idle snapshot = %+v, want empty counts and Empty=false", v)
	}
}

func TestLoadThenDerive(t *testing.T) {
	m := New(&fakeSource{results: []fakeResult{{items: bikes()}}})

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.State() != StateReady {
		t.Fatalf("State() = %s, want ready", m.State())
	}

	if err := m.SetCategory("Road Bikes"); err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}
	v := m.Snapshot()
	if diff := cmp.Diff([]string{"Road Bike Speed Master"}, titles(v)); diff != "" {
		t.Errorf("category filter mismatch (-want +got):\n%s", diff)
	}
	if v.ResultCount != 1 || v.TotalCount != 3 {
		t.Errorf("counts = %d/%d, want 1/3", v.ResultCount, v.TotalCount)
	}

	if err := m.SetCategory(domain.CategoryAll); err != nil {
		t.Fatalf("SetCategory() error = %v", err)
	}
	if err := m.SetSortKey("price-low"); err != nil {
		t.Fatalf("SetSortKey() error = %v", err)
	}
	want := []string{"City Cruiser Comfort", "Road Bike Speed Master", "Mountain Bike Pro X1"}
	if diff := cmp.Diff(want, titles(m.Snapshot())); diff != "" {
		t.Errorf("price-low mismatch (-want +got):\n%s", diff)
	}
}

func TestNoResultsIsNotAnError(t *testing.T) {
	m := New(&fakeSource{results: []fakeResult{{items: bikes()}}})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := m.SetSearchTerm("bike"); err != nil {
		t.Fatalf("SetSearchTerm() error = %v", err)
	}
	if got := m.Snapshot().ResultCount; got != 3 {
		t.Errorf("ResultCount for 'bike' = %d, want 3", got)
	}

	if err := m.SetSearchTerm("ZZZ"); err != nil {
		t.Fatalf("SetSearchTerm() error = %v", err)
	}
	v := m.Snapshot()
	if v.State != StateReady {
		t.Errorf("State = %s, want ready", v.State)
	}
	if !v.Empty || v.ResultCount != 0 || v.Error != "" {
		t.Errorf("snapshot = %+v, want empty ready view without error", v)
	}
	if v.Items == nil {
		t.Error("Items should be an empty list, not nil")
	}
}

func TestInvalidSortKeyKeepsQuery(t *testing.T) {
	m := New(&fakeSource{results: []fakeResult{{items: bikes()}}})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := m.SetSortKey("cheapest"); !errors.Is(err, domain.ErrUnknownSortKey) {
		t.Fatalf("SetSortKey() error = %v, want ErrUnknownSortKey", err)
	}
	if got := m.Query().SortKey; got != domain.SortFeatured {
		t.Errorf("SortKey = %s, want featured", got)
	}
}

func TestFetchFailureThenManualRefetch(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{err: domain.NewFetchError("shopify", domain.ErrUnauthorized)},
		{items: bikes()},
	}}
	m := New(src)

	err := m.Load(context.Background())
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Load() error = %v, want *FetchError", err)
	}

	v := m.Snapshot()
	if v.State != StateError {
		t.Fatalf("State = %s, want error", v.State)
	}
	if v.TotalCount != 0 || v.ResultCount != 0 || len(v.Items) != 0 {
		t.Errorf("error snapshot should render no items, got %+v", v)
	}
	if v.Error == "" || v.Guidance == "" {
		t.Errorf("error snapshot should carry message and guidance, got %+v", v)
	}
	if v.Empty {
		t.Error("an error is not the empty-result state")
	}
	if err := m.SetCategory("Road Bikes"); !errors.Is(err, ErrControlsInert) {
		t.Errorf("SetCategory in error state = %v, want ErrControlsInert", err)
	}

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("manual refetch error = %v", err)
	}
	v = m.Snapshot()
	if v.State != StateReady || v.TotalCount != 3 || v.Error != "" {
		t.Errorf("after refetch snapshot = %+v, want ready with 3 items", v)
	}
}

func TestFailureAfterReadyClearsFullSet(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{items: bikes()},
		{err: errors.New("connection reset")},
	}}
	m := New(src)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := m.Load(context.Background()); err == nil {
		t.Fatal("second Load() should fail")
	}
	v := m.Snapshot()
	if v.State != StateError || v.TotalCount != 0 {
		t.Errorf("snapshot = %+v, want error state with no full set", v)
	}
}

// blockingSource blocks until released or cancelled.
type blockingSource struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	close(b.started)
	select {
	case <-b.release:
		return bikes(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCloseDiscardsInFlightResult(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	m := New(src)

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()

	<-src.started
	if m.State() != StateLoading {
		t.Fatalf("State() while fetching = %s, want loading", m.State())
	}
	m.Close()

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Load() after Close error = %v, want ErrDiscarded", err)
	}
	if m.State() != StateLoading {
		t.Errorf("State() = %s, discarded result must not update state", m.State())
	}
	if err := m.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Load() on closed model error = %v, want ErrClosed", err)
	}
}

// staleFirstSource holds its first fetch until released, ignoring
// cancellation, then returns stale; later fetches return fresh at once.
type staleFirstSource struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	stale   []*domain.CatalogItem
	fresh   []*domain.CatalogItem
}

func (s *staleFirstSource) FetchCatalog(context.Context) ([]*domain.CatalogItem, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if !first {
		return s.fresh, nil
	}
	close(s.started)
	<-s.release
	return s.stale, nil
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	src := &staleFirstSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		stale:   []*domain.CatalogItem{{ID: "9", Title: "Old Tandem", Category: "Tandems", Price: decimal.RequireFromString("10")}},
		fresh:   bikes(),
	}
	m := New(src)

	first := make(chan error, 1)
	go func() { first <- m.Load(context.Background()) }()
	<-src.started

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if m.State() != StateReady {
		t.Fatalf("State() after second Load = %s, want ready", m.State())
	}

	close(src.release)
	if err := <-first; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("first Load() error = %v, want ErrDiscarded", err)
	}

	v := m.Snapshot()
	if v.State != StateReady {
		t.Errorf("State = %s, want ready", v.State)
	}
	want := []string{"Mountain Bike Pro X1", "Road Bike Speed Master", "City Cruiser Comfort"}
	if diff := cmp.Diff(want, titles(v)); diff != "" {
		t.Errorf("stale result leaked into the view (-want +got):\n%s", diff)
	}
	if v.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", v.TotalCount)
	}
	m.Close()
}

func TestApplyAllControls(t *testing.T) {
	m := New(&fakeSource{results: []fakeResult{{items: bikes()}}})
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := m.Apply(domain.Query{SearchTerm: "bike", Category: "", SortKey: domain.SortPriceHigh})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	v := m.Snapshot()
	if v.Query.Category != domain.CategoryAll {
		t.Errorf("blank category should normalize to All, got %q", v.Query.Category)
	}
	want := []string{"Mountain Bike Pro X1", "Road Bike Speed Master", "City Cruiser Comfort"}
	if diff := cmp.Diff(want, titles(v)); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"All", "Mountain Bikes", "Road Bikes", "City Bikes"}, v.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}
