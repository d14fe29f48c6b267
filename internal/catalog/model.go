// Package catalog implements the storefront catalog view-model: it holds the
// fetched item set and the three query controls, and re-derives the displayed
// list synchronously whenever either changes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// State is the lifecycle state of a Model.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

var (
	// ErrControlsInert is returned by the setters outside the Ready state.
	ErrControlsInert = errors.New("catalog controls are inert until the catalog is ready")

	// ErrDiscarded is returned by Load when its result arrived for a closed
	// model or was superseded by a newer Load.
	ErrDiscarded = errors.New("catalog fetch result discarded")

	// ErrClosed is returned by Load on a closed model.
	ErrClosed = errors.New("catalog model closed")
)

// Model is the catalog view-model of one page visit.
// It is safe for concurrent use; the fetch never runs under the lock.
type Model struct {
	source domain.Source

	mu         sync.Mutex
	state      State
	fullSet    []*domain.CatalogItem
	categories []string
	query      domain.Query
	derived    domain.Derivation
	err        *domain.FetchError
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// New creates an idle model bound to source with the default query.
func New(source domain.Source) *Model {
	return &Model{
		source: source,
		state:  StateIdle,
		query:  domain.DefaultQuery(),
	}
}

// Load fetches the catalog and moves the model to Ready or Error.
// Calling it again is the manual refetch path. A result that arrives after
// Close, or after a newer Load started, is discarded without touching state.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	gen := m.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state = StateLoading
	m.mu.Unlock()

	items, err := m.source.FetchCatalog(fetchCtx)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || gen != m.generation {
		return ErrDiscarded
	}
	m.cancel = nil

	if err != nil {
		fe := domain.AsFetchError("catalog", err)
		m.state = StateError
		m.err = fe
		m.fullSet = nil
		m.categories = nil
		m.derived = domain.Derivation{}
		return fe
	}

	m.fullSet = compact(items)
	m.categories = domain.Categories(m.fullSet)
	m.err = nil
	m.state = StateReady
	m.rederiveLocked()
	return nil
}

// Close tears the model down. Any in-flight fetch is cancelled and its
// result discarded.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// SetSearchTerm replaces the free-text search control.
func (m *Model) SetSearchTerm(term string) error {
	return m.mutate(func(q *domain.Query) error {
		q.SearchTerm = term
		return nil
	})
}

// SetCategory replaces the category control. An empty value means "All".
func (m *Model) SetCategory(category string) error {
	return m.mutate(func(q *domain.Query) error {
		q.Category = category
		return nil
	})
}

// SetSortKey validates and replaces the sort control.
func (m *Model) SetSortKey(key string) error {
	sk, err := domain.ParseSortKey(key)
	if err != nil {
		return err
	}
	return m.mutate(func(q *domain.Query) error {
		q.SortKey = sk
		return nil
	})
}

// Apply replaces all three controls at once and re-derives a single time.
func (m *Model) Apply(q domain.Query) error {
	sk, err := domain.ParseSortKey(string(q.SortKey))
	if err != nil {
		return err
	}
	q.SortKey = sk
	return m.mutate(func(cur *domain.Query) error {
		*cur = q
		return nil
	})
}

func (m *Model) mutate(fn func(q *domain.Query) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady {
		return fmt.Errorf("%w (state=%s)", ErrControlsInert, m.state)
	}
	next := m.query
	if err := fn(&next); err != nil {
		return err
	}
	m.query = next.Normalize()
	m.rederiveLocked()
	return nil
}

func (m *Model) rederiveLocked() {
	m.derived = domain.Derive(m.fullSet, m.query)
}

// State returns the current lifecycle state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Query returns the current controls.
func (m *Model) Query() domain.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// Snapshot returns everything a presentation layer needs to render the model.
func (m *Model) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		State:        m.state,
		Query:        m.query,
		Items:        append([]*domain.CatalogItem(nil), m.derived.Items...),
		ResultCount:  len(m.derived.Items),
		TotalCount:   len(m.fullSet),
		Categories:   append([]string(nil), m.categories...),
		SortOptions:  domain.SortKeys(),
		SortFallback: m.derived.SortFallback,
	}
	if v.Items == nil {
		v.Items = []*domain.CatalogItem{}
	}
	v.Empty = m.state == StateReady && v.ResultCount == 0
	if m.err != nil {
		v.Error = m.err.Error()
		v.Guidance = m.err.Guidance
	}
	return v
}

// compact drops nil entries; the upstream order is kept.
func compact(items []*domain.CatalogItem) []*domain.CatalogItem {
	out := make([]*domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
