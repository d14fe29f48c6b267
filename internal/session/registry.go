// Package session keeps one catalog view-model per storefront visit.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrFull     = errors.New("too many open sessions")
)

// DefaultMaxSessions bounds the number of live view-models.
const DefaultMaxSessions = 10000

// QueryStore persists the query controls of a session so a visit can be
// resumed after a restart. Optional.
type QueryStore interface {
	SaveSessionQuery(ctx context.Context, id string, q domain.Query) error
	GetSessionQuery(ctx context.Context, id string) (domain.Query, bool, error)
	DeleteSessionQuery(ctx context.Context, id string) error
}

// Session is one visit: an id and its view-model.
type Session struct {
	ID        string
	Model     *catalog.Model
	CreatedAt time.Time

	lastTouch time.Time // guarded by Registry.mu
}

// Patch is a partial update of the query controls; nil fields are unchanged.
type Patch struct {
	SearchTerm *string `json:"searchTerm,omitempty"`
	Category   *string `json:"category,omitempty"`
	SortKey    *string `json:"sortKey,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.SearchTerm == nil && p.Category == nil && p.SortKey == nil
}

// Registry owns the live sessions.
type Registry struct {
	source      domain.Source
	store       QueryStore
	logger      logger.Logger
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry whose view-models fetch from source.
// store may be nil.
func NewRegistry(source domain.Source, store QueryStore, log logger.Logger, maxSessions int) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{
		source:      source,
		store:       store,
		logger:      log,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Create opens a session and performs its initial load. The session is
// returned even when the load fails: it is then in the Error state and can
// be reloaded.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	s, err := r.add(uuid.NewString(), catalog.New(r.source))
	if err != nil {
		return nil, err
	}

	if err := s.Model.Load(ctx); err != nil {
		r.logger.Warn("session initial load failed", logger.String("session_id", s.ID), logger.Error(err))
	}
	r.persist(ctx, s)
	return s, nil
}

// Get returns a live session, or resumes one from the query store.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.lastTouch = r.now()
	}
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	return r.resume(ctx, id)
}

func (r *Registry) resume(ctx context.Context, id string) (*Session, error) {
	if r.store == nil {
		return nil, ErrNotFound
	}
	q, found, err := r.store.GetSessionQuery(ctx, id)
	if err != nil {
		r.logger.Warn("failed to read session query", logger.String("session_id", id), logger.Error(err))
		return nil, ErrNotFound
	}
	if !found {
		return nil, ErrNotFound
	}

	s, err := r.add(id, catalog.New(r.source))
	if err != nil {
		return nil, err
	}
	if err := s.Model.Load(ctx); err != nil {
		r.logger.Warn("resumed session load failed", logger.String("session_id", id), logger.Error(err))
		return s, nil
	}
	if err := s.Model.Apply(q); err != nil {
		r.logger.Warn("stored session query rejected", logger.String("session_id", id), logger.Error(err))
	}
	r.logger.Debug("session resumed", logger.String("session_id", id))
	return s, nil
}

// add registers a model under id. A concurrent resume of the same id keeps
// the first session.
func (r *Registry) add(id string, m *catalog.Model) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok {
		m.Close()
		return existing, nil
	}
	if len(r.sessions) >= r.maxSessions {
		m.Close()
		return nil, ErrFull
	}
	now := r.now()
	s := &Session{ID: id, Model: m, CreatedAt: now, lastTouch: now}
	r.sessions[id] = s
	return s, nil
}

// Update applies a patch to the session controls and returns the new view.
func (r *Registry) Update(ctx context.Context, id string, p Patch) (catalog.View, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return catalog.View{}, err
	}

	q := s.Model.Query()
	if p.SearchTerm != nil {
		q.SearchTerm = *p.SearchTerm
	}
	if p.Category != nil {
		q.Category = *p.Category
	}
	if p.SortKey != nil {
		q.SortKey = domain.SortKey(*p.SortKey)
	}
	if err := s.Model.Apply(q); err != nil {
		return s.Model.Snapshot(), err
	}

	r.persist(ctx, s)
	return s.Model.Snapshot(), nil
}

// Reload refetches the session catalog (manual refetch).
func (r *Registry) Reload(ctx context.Context, id string) (catalog.View, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return catalog.View{}, err
	}
	err = s.Model.Load(ctx)
	return s.Model.Snapshot(), err
}

// Delete closes the view-model, discarding any in-flight fetch, and forgets
// the session.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Model.Close()
	}
	if r.store != nil {
		if err := r.store.DeleteSessionQuery(ctx, id); err != nil {
			r.logger.Warn("failed to delete session query", logger.String("session_id", id), logger.Error(err))
		}
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Idle returns the ids of sessions untouched for longer than threshold.
func (r *Registry) Idle(threshold time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-threshold)
	var ids []string
	for id, s := range r.sessions {
		if s.lastTouch.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every session without touching the query store, so the
// visits can be resumed after a restart.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Model.Close()
	}
}

func (r *Registry) persist(ctx context.Context, s *Session) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveSessionQuery(ctx, s.ID, s.Model.Query()); err != nil {
		r.logger.Warn("failed to save session query", logger.String("session_id", s.ID), logger.Error(err))
	}
}
