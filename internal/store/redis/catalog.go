package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

const (
	// DefaultCatalogTTL is the default TTL of the catalog snapshot (48 hours)
	DefaultCatalogTTL = 48 * time.Hour
	// DefaultSessionTTL is the default TTL of a stored session query (30 minutes)
	DefaultSessionTTL = 30 * time.Minute
)

// ErrNoSnapshot is returned when Redis holds no catalog snapshot.
var ErrNoSnapshot = errors.New("no catalog snapshot in redis")

// Store handles Redis persistence of the catalog snapshot and session queries
type Store struct {
	client     redis.UniversalClient
	catalogTTL time.Duration
	sessionTTL time.Duration
}

// NewStore creates a new Redis store. Zero TTLs use the defaults.
func NewStore(client redis.UniversalClient, catalogTTL, sessionTTL time.Duration) *Store {
	if catalogTTL <= 0 {
		catalogTTL = DefaultCatalogTTL
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Store{
		client:     client,
		catalogTTL: catalogTTL,
		sessionTTL: sessionTTL,
	}
}

// SnapshotMeta describes the stored catalog snapshot.
type SnapshotMeta struct {
	Count   int
	SavedAt time.Time
	Source  string
}

// SaveCatalog stores the ordered snapshot and its metadata in one pipeline.
func (s *Store) SaveCatalog(ctx context.Context, items []*domain.CatalogItem, source string) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, CatalogKey(), data, s.catalogTTL)
	pipe.HSet(ctx, CatalogMetaKey(),
		"count", len(items),
		"saved_at", time.Now().UTC().Format(time.RFC3339),
		"source", source,
	)
	pipe.Expire(ctx, CatalogMetaKey(), s.catalogTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// GetCatalog returns the stored snapshot, or ErrNoSnapshot.
func (s *Store) GetCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	data, err := s.client.Get(ctx, CatalogKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	var items []*domain.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoSnapshot
	}
	return items, nil
}

// GetCatalogMeta returns the snapshot metadata, or ErrNoSnapshot.
func (s *Store) GetCatalogMeta(ctx context.Context) (SnapshotMeta, error) {
	vals, err := s.client.HGetAll(ctx, CatalogMetaKey()).Result()
	if err != nil {
		return SnapshotMeta{}, fmt.Errorf("failed to get catalog meta: %w", err)
	}
	if len(vals) == 0 {
		return SnapshotMeta{}, ErrNoSnapshot
	}

	meta := SnapshotMeta{Source: vals["source"]}
	meta.Count, _ = strconv.Atoi(vals["count"])
	meta.SavedAt, _ = time.Parse(time.RFC3339, vals["saved_at"])
	return meta, nil
}

// Ping checks the connection, used by readiness and infra endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
