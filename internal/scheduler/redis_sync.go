package scheduler

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/bikeyard/internal/index"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	redisstore "github.com/MrSnakeDoc/bikeyard/internal/store/redis"
)

// RedisSyncer warms the memory index from the last snapshot kept in Redis,
// so the storefront has a catalog while the first upstream load runs.
type RedisSyncer struct {
	store  CatalogStore
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store CatalogStore,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads the stored snapshot into the memory index
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing catalog snapshot from redis to memory")

	items, err := rs.store.GetCatalog(ctx)
	if err != nil {
		if errors.Is(err, redisstore.ErrNoSnapshot) {
			rs.logger.Info("no catalog snapshot found in redis")
			return nil
		}
		return err
	}

	rs.index.UpdateCatalog(items)

	rs.logger.Info("synced catalog from redis",
		logger.Int("count", len(items)))

	return nil
}
