// Package scheduler runs the background jobs: catalog reloads, the session
// sweeper and the Redis warm start.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/index"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

// CatalogStore persists catalog snapshots. Optional.
type CatalogStore interface {
	SaveCatalog(ctx context.Context, items []*domain.CatalogItem, source string) error
	GetCatalog(ctx context.Context) ([]*domain.CatalogItem, error)
}

// CatalogReloader loads the catalog from the upstream source into the index,
// at start, on a manual trigger and optionally on a fixed interval.
// A failed load is not fatal: it is recorded in the index as the error state.
type CatalogReloader struct {
	upstream      domain.Source
	sourceName    string
	store         CatalogStore
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration // 0 disables periodic reloads
	stopCh        chan struct{}
	doneCh        chan struct{}
	manualTrigger <-chan struct{}
	group         singleflight.Group
}

// NewCatalogReloader creates a new catalog reloader. store may be nil.
func NewCatalogReloader(
	upstream domain.Source,
	sourceName string,
	store CatalogStore,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		upstream:      upstream,
		sourceName:    sourceName,
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs the initial load in the background, then serves the triggers.
func (cr *CatalogReloader) Start(ctx context.Context) {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if cr.interval > 0 {
		ticker = time.NewTicker(cr.interval)
		tick = ticker.C
	}

	go func() {
		defer close(cr.doneCh)
		if ticker != nil {
			defer ticker.Stop()
		}

		if err := cr.Reload(ctx); err != nil {
			cr.logger.Error("initial catalog load failed, serving error state until reload",
				logger.Error(err))
		}

		for {
			select {
			case <-tick:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("periodic catalog reload failed", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("manual catalog reload failed", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for its goroutine.
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
	<-cr.doneCh
}

// Reload fetches the catalog and replaces the index snapshot.
// Concurrent calls share a single upstream fetch.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	ch := cr.group.DoChan("catalog", func() (any, error) {
		return nil, cr.reload(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return domain.NewFetchError(cr.sourceName, ctx.Err())
	}
}

func (cr *CatalogReloader) reload(ctx context.Context) error {
	start := time.Now()
	cr.logger.Info("reloading catalog", logger.String("source", cr.sourceName))

	items, err := cr.upstream.FetchCatalog(ctx)
	if err != nil {
		fe := domain.AsFetchError(cr.sourceName, err)
		cr.index.SetError(fe)
		return fe
	}

	cr.index.UpdateCatalog(items)
	cr.logger.Info("catalog loaded",
		logger.String("source", cr.sourceName),
		logger.Int("count", len(items)),
		logger.Duration("duration", time.Since(start)))

	// Redis is best effort: the memory index is the primary source
	if cr.store != nil {
		if err := cr.store.SaveCatalog(ctx, items, cr.sourceName); err != nil {
			cr.logger.Warn("failed to save catalog to redis", logger.Error(err))
		}
	}
	return nil
}

// Source is the catalog source of the view-models: the index snapshot when
// one is loaded, otherwise a synchronous reload.
func (cr *CatalogReloader) Source() domain.Source {
	return domain.SourceFunc(func(ctx context.Context) ([]*domain.CatalogItem, error) {
		if cr.index.Loaded() {
			return cr.index.FetchCatalog(ctx)
		}
		if err := cr.Reload(ctx); err != nil {
			return nil, err
		}
		return cr.index.FetchCatalog(ctx)
	})
}
