// Package catalogfile is the catalog source backed by a local YAML file,
// used for development, demos and offline runs.
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

const sourceName = "file"

// Source implements domain.Source over a catalog file.
// The file is read again on every fetch so edits show up on reload.
type Source struct {
	loader *Loader
	mapper *Mapper
	log    logger.Logger
}

func NewSource(path string, log logger.Logger) *Source {
	return &Source{
		loader: NewLoader(path),
		mapper: NewMapper(),
		log:    log,
	}
}

// Name identifies the source in logs, errors and the Redis snapshot.
func (s *Source) Name() string { return sourceName }

func (s *Source) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewFetchError(sourceName, err)
	}

	file, err := s.loader.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, s.fail(fmt.Errorf("%w: %v", domain.ErrStoreNotFound, err))
		}
		return nil, s.fail(fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err))
	}

	items, rejected := s.mapper.MapProducts(file)
	for _, err := range rejected {
		s.log.Warn("catalog file entry skipped", logger.String("file", s.loader.Path()), logger.Error(err))
	}
	if len(items) == 0 {
		return nil, s.fail(domain.ErrEmptyCatalog)
	}

	s.log.Debug("catalog file loaded", logger.String("file", s.loader.Path()), logger.Int("products", len(items)))
	return items, nil
}

func (s *Source) fail(cause error) *domain.FetchError {
	fe := domain.NewFetchError(sourceName, cause)
	switch {
	case errors.Is(cause, domain.ErrStoreNotFound):
		fe.Guidance = "Check BIKEYARD_CATALOG_FILE: the catalog file does not exist."
	case errors.Is(cause, domain.ErrMalformedResponse):
		fe.Guidance = "Fix the syntax of the catalog file, then reload."
	case errors.Is(cause, domain.ErrEmptyCatalog):
		fe.Guidance = "The catalog file lists no valid products. Add products, then reload."
	}
	s.log.Error("catalog file fetch failed", logger.Error(fe))
	return fe
}
