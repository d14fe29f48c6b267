package domain

import "context"

// Source fetches the complete current catalog, in the order returned by the
// upstream service. That order is the featured ordering.
//
// Expected failures are returned as *FetchError, never panics.
type Source interface {
	FetchCatalog(ctx context.Context) ([]*CatalogItem, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]*CatalogItem, error)

func (f SourceFunc) FetchCatalog(ctx context.Context) ([]*CatalogItem, error) { return f(ctx) }
