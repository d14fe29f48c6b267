package catalog

import "github.com/MrSnakeDoc/bikeyard/internal/domain"

// View is the rendering boundary of a Model.
type View struct {
	State        State                 `json:"state"`
	Query        domain.Query          `json:"query"`
	Items        []*domain.CatalogItem `json:"items"`
	ResultCount  int                   `json:"resultCount"`
	TotalCount   int                   `json:"totalCount"`
	Categories   []string              `json:"categories"`
	SortOptions  []domain.SortOption   `json:"sortOptions"`
	SortFallback string                `json:"sortFallback,omitempty"`

	// Empty is the "no products found" state: ready, but nothing matched.
	Empty bool `json:"empty"`

	Error    string `json:"error,omitempty"`
	Guidance string `json:"guidance,omitempty"`
}
