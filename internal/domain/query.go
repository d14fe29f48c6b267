package domain

import (
	"errors"
	"fmt"
	"strings"
)

// CategoryAll is the sentinel category meaning "no category filter applied".
const CategoryAll = "All"

// ErrUnknownSortKey is returned when a sort key is outside the closed enumeration.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey selects the ordering of the displayed catalog.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// SortOption pairs a sort key with its display label.
type SortOption struct {
	Key   SortKey `json:"key"`
	Label string  `json:"label"`
}

var sortOptions = []SortOption{
	{Key: SortFeatured, Label: "Featured"},
	{Key: SortPriceLow, Label: "Price: Low to High"},
	{Key: SortPriceHigh, Label: "Price: High to Low"},
	{Key: SortRating, Label: "Highest Rated"},
	{Key: SortNewest, Label: "Newest"},
}

// SortKeys returns the sort options in UI order.
func SortKeys() []SortOption {
	out := make([]SortOption, len(sortOptions))
	copy(out, sortOptions)
	return out
}

// ParseSortKey validates s against the enumeration.
// An empty string selects the featured ordering.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortFeatured, nil
	}
	for _, opt := range sortOptions {
		if string(opt.Key) == s {
			return opt.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Query holds the three independent catalog controls.
type Query struct {
	SearchTerm string  `json:"searchTerm"`
	Category   string  `json:"category"`
	SortKey    SortKey `json:"sortKey"`
}

// DefaultQuery matches everything in featured order.
func DefaultQuery() Query {
	return Query{
		SearchTerm: "",
		Category:   CategoryAll,
		SortKey:    SortFeatured,
	}
}

// Normalize fills blank controls with their defaults.
// The search term is kept verbatim; matching lower-cases it.
func (q Query) Normalize() Query {
	if strings.TrimSpace(q.Category) == "" {
		q.Category = CategoryAll
	}
	if q.SortKey == "" {
		q.SortKey = SortFeatured
	}
	return q
}
