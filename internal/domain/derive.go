package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Fallback descriptions reported by Derive when a sort key has no data to sort on.
const (
	FallbackRatingByTitle = "no ratings in catalog: sorted by title A-Z"
	FallbackNewestByTitle = "no new-arrival flags in catalog: sorted by title Z-A"
)

// Derivation is the displayed list computed from a full set and a query.
type Derivation struct {
	Items []*CatalogItem

	// SortFallback is empty unless rating/newest fell back to title ordering.
	SortFallback string
}

// Derive computes the displayed items: search filter, category filter, then a
// stable sort. It is pure: full is never mutated and the same inputs always
// yield the same output.
func Derive(full []*CatalogItem, q Query) Derivation {
	q = q.Normalize()
	term := strings.ToLower(q.SearchTerm)

	items := make([]*CatalogItem, 0, len(full))
	for _, it := range full {
		if it == nil {
			continue
		}
		if !matchesTerm(it, term) {
			continue
		}
		if !MatchesCategory(it, q.Category) {
			continue
		}
		items = append(items, it)
	}

	fallback := sortItems(items, q.SortKey)
	return Derivation{Items: items, SortFallback: fallback}
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// item's title, category or any search tag. An empty term matches everything.
func MatchesSearch(it *CatalogItem, term string) bool {
	return matchesTerm(it, strings.ToLower(term))
}

// matchesTerm expects an already lower-cased term.
func matchesTerm(it *CatalogItem, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(it.Category), term) {
		return true
	}
	for _, tag := range it.SearchTags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// MatchesCategory reports exact category equality; "All" matches everything.
func MatchesCategory(it *CatalogItem, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return it.Category == category
}

// sortItems sorts in place and returns the fallback description, if any.
func sortItems(items []*CatalogItem, key SortKey) string {
	switch key {
	case SortPriceLow:
		slices.SortStableFunc(items, func(a, b *CatalogItem) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(items, func(a, b *CatalogItem) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		if !slices.ContainsFunc(items, func(it *CatalogItem) bool { return it.Rating != nil }) {
			slices.SortStableFunc(items, compareTitle)
			return FallbackRatingByTitle
		}
		slices.SortStableFunc(items, compareRatingDesc)
	case SortNewest:
		if !slices.ContainsFunc(items, func(it *CatalogItem) bool { return it.New != nil }) {
			slices.SortStableFunc(items, func(a, b *CatalogItem) int { return compareTitle(b, a) })
			return FallbackNewestByTitle
		}
		slices.SortStableFunc(items, func(a, b *CatalogItem) int {
			return cmp.Compare(boolRank(b.IsNew()), boolRank(a.IsNew()))
		})
	default:
		// featured: keep source order
	}
	return ""
}

// compareRatingDesc puts rated items first, highest rating first.
func compareRatingDesc(a, b *CatalogItem) int {
	switch {
	case a.Rating == nil && b.Rating == nil:
		return 0
	case a.Rating == nil:
		return 1
	case b.Rating == nil:
		return -1
	}
	return cmp.Compare(*b.Rating, *a.Rating)
}

func compareTitle(a, b *CatalogItem) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Categories returns "All" followed by the distinct categories of full in
// first-seen order.
func Categories(full []*CatalogItem) []string {
	out := []string{CategoryAll}
	seen := map[string]bool{CategoryAll: true}
	for _, it := range full {
		if it == nil || it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
