package domain

import (
	"github.com/shopspring/decimal"
)

// CatalogItem represents one purchasable entry of the storefront catalog.
//
// It is NOT tied to Shopify or any other external source.
// Every source normalizes its records into this structure.
type CatalogItem struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque unique identifier, stable across fetches.
	ID string `json:"id"`

	// Handle is the URL-friendly slug, when the source provides one.
	Handle string `json:"handle,omitempty"`

	// ─────────────────────────────
	// Functional description
	// ─────────────────────────────

	// Title is the display name.
	// Example: Mountain Bike Pro X1
	Title string `json:"title"`

	// Category is the single classification label used for exact-match filtering.
	// Example: Mountain Bikes
	Category string `json:"category"`

	// SearchTags holds the free-text tokens eligible for substring search
	// (title, category, vendor and any vendor-supplied tags).
	SearchTags []string `json:"searchTags,omitempty"`

	Description string `json:"description,omitempty"`
	Vendor      string `json:"vendor,omitempty"`

	// ─────────────────────────────
	// Pricing & stock
	// ─────────────────────────────

	// Price is the current price. Never negative.
	Price decimal.Decimal `json:"price"`

	// ComparePrice is the prior/list price. Nil when the source has none.
	// It only drives the sale badge.
	ComparePrice *decimal.Decimal `json:"comparePrice,omitempty"`

	Available bool `json:"available"`

	// ImageURL is nil when the source has no image; renderers use a placeholder.
	ImageURL *string `json:"imageUrl,omitempty"`

	// ─────────────────────────────
	// Optional merchandising attributes
	// ─────────────────────────────

	// Rating is nil when the source carries no rating (Shopify does not).
	Rating *float64 `json:"rating,omitempty"`

	Reviews int `json:"reviews,omitempty"`

	// New is nil when the source carries no "new" indicator.
	New *bool `json:"new,omitempty"`
}

// OnSale reports whether a compare price is present and greater than the price.
func (it *CatalogItem) OnSale() bool {
	if it == nil || it.ComparePrice == nil {
		return false
	}
	return it.ComparePrice.GreaterThan(it.Price)
}

// IsNew reports the "new" indicator, treating an absent one as false.
func (it *CatalogItem) IsNew() bool {
	return it != nil && it.New != nil && *it.New
}

// Image returns the image URL or placeholder when the item has none.
func (it *CatalogItem) Image(placeholder string) string {
	if it == nil || it.ImageURL == nil {
		return placeholder
	}
	return *it.ImageURL
}
