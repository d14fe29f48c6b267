package catalogfile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// ErrInvalidEntry marks a product entry the mapper refused.
var ErrInvalidEntry = errors.New("invalid catalog entry")

// Mapper converts file entries to domain.CatalogItem with the same defaults
// as the Shopify mapper. Missing availability means available.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapProducts maps entries in file order, skipping rejected ones.
func (m *Mapper) MapProducts(file *File) ([]*domain.CatalogItem, []error) {
	if file == nil {
		return nil, nil
	}
	items := make([]*domain.CatalogItem, 0, len(file.Products))
	var rejected []error
	seen := make(map[string]struct{}, len(file.Products))

	for i, entry := range file.Products {
		item, err := m.MapProduct(entry)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if _, dup := seen[item.ID]; dup {
			rejected = append(rejected, fmt.Errorf("entry %d: %w: duplicate id %q", i, ErrInvalidEntry, item.ID))
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, rejected
}

// MapProduct maps a single entry.
func (m *Mapper) MapProduct(e *ProductEntry) (*domain.CatalogItem, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: empty entry", ErrInvalidEntry)
	}

	handle := strings.TrimSpace(e.Handle)
	id := strings.TrimSpace(e.ID)
	if id == "" {
		id = handle
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing id and handle", ErrInvalidEntry)
	}

	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = handle
	}
	if title == "" {
		title = id
	}

	price := decimal.Zero
	if strings.TrimSpace(e.Price) != "" {
		p, err := domain.ParsePrice(e.Price)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrInvalidEntry, id, err)
		}
		price = p
	}

	var compare *decimal.Decimal
	if strings.TrimSpace(e.ComparePrice) != "" {
		if c, err := domain.ParsePrice(e.ComparePrice); err == nil {
			compare = &c
		}
	}

	var image *string
	if img := strings.TrimSpace(e.Image); img != "" {
		image = &img
	}

	if r := e.Rating; r != nil && (math.IsNaN(*r) || *r < 0 || *r > 5) {
		return nil, fmt.Errorf("%w %s: rating %.2f out of range 0..5", ErrInvalidEntry, id, *e.Rating)
	}

	category := domain.CategoryOr(e.Category)
	vendor := strings.TrimSpace(e.Vendor)

	return &domain.CatalogItem{
		ID:           id,
		Handle:       handle,
		Title:        title,
		Category:     category,
		SearchTags:   domain.BuildSearchTags(title, category, vendor, e.Tags),
		Description:  strings.TrimSpace(e.Description),
		Vendor:       vendor,
		Price:        price,
		ComparePrice: compare,
		Available:    e.Available == nil || *e.Available,
		ImageURL:     image,
		Rating:       e.Rating,
		Reviews:      max(e.Reviews, 0),
		New:          e.New,
	}, nil
}
