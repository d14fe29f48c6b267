package shopify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// ErrInvalidRecord marks a product record the mapper refused.
var ErrInvalidRecord = errors.New("invalid product record")

// Mapper converts Storefront API product records to domain.CatalogItem.
//
// Defaults:
//   - title: trimmed title, else handle, else id
//   - category: productType, else "Uncategorized"
//   - price: first variant price, else minimum of the price range, else 0
//   - compare price: first variant compareAtPrice when parseable, else nil
//   - available: product availableForSale or any variant available
//   - image: featured image, else first image, else nil
//   - description: text of descriptionHtml, else description
//
// Rating and New are never set: the Storefront API has no such fields.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapProducts maps records in order. Rejected records are skipped and
// reported in the returned error slice.
func (m *Mapper) MapProducts(records []*ProductRecord) ([]*domain.CatalogItem, []error) {
	items := make([]*domain.CatalogItem, 0, len(records))
	var rejected []error

	for i, rec := range records {
		item, err := m.MapProduct(rec)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, rejected
}

// MapProduct maps a single record.
func (m *Mapper) MapProduct(rec *ProductRecord) (*domain.CatalogItem, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}

	id := str(rec.ID)
	handle := str(rec.Handle)
	if id == "" {
		id = handle
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing id and handle", ErrInvalidRecord)
	}

	title := firstNonBlank(str(rec.Title), handle, id)

	price, err := recordPrice(rec)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrInvalidRecord, id, err)
	}

	category := domain.CategoryOr(str(rec.ProductType))
	vendor := str(rec.Vendor)

	return &domain.CatalogItem{
		ID:           id,
		Handle:       handle,
		Title:        title,
		Category:     category,
		SearchTags:   domain.BuildSearchTags(title, category, vendor, rec.Tags),
		Description:  recordDescription(rec),
		Vendor:       vendor,
		Price:        price,
		ComparePrice: recordComparePrice(rec),
		Available:    recordAvailable(rec),
		ImageURL:     recordImage(rec),
	}, nil
}

func recordPrice(rec *ProductRecord) (decimal.Decimal, error) {
	if v := firstVariant(rec); v != nil && v.Price != nil && v.Price.Amount != nil {
		return domain.ParsePrice(*v.Price.Amount)
	}
	if rec.PriceRange != nil && rec.PriceRange.MinVariantPrice != nil && rec.PriceRange.MinVariantPrice.Amount != nil {
		return domain.ParsePrice(*rec.PriceRange.MinVariantPrice.Amount)
	}
	return decimal.Zero, nil
}

func recordComparePrice(rec *ProductRecord) *decimal.Decimal {
	v := firstVariant(rec)
	if v == nil || v.CompareAtPrice == nil || v.CompareAtPrice.Amount == nil {
		return nil
	}
	d, err := domain.ParsePrice(*v.CompareAtPrice.Amount)
	if err != nil {
		return nil
	}
	return &d
}

func recordAvailable(rec *ProductRecord) bool {
	if rec.AvailableForSale != nil && *rec.AvailableForSale {
		return true
	}
	if rec.Variants == nil {
		return false
	}
	for _, v := range rec.Variants.Nodes {
		if v.AvailableForSale != nil && *v.AvailableForSale {
			return true
		}
	}
	return false
}

func recordImage(rec *ProductRecord) *string {
	if rec.FeaturedImage != nil {
		if u := str(rec.FeaturedImage.URL); u != "" {
			return &u
		}
	}
	if rec.Images != nil {
		for _, img := range rec.Images.Nodes {
			if u := str(img.URL); u != "" {
				return &u
			}
		}
	}
	return nil
}

func recordDescription(rec *ProductRecord) string {
	if html := str(rec.DescriptionHTML); html != "" {
		if text := htmlToText(html); text != "" {
			return text
		}
	}
	return str(rec.Description)
}

// htmlToText flattens an HTML fragment to single-spaced text.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func firstVariant(rec *ProductRecord) *VariantRecord {
	if rec.Variants == nil || len(rec.Variants.Nodes) == 0 {
		return nil
	}
	return &rec.Variants.Nodes[0]
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
