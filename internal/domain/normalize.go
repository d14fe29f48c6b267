package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Uncategorized is the category of items whose source carries none.
const Uncategorized = "Uncategorized"

var (
	ErrInvalidPrice  = errors.New("invalid price")
	ErrNegativePrice = errors.New("negative price")
)

// ParsePrice parses a decimal amount such as "1299.99".
// Negative amounts are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidPrice, s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w %q", ErrNegativePrice, s)
	}
	return d, nil
}

// CategoryOr returns the trimmed category, or Uncategorized when blank.
func CategoryOr(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return Uncategorized
}

// BuildSearchTags collects the searchable tokens of an item: title, category,
// vendor and the free tags, trimmed, without blanks or case-insensitive duplicates.
func BuildSearchTags(title, category, vendor string, tags []string) []string {
	all := make([]string, 0, 3+len(tags))
	all = append(all, title, category, vendor)
	all = append(all, tags...)

	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, t := range all {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
