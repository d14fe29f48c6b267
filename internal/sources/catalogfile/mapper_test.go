package catalogfile

import (
	"errors"
	"math"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestMapProduct(t *testing.T) {
	tests := []struct {
		name      string
		entry     *ProductEntry
		wantErr   bool
		wantTitle string
		wantCat   string
		wantAvail bool
		wantSale  bool
	}{
		{
			name:      "complete entry",
			entry:     &ProductEntry{ID: "1", Title: "Helmet", Category: "Accessories", Price: "89.99", ComparePrice: "119.99"},
			wantTitle: "Helmet",
			wantCat:   "Accessories",
			wantAvail: true,
			wantSale:  true,
		},
		{
			name:      "defaults",
			entry:     &ProductEntry{Handle: "pump"},
			wantTitle: "pump",
			wantCat:   "Uncategorized",
			wantAvail: true,
		},
		{
			name:      "explicitly unavailable",
			entry:     &ProductEntry{ID: "1", Title: "Lock", Available: ptr(false)},
			wantTitle: "Lock",
			wantCat:   "Uncategorized",
		},
		{
			name:      "unparseable compare price is absent",
			entry:     &ProductEntry{ID: "1", Title: "Lock", Price: "10", ComparePrice: "n/a"},
			wantTitle: "Lock",
			wantCat:   "Uncategorized",
			wantAvail: true,
		},
		{name: "nil entry", entry: nil, wantErr: true},
		{name: "no identity", entry: &ProductEntry{Title: "Ghost"}, wantErr: true},
		{name: "negative price", entry: &ProductEntry{ID: "1", Price: "-1"}, wantErr: true},
		{name: "rating out of range", entry: &ProductEntry{ID: "1", Rating: ptr(7.0)}, wantErr: true},
		{name: "rating NaN", entry: &ProductEntry{ID: "1", Rating: ptr(math.NaN())}, wantErr: true},
		{name: "rating infinite", entry: &ProductEntry{ID: "1", Rating: ptr(math.Inf(1))}, wantErr: true},
	}

	m := NewMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := m.MapProduct(tt.entry)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Fatalf("MapProduct() error = %v, want ErrInvalidEntry", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MapProduct() error = %v", err)
			}
			if item.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", item.Title, tt.wantTitle)
			}
			if item.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", item.Category, tt.wantCat)
			}
			if item.Available != tt.wantAvail {
				t.Errorf("Available = %v, want %v", item.Available, tt.wantAvail)
			}
			if item.OnSale() != tt.wantSale {
				t.Errorf("OnSale() = %v, want %v", item.OnSale(), tt.wantSale)
			}
		})
	}
}
