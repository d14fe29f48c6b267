// Package content holds the static storefront reference data: navigation,
// footer, home page copy and the cafe menu. It is embedded in the binary and
// parsed once; callers get copies.
package content

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

//go:embed site.yaml
var siteYAML []byte

type Link struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

type Brand struct {
	Name        string `yaml:"name" json:"name"`
	Tagline     string `yaml:"tagline" json:"tagline"`
	Description string `yaml:"description" json:"description"`
}

type Contact struct {
	Phone     string `yaml:"phone" json:"phone"`
	PhoneDial string `yaml:"phoneDial" json:"phoneDial"`
	Email     string `yaml:"email" json:"email"`
	Address   string `yaml:"address" json:"address"`
}

type Footer struct {
	QuickLinks []Link  `yaml:"quickLinks" json:"quickLinks"`
	Categories []Link  `yaml:"categories" json:"categories"`
	Services   []Link  `yaml:"services" json:"services"`
	Social     []Link  `yaml:"social" json:"social"`
	Legal      []Link  `yaml:"legal" json:"legal"`
	Contact    Contact `yaml:"contact" json:"contact"`
}

type Feature struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Testimonial struct {
	Name    string `yaml:"name" json:"name"`
	Role    string `yaml:"role" json:"role"`
	Rating  int    `yaml:"rating" json:"rating"`
	Content string `yaml:"content" json:"content"`
}

type CafeInfo struct {
	Hours   string `yaml:"hours" json:"hours"`
	Address string `yaml:"address" json:"address"`
	Phone   string `yaml:"phone" json:"phone"`
}

// MenuItem is one cafe menu entry.
type MenuItem struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Price       decimal.Decimal `yaml:"-" json:"price"`
	RawPrice    string          `yaml:"price" json:"-"`
	Category    string          `yaml:"category" json:"category"`
	Popular     bool            `yaml:"popular" json:"popular"`
}

type Cafe struct {
	Info       CafeInfo   `yaml:"info" json:"info"`
	Categories []string   `yaml:"categories" json:"categories"`
	Menu       []MenuItem `yaml:"menu" json:"menu"`
}

// Site is the whole static data set.
type Site struct {
	Brand        Brand         `yaml:"brand" json:"brand"`
	Navigation   []Link        `yaml:"navigation" json:"navigation"`
	Footer       Footer        `yaml:"footer" json:"footer"`
	Features     []Feature     `yaml:"features" json:"features"`
	Testimonials []Testimonial `yaml:"testimonials" json:"testimonials"`
	Cafe         Cafe          `yaml:"cafe" json:"cafe"`
}

var (
	loadOnce sync.Once
	loaded   *Site
	loadErr  error
)

// Load parses the embedded data once.
func Load() (*Site, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(siteYAML)
	})
	return loaded, loadErr
}

// MustLoad is Load for startup code; the embedded data is fixed at build time.
func MustLoad() *Site {
	s, err := Load()
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: embedded site content is invalid: %v", err))
	}
	return s
}

func parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse site yaml: %w", err)
	}
	for i := range s.Cafe.Menu {
		item := &s.Cafe.Menu[i]
		p, err := domain.ParsePrice(item.RawPrice)
		if err != nil {
			return nil, fmt.Errorf("cafe item %q: %w", item.Name, err)
		}
		item.Price = p
	}
	return &s, nil
}

// Menu returns the cafe items of category, in menu order.
// "All" or an empty category returns the whole menu.
func (s *Site) Menu(category string) []MenuItem {
	category = strings.TrimSpace(category)
	out := make([]MenuItem, 0, len(s.Cafe.Menu))
	for _, item := range s.Cafe.Menu {
		if category == "" || category == domain.CategoryAll || item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// Popular returns the items flagged popular.
func (s *Site) Popular() []MenuItem {
	var out []MenuItem
	for _, item := range s.Cafe.Menu {
		if item.Popular {
			out = append(out, item)
		}
	}
	return out
}
