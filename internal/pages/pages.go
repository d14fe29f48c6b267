// Package pages renders the presentational storefront pages from templates
// embedded in the binary.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/content"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageProducts = "products"
	PageCafe     = "cafe"
)

// Static returns the embedded static assets, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// base is shared by every page.
type base struct {
	Title       string
	Site        *content.Site
	Placeholder string
	Year        int
}

// HomeData feeds the home page.
type HomeData struct {
	base
	Featured []*domain.CatalogItem
	Error    string
	Guidance string
}

// ProductsData feeds the products page.
type ProductsData struct {
	base
	View  catalog.View
	Ready bool
}

// CafeData feeds the cafe page.
type CafeData struct {
	base
	Category string
	Items    []content.MenuItem
}

// cardData is the argument of the "card" template.
type cardData struct {
	Item        *domain.CatalogItem
	Placeholder string
}

// Renderer executes the page templates.
type Renderer struct {
	site        *content.Site
	placeholder string
	pages       map[string]*template.Template
}

// New parses every page with the shared layout once.
func New(site *content.Site, placeholder string) (*Renderer, error) {
	funcs := template.FuncMap{
		"money":  money,
		"rating": rating,
		"card": func(it *domain.CatalogItem, placeholder string) cardData {
			return cardData{Item: it, Placeholder: placeholder}
		},
	}

	r := &Renderer{site: site, placeholder: placeholder, pages: make(map[string]*template.Template)}
	for _, name := range []string{PageHome, PageProducts, PageCafe} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) base(title string) base {
	return base{Title: title, Site: r.site, Placeholder: r.placeholder, Year: time.Now().Year()}
}

// Home renders the home page with the first featured items of the catalog.
func (r *Renderer) Home(w io.Writer, featured []*domain.CatalogItem, fe *domain.FetchError) error {
	data := HomeData{base: r.base("Home"), Featured: featured}
	if fe != nil {
		data.Error = fe.Error()
		data.Guidance = fe.Guidance
	}
	return r.render(w, PageHome, data)
}

// Products renders a catalog view.
func (r *Renderer) Products(w io.Writer, v catalog.View) error {
	data := ProductsData{base: r.base("Products"), View: v, Ready: v.State == catalog.StateReady}
	return r.render(w, PageProducts, data)
}

// Cafe renders the cafe menu filtered by category.
func (r *Renderer) Cafe(w io.Writer, category string) error {
	if category == "" {
		category = domain.CategoryAll
	}
	data := CafeData{base: r.base("Cafe Menu"), Category: category, Items: r.site.Menu(category)}
	return r.render(w, PageCafe, data)
}

// render executes into a buffer so a template error never leaves a half-written page.
func (r *Renderer) render(w io.Writer, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s page: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func money(v any) string {
	switch p := v.(type) {
	case decimal.Decimal:
		return "$" + p.StringFixed(2)
	case *decimal.Decimal:
		if p == nil {
			return ""
		}
		return "$" + p.StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

func rating(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
