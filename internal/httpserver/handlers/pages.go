package handlers

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

// HomePage renders the landing page with the first featured products.
// A catalog failure still renders the page, with the error panel.
func HomePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var featured []*domain.CatalogItem
		items, err := d.Catalog.FetchCatalog(r.Context())
		fe := domain.AsFetchError(d.SourceName, err)
		if fe == nil {
			featured = items
			if d.FeaturedCount >= 0 && len(featured) > d.FeaturedCount {
				featured = featured[:d.FeaturedCount]
			}
		}

		var buf bytes.Buffer
		if err := d.Pages.Home(&buf, featured, fe); err != nil {
			renderFailed(w, d, err)
			return
		}
		writeHTML(w, http.StatusOK, &buf)
	}
}

// ProductsPage renders the catalog for the q, category and sort parameters.
// An unknown sort key falls back to the featured order.
func ProductsPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := queryFromRequest(r)
		if err != nil {
			q = domain.Query{SearchTerm: r.URL.Query().Get("q"), Category: r.URL.Query().Get("category")}.Normalize()
		}

		status := http.StatusOK
		view, err := derive(r, d, q)
		if err != nil {
			status = http.StatusServiceUnavailable
		}

		var buf bytes.Buffer
		if err := d.Pages.Products(&buf, view); err != nil {
			renderFailed(w, d, err)
			return
		}
		writeHTML(w, status, &buf)
	}
}

// ReloadProductsPage refetches the catalog upstream, then sends the browser
// back to the products page.
func ReloadProductsPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.ReloadCatalog(r.Context()); err != nil {
			d.Logger.Warn("catalog reload from page failed", logger.Error(err))
		}

		target := "/products"
		if ref, err := url.Parse(r.Referer()); err == nil && ref.Path == "/products" && ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func CafePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := d.Pages.Cafe(&buf, r.URL.Query().Get("category")); err != nil {
			renderFailed(w, d, err)
			return
		}
		writeHTML(w, http.StatusOK, &buf)
	}
}

func writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderFailed(w http.ResponseWriter, d deps.Deps, err error) {
	d.Logger.Error("page render failed", logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
