package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

// Products derives the catalog list for the query parameters on a
// throwaway view-model. A failed fetch answers 503 with the error view.
func Products(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := queryFromRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		view, err := derive(r, d, q)
		if err != nil {
			d.Logger.Warn("products request failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, view)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// derive loads a fresh model and applies q. On a fetch failure the error
// view is returned together with the error.
func derive(r *http.Request, d deps.Deps, q domain.Query) (catalog.View, error) {
	m := catalog.New(d.Catalog)
	defer m.Close()

	if err := m.Load(r.Context()); err != nil {
		return m.Snapshot(), err
	}
	if err := m.Apply(q); err != nil {
		return m.Snapshot(), err
	}
	return m.Snapshot(), nil
}

// Product returns one catalog item by id.
func Product(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Catalog.FetchCatalog(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, domain.AsFetchError(d.SourceName, err))
			return
		}

		id := chi.URLParam(r, "id")
		for _, it := range items {
			if it != nil && it.ID == id {
				writeJSON(w, http.StatusOK, it)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
	}
}

// Categories returns "All" followed by the catalog categories.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Catalog.FetchCatalog(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, domain.AsFetchError(d.SourceName, err))
			return
		}
		writeJSON(w, http.StatusOK, domain.Categories(items))
	}
}

// SortKeys returns the sort options in display order.
func SortKeys(_ deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.SortKeys())
	}
}
