package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bikeyard/internal/content"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
)

type navigationResponse struct {
	Brand      content.Brand  `json:"brand"`
	Navigation []content.Link `json:"navigation"`
	Footer     content.Footer `json:"footer"`
}

type menuResponse struct {
	Info       content.CafeInfo   `json:"info"`
	Categories []string           `json:"categories"`
	Items      []content.MenuItem `json:"items"`
}

func Navigation(d deps.Deps) http.HandlerFunc {
	resp := navigationResponse{
		Brand:      d.Site.Brand,
		Navigation: d.Site.Navigation,
		Footer:     d.Site.Footer,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, resp)
	}
}

// CafeMenu returns the menu, filtered by the optional category parameter.
func CafeMenu(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, menuResponse{
			Info:       d.Site.Cafe.Info,
			Categories: d.Site.Cafe.Categories,
			Items:      d.Site.Menu(r.URL.Query().Get("category")),
		})
	}
}
