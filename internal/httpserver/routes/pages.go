package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bikeyard/internal/pages"
)

func init() { Register(registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.HomePage(d))
	r.Get("/products", handlers.ProductsPage(d))
	r.With(d.APILimiter).Post("/products/reload", handlers.ReloadProductsPage(d))
	r.Get("/cafe", handlers.CafePage(d))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(pages.Static())))
}
