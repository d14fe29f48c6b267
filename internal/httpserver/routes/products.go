package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/handlers"
)

func init() { Register(registerProducts) }

func registerProducts(r chi.Router, d deps.Deps) {
	api := r.With(d.APILimiter)
	api.Get("/api/products", handlers.Products(d))
	api.Get("/api/products/{id}", handlers.Product(d))
	api.Get("/api/categories", handlers.Categories(d))
	api.Get("/api/sort-keys", handlers.SortKeys(d))
}
