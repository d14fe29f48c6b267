package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/handlers"
)

func init() { Register(registerContent) }

func registerContent(r chi.Router, d deps.Deps) {
	api := r.With(d.APILimiter)
	api.Get("/api/navigation", handlers.Navigation(d))
	api.Get("/api/cafe/menu", handlers.CafeMenu(d))
}
