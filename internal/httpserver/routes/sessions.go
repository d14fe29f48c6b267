package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/handlers"
)

func init() { Register(registerSessions) }

func registerSessions(r chi.Router, d deps.Deps) {
	api := r.With(d.APILimiter)
	api.Post("/api/sessions", handlers.CreateSession(d))
	api.Get("/api/sessions/{id}", handlers.GetSession(d))
	api.Patch("/api/sessions/{id}", handlers.UpdateSession(d))
	api.Delete("/api/sessions/{id}", handlers.DeleteSession(d))
	api.Post("/api/sessions/{id}/reload", handlers.ReloadSession(d))
}
