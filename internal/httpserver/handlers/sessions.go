package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	"github.com/MrSnakeDoc/bikeyard/internal/session"
)

const maxPatchBytes = 4 << 10

type sessionResponse struct {
	ID   string       `json:"id"`
	View catalog.View `json:"view"`
}

// CreateSession opens a session and runs its initial load. A failed load
// still creates the session, in the error state.
func CreateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Sessions.Create(r.Context())
		if err != nil {
			d.Logger.Warn("session create failed", logger.Error(err))
			writeError(w, sessionStatus(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, View: s.Model.Snapshot()})
	}
}

func GetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, err := d.Sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, sessionStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, View: s.Model.Snapshot()})
	}
}

// UpdateSession applies a partial update of the query controls.
// Controls are inert outside the ready state (409).
func UpdateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var p session.Patch
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPatchBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
			return
		}
		if p.Empty() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nothing to update"})
			return
		}

		view, err := d.Sessions.Update(r.Context(), id, p)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, sessionStatus(err), struct {
				errorResponse
				View catalog.View `json:"view"`
			}{errorResponse{Error: err.Error()}, view})
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: view})
	}
}

// ReloadSession refetches the session catalog. A failed fetch leaves the
// session in the error state and answers 503 with its view.
func ReloadSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		view, err := d.Sessions.Reload(r.Context(), id)
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, err)
		case err != nil:
			d.Logger.Warn("session reload failed", logger.String("session_id", id), logger.Error(err))
			writeJSON(w, sessionStatus(err), sessionResponse{ID: id, View: view})
		default:
			writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: view})
		}
	}
}

func DeleteSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, sessionStatus(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func sessionStatus(err error) int {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownSortKey):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrControlsInert):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrDiscarded):
		return http.StatusConflict
	case errors.As(err, &fe):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
