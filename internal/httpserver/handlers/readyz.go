package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Products int    `json:"products"`
	Error    string `json:"error,omitempty"`
}

// Readyz reports ready once a catalog snapshot is loaded in the index.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Ready:    d.MemoryIndex.Loaded(),
			Products: d.MemoryIndex.Count(),
		}
		if fe, _ := d.MemoryIndex.LastError(); fe != nil {
			resp.Error = fe.Error()
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
