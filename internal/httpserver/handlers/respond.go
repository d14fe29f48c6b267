package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

type errorResponse struct {
	Error    string `json:"error"`
	Guidance string `json:"guidance,omitempty"`
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded answers 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		buf.WriteString(`{"error":"failed to encode response"}` + "\n")
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		resp.Guidance = fe.Guidance
	}
	writeJSON(w, status, resp)
}

// queryFromRequest reads the q, category and sort parameters.
// An unknown sort key is an error; blank values select the defaults.
func queryFromRequest(r *http.Request) (domain.Query, error) {
	params := r.URL.Query()
	sk, err := domain.ParseSortKey(params.Get("sort"))
	if err != nil {
		return domain.Query{}, err
	}
	return domain.Query{
		SearchTerm: params.Get("q"),
		Category:   params.Get("category"),
		SortKey:    sk,
	}.Normalize(), nil
}
