package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	redisstore "github.com/MrSnakeDoc/bikeyard/internal/store/redis"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ProductsLoaded *int   `json:"products_loaded,omitempty"`
	Sessions       *int   `json:"sessions,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Snapshot       string `json:"snapshot,omitempty"`
	Source         string `json:"source,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
	Guidance       string `json:"guidance,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog":  catalogStatus(d),
			"redis":    checkRedis(r.Context(), d),
			"sessions": sessionsStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func catalogStatus(d deps.Deps) componentStatus {
	count := d.MemoryIndex.Count()
	lastReload := d.MemoryIndex.GetLastReload()
	lastReloadStr := "never"
	if !lastReload.IsZero() {
		lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
	}

	st := componentStatus{
		OK:             d.MemoryIndex.Loaded(),
		ProductsLoaded: &count,
		LastReload:     lastReloadStr,
		Source:         d.SourceName,
	}
	if fe, at := d.MemoryIndex.LastError(); fe != nil {
		st.Error = fe.Error()
		st.Guidance = fe.Guidance
		st.LastReload = "failed at " + at.Format("2006-01-02 15:04:05")
	}
	return st
}

func sessionsStatus(d deps.Deps) componentStatus {
	n := d.Sessions.Count()
	return componentStatus{OK: true, Sessions: &n}
}

// determineMode: no catalog is critical, Redis down is degraded.
func determineMode(components map[string]componentStatus) string {
	if c, ok := components["catalog"]; ok && !c.OK {
		return "critical"
	}
	if r, ok := components["redis"]; ok && !r.OK && r.Mode != "disabled" {
		return "degraded"
	}
	return "operational"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisStore == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "no-warm-start-no-session-resume",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisStore.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "no-warm-start-no-session-resume",
			Error:  err.Error(),
		}
	}

	st := componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "warm-start-and-session-resume",
	}
	if n, err := d.RedisStore.CountSessions(ctx); err == nil {
		st.Sessions = &n
	}
	switch meta, err := d.RedisStore.GetCatalogMeta(ctx); {
	case errors.Is(err, redisstore.ErrNoSnapshot):
		st.Snapshot = "none"
	case err == nil:
		st.Snapshot = fmt.Sprintf("%d products from %s at %s",
			meta.Count, meta.Source, meta.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return st
}
