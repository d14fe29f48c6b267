package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/content"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/index"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	"github.com/MrSnakeDoc/bikeyard/internal/pages"
	"github.com/MrSnakeDoc/bikeyard/internal/session"
	redisstore "github.com/MrSnakeDoc/bikeyard/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time                // for testing, defaults to time.Now
	AllowedHosts  []string                        // Host headers allowed to call /reload
	AllowedCIDRS  []string                        // IPs allowed to access ops endpoints
	TrustProxy    bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	SourceName    string                          // "shopify" or "file"
	Catalog       domain.Source                   // catalog source of the view-models
	ReloadCatalog func(ctx context.Context) error // synchronous upstream refetch
	MemoryIndex   *index.MemoryIndex              // In-memory catalog snapshot
	Sessions      *session.Registry               // live catalog sessions
	Pages         *pages.Renderer                 // HTML pages
	Site          *content.Site                   // navigation, footer and cafe menu
	RedisStore    *redisstore.Store               // nil when Redis is disabled
	FeaturedCount int                             // products shown on the home page
	ReloadTrigger chan struct{}                   // Channel to trigger a background catalog reload
	APILimiter    func(http.Handler) http.Handler // per-IP rate limit of /api, set by the server
}
