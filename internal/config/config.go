package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog source
	ShopifyStoreDomain string        // ex: "bike-yard.myshopify.com"
	ShopifyAccessToken string        // storefront access token
	ShopifyAPIVersion  string        // ex: "2024-10"
	ShopifyPageSize    int           // products per GraphQL page (max 250)
	ShopifyTimeout     time.Duration // timeout of one catalog fetch (all pages)
	CatalogFile        string        // optional local YAML catalog, overrides Shopify when set
	ReloadInterval     time.Duration // periodic catalog refresh (0 = disabled, manual reload only)

	// Storefront
	FeaturedCount    int           // products shown on the home page
	PlaceholderImage string        // image used when a product has none
	SessionIdleTTL   time.Duration // idle catalog sessions are closed after this
	SweepInterval    time.Duration // interval of the session sweeper

	// Redis (optional, empty address = disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	CatalogTTL          time.Duration // TTL of the catalog snapshot kept in Redis

	// API rate limiting
	RateLimitBurst     int // requests allowed in a burst per client IP
	RateLimitPerMinute int // refill rate per client IP

	CORSOrigins  []string // optional, browser origins allowed to call the API (empty = any)
	AllowedHosts []string // optional, restrict /reload to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// UsesCatalogFile reports whether the local YAML catalog replaces Shopify.
func (c *Config) UsesCatalogFile() bool { return c.CatalogFile != "" }

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

// Load reads the configuration from the environment, after loading the
// optional dotenv file (BIKEYARD_ENV_FILE, default ".env").
// Missing required values panic at boot.
func Load() *Config {
	loadDotenv(getenv("BIKEYARD_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BIKEYARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BIKEYARD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("BIKEYARD_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("BIKEYARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BIKEYARD_PRETTY_LOG", true),

		// Catalog source
		CatalogFile:       getenv("BIKEYARD_CATALOG_FILE", ""),
		ShopifyAPIVersion: getenv("BIKEYARD_SHOPIFY_API_VERSION", "2024-10"),
		ShopifyPageSize:   clampInt(getenvInt("BIKEYARD_SHOPIFY_PAGE_SIZE", 100), 1, 250),
		ShopifyTimeout:    mustDuration("BIKEYARD_SHOPIFY_TIMEOUT", 10*time.Second),
		ReloadInterval:    mustDuration("BIKEYARD_RELOAD_INTERVAL", 0),

		// Storefront
		FeaturedCount:    getenvInt("BIKEYARD_FEATURED_COUNT", 6),
		PlaceholderImage: getenv("BIKEYARD_PLACEHOLDER_IMAGE", "/static/placeholder.svg"),
		SessionIdleTTL:   mustDuration("BIKEYARD_SESSION_IDLE_TTL", 30*time.Minute),
		SweepInterval:    mustDuration("BIKEYARD_SESSION_SWEEP_INTERVAL", time.Minute),

		// Redis settings
		RedisAddr:           getenv("BIKEYARD_REDIS_ADDR", ""),
		RedisUser:           getenv("BIKEYARD_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("BIKEYARD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("BIKEYARD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		CatalogTTL:          mustDuration("BIKEYARD_CATALOG_TTL", 48*time.Hour),

		// Rate limiting
		RateLimitBurst:     getenvInt("BIKEYARD_RATE_LIMIT_BURST", 60),
		RateLimitPerMinute: getenvInt("BIKEYARD_RATE_LIMIT_PER_MINUTE", 120),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("BIKEYARD_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("BIKEYARD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("BIKEYARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("BIKEYARD_TRUST_PROXY", false),
	}

	// Shopify credentials are only required when no local catalog is configured
	if !cfg.UsesCatalogFile() {
		cfg.ShopifyStoreDomain = normalizeStoreDomain(requireEnv("BIKEYARD_SHOPIFY_STORE_DOMAIN"))
		cfg.ShopifyAccessToken = requireEnv("BIKEYARD_SHOPIFY_ACCESS_TOKEN")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.ShopifyAccessToken != "" {
		cp.ShopifyAccessToken = "***REDACTED***"
	}
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// loadDotenv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotenv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] failed to load env file %s: %v", path, err)
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// normalizeStoreDomain strips scheme and trailing slashes.
// Example: "https://bike-yard.myshopify.com/" -> "bike-yard.myshopify.com"
func normalizeStoreDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}
