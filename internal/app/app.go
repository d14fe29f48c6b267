package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/bikeyard/internal/config"
	"github.com/MrSnakeDoc/bikeyard/internal/content"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver"
	"github.com/MrSnakeDoc/bikeyard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bikeyard/internal/index"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	"github.com/MrSnakeDoc/bikeyard/internal/pages"
	"github.com/MrSnakeDoc/bikeyard/internal/redis"
	"github.com/MrSnakeDoc/bikeyard/internal/scheduler"
	"github.com/MrSnakeDoc/bikeyard/internal/session"
	"github.com/MrSnakeDoc/bikeyard/internal/sources/catalogfile"
	"github.com/MrSnakeDoc/bikeyard/internal/sources/shopify"
	redisstore "github.com/MrSnakeDoc/bikeyard/internal/store/redis"
	"github.com/MrSnakeDoc/bikeyard/internal/utils"
	"github.com/MrSnakeDoc/bikeyard/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	syncer      *scheduler.RedisSyncer // nil when Redis is disabled
	reloader    *scheduler.CatalogReloader
	sweeper     *scheduler.SessionSweeper
	sessions    *session.Registry
}

// NewSource returns the upstream catalog source selected by the
// configuration, and its name.
func NewSource(cfg *config.Config, log logger.Logger) (domain.Source, string) {
	if cfg.UsesCatalogFile() {
		src := catalogfile.NewSource(cfg.CatalogFile, log)
		return src, src.Name()
	}
	client := shopify.NewClient(shopify.Options{
		StoreDomain: cfg.ShopifyStoreDomain,
		AccessToken: cfg.ShopifyAccessToken,
		APIVersion:  cfg.ShopifyAPIVersion,
		PageSize:    cfg.ShopifyPageSize,
		Timeout:     cfg.ShopifyTimeout,
	}, log)
	return client, client.Name()
}

// New wires every component. Only a configured but unreachable Redis fails.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	// The stores stay nil interfaces when Redis is disabled.
	var (
		store        *redisstore.Store
		catalogStore scheduler.CatalogStore
		queryStore   session.QueryStore
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")

		a.redisClient = client
		store = redisstore.NewStore(client, cfg.CatalogTTL, cfg.SessionIdleTTL)
		catalogStore = store
		queryStore = store
	} else {
		loggerClient.Info("redis not configured, catalog snapshot and session resume disabled")
	}

	memIndex := index.NewMemoryIndex()
	if catalogStore != nil {
		a.syncer = scheduler.NewRedisSyncer(catalogStore, memIndex, loggerClient)
	}

	upstream, sourceName := NewSource(cfg, loggerClient)
	loggerClient.Info("catalog source selected", logger.String("source", sourceName))

	reloadTrigger := make(chan struct{}, 1)
	a.reloader = scheduler.NewCatalogReloader(
		upstream,
		sourceName,
		catalogStore,
		memIndex,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	a.sessions = session.NewRegistry(a.reloader.Source(), queryStore, loggerClient, session.DefaultMaxSessions)
	a.sweeper = scheduler.NewSessionSweeper(a.sessions, loggerClient, cfg.SweepInterval, cfg.SessionIdleTTL)

	site, err := content.Load()
	if err != nil {
		return nil, err
	}
	renderer, err := pages.New(site, cfg.PlaceholderImage)
	if err != nil {
		return nil, err
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		SourceName:    sourceName,
		Catalog:       a.reloader.Source(),
		ReloadCatalog: a.reloader.Reload,
		MemoryIndex:   memIndex,
		Sessions:      a.sessions,
		Pages:         renderer,
		Site:          site,
		RedisStore:    store,
		FeaturedCount: cfg.FeaturedCount,
		ReloadTrigger: reloadTrigger,
	}
	a.server = httpserver.New(cfg, loggerClient, d)

	return a, nil
}

// Run starts the background jobs and the HTTP server, and blocks until ctx
// is cancelled or the server fails. Shutdown is graceful either way.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting Bike Yard %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Bike Yard %s", version.String())

	// Warm start: serve the last snapshot while the first upstream load runs
	if a.syncer != nil {
		if err := a.syncer.Sync(ctx); err != nil {
			a.logger.Warn("failed to sync catalog from redis on startup, waiting for upstream",
				logger.Error(err))
		}
	}

	a.reloader.Start(ctx)
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	a.sweeper.Start(ctx)
	a.logger.Info("session sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval),
		logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()

	a.reloader.Stop()
	a.sweeper.Stop()
	a.sessions.CloseAll()

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
	}

	if err != nil {
		return err
	}
	a.logger.Info("✅ Bike Yard stopped cleanly")
	return nil
}
