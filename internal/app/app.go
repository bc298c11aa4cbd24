package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/creations-works/badgeapi/internal/badge"
	"github.com/creations-works/badgeapi/internal/config"
	"github.com/creations-works/badgeapi/internal/fetch"
	"github.com/creations-works/badgeapi/internal/httpserver"
	"github.com/creations-works/badgeapi/internal/httpserver/deps"
	"github.com/creations-works/badgeapi/internal/logger"
	"github.com/creations-works/badgeapi/internal/redis"
	"github.com/creations-works/badgeapi/internal/scheduler"
	"github.com/creations-works/badgeapi/internal/source"
	redisstore "github.com/creations-works/badgeapi/internal/store/redis"
	"github.com/creations-works/badgeapi/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	refresher   *scheduler.BadgeRefresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
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
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Source registry, with optional YAML URL overrides
	registry, err := source.NewLoader(cfg.SourceFile).Load()
	if err != nil {
		loggerClient.Errorf("Failed to load badge sources: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("badge sources loaded",
		logger.Int("sources", len(registry.Names())))

	store := redisstore.NewStore(redisClient, cfg.CacheTTL, loggerClient)
	client := fetch.New(cfg.HTTPTimeout, cfg.HTTPRetryMax, cfg.UserAgent)

	refresher := scheduler.NewBadgeRefresher(registry, store, client, loggerClient, cfg.RefreshInterval)
	aggregator := badge.NewAggregator(registry, store, refresher, client, cfg.DiscordToken, loggerClient)

	if cfg.DiscordToken == "" {
		loggerClient.Warn("BADGE_DISCORD_TOKEN not set, discord source will return no badges")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		TrustProxy:      cfg.TrustProxy,
		RepositoryURL:   "https://git.creations.works/creations/badgeAPI",
		RefreshInterval: cfg.RefreshInterval,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RedisClient:     redisClient,
		Registry:        registry,
		Aggregator:      aggregator,
		Refresher:       refresher,
		Store:           store,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting BadgeAPI v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("BadgeAPI %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start bulk refresher (warms stale datasets, then periodic sweeps)
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start badge refresher: %w", err)
	}
	a.logger.Info("badge refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ BadgeAPI stopped cleanly")
	return nil
}
