package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/tasks"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/firebase"
)

const (
	pageCacheBytes  = 64 << 20
	redisPagePrefix = "yatube:pages"
)

func main() {
	// Booting screen
	fmt.Println(color.YellowString("__   __    _         _          \n\\ \\ / /_ _| |_ _   _| |__   ___ \n \\ V / _` | __| | | | '_ \\ / _ \\\n  | | (_| | |_| |_| | |_) |  __/\n  |_|\\__,_|\\__|\\__,_|_.__/ \\___|"))
	fmt.Printf("%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Yatube"))
	fmt.Printf("Posts, groups, comments and subscriptions\n")
	color.HiBlack("=====================================================\n")

	// Load configuration
	cfg := config.Load()
	config.InitLogger(cfg)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	if err := config.RunMigration(db.SQL); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration")
	}

	ctx := context.Background()

	images, err := storage.Open(cfg.StorageDriver, cfg.MediaRoot, db.MongoDatabase(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	pages, closePages, err := newPageCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize page cache")
	}
	defer closePages()

	// Firebase login is optional
	verifier, err := firebase.NewTokenVerifier(ctx, cfg)
	if errors.Is(err, firebase.ErrDisabled) {
		log.Info().Msg("Firebase login is disabled")
	} else if err != nil {
		log.Error().Err(err).Msg("Firebase login is disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	e, err := router.New(router.Dependencies{
		DB:            db.SQL,
		Images:        images,
		PageCache:     pages,
		PageCacheTTL:  cfg.PageCacheTTL,
		Metrics:       m,
		Firebase:      verifier,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.IsProduction(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	// Configure timed tasks
	quartz := tasks.NewScheduler()
	sweeper := tasks.NewImageSweeper(repositories.NewPostgresPostRepository(db.SQL), images)
	if err := sweeper.Schedule(quartz); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule image sweep")
	}
	quartz.Start()

	metricsServer := metrics.NewHTTPServer(cfg.MetricsPort, registry)
	metricsServer.Start()

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-quartz.Stop().Done()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown failed")
	}
}

func newPageCache(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.CacheDriver {
	case "memory":
		store, err := cache.NewMemoryStore(pageCacheBytes)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "redis":
		store, err := cache.NewRedisStore(cfg.RedisURL, redisPagePrefix)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis connection")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_DRIVER %q", cfg.CacheDriver)
	}
}
