package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"exdollarium-calculator/internal/adapter/cache"
	httpRouter "exdollarium-calculator/internal/adapter/http"
	"exdollarium-calculator/internal/adapter/repository"
	"exdollarium-calculator/internal/calculator"
	"exdollarium-calculator/internal/config"
	"exdollarium-calculator/internal/domain/ports"
	"exdollarium-calculator/internal/metrics"
	"exdollarium-calculator/internal/service"
	"exdollarium-calculator/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(os.Getenv("LOG_LEVEL")).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("Starting exdollarium calculator service")

	appMetrics := metrics.NewMetrics()
	catalogCache, closeCache := newCatalogCache(cfg.Cache, log)
	defer closeCache()

	catalogRepo := repository.NewCatalogAPI(
		cfg.CatalogAPI.BaseURL,
		cfg.CatalogAPI.Timeout,
		cfg.CatalogAPI.MaxRetries,
		log,
	)

	catalogService := service.NewCatalogService(catalogRepo, catalogCache, appMetrics, log)
	formatter := calculator.NewFormatter(cfg.Display.Locale)
	handler := httpRouter.NewHandler(catalogService, formatter, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelRefresh := context.WithCancel(context.Background())
	go refreshCatalog(ctx, catalogService, cfg.CatalogAPI.RefreshRate, log)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port, "catalog_url", catalogRepo.URL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

func newCatalogCache(cfg config.CacheConfig, log *logger.Logger) (ports.CatalogCache, func()) {
	if cfg.Backend != "redis" {
		return cache.NewMemoryCache(cfg.TTL, log), func() {}
	}

	redisCache := cache.NewRedisCache(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.RedisPrefix, cfg.TTL, log)
	log.Info("Using redis catalog cache", "addr", cfg.RedisAddr)

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.Error("Failed to close redis client", "error", err)
		}
	}
}

// refreshCatalog loads the catalog at startup and then every interval. A
// zero interval disables the periodic refresh.
func refreshCatalog(ctx context.Context, catalogService *service.CatalogService, interval time.Duration, log *logger.Logger) {
	if err := catalogService.Refresh(ctx); err != nil {
		log.Error("Failed to load service catalog at startup", "error", err)
	}

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := catalogService.Refresh(ctx); err != nil {
				log.Error("Failed to refresh service catalog", "error", err)
			}
		case <-ctx.Done():
			log.Info("Stopping catalog refresh goroutine")
			return
		}
	}
}
