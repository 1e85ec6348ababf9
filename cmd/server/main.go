package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/abdullah0300/fleet-management-sub001/api"
	dbfs "github.com/abdullah0300/fleet-management-sub001/db"
	"github.com/abdullah0300/fleet-management-sub001/internal/cache"
	"github.com/abdullah0300/fleet-management-sub001/internal/config"
	"github.com/abdullah0300/fleet-management-sub001/internal/db"
	"github.com/abdullah0300/fleet-management-sub001/internal/fanout"
	"github.com/abdullah0300/fleet-management-sub001/internal/jobs"
	"github.com/abdullah0300/fleet-management-sub001/internal/metrics"
	"github.com/abdullah0300/fleet-management-sub001/internal/repository/sqlite"
	"github.com/abdullah0300/fleet-management-sub001/internal/service"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting fleet server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	sink := metrics.NewPrometheusSink(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Repositories
	repo := sqlite.New(conn, logger)

	// Optional redis-backed location cache
	var locationCache cache.LocationCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, running without location cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			locationCache = cache.NewRedisCache(client)
			defer client.Close()
		}
	}

	// Location fanout: the bus feeds the ref-counted hub, and the server
	// holds one attachment so the live view stays warm while it runs.
	bus := fanout.NewBus(cfg.Fanout.Buffer)
	hub := fanout.NewHub(bus,
		fanout.WithLogger(logger),
		fanout.WithMetrics(sink),
		fanout.WithStaleThreshold(cfg.Fanout.StaleThreshold),
	)
	detach := hub.Attach()
	defer detach()

	// Outbox worker pool
	queueRepo := jobs.NewRepository(conn)
	pool := jobs.NewWorkerPool(queueRepo, map[string]jobs.Handler{
		jobs.TypeHistoryAppend: jobs.HistoryAppendHandler(repo),
	}, logger, sink, cfg.Workers.Count)
	pool.Start(ctx)
	defer pool.Stop()

	// Services
	svc := api.Services{
		Locations: service.NewLocationService(repo, pool, bus, locationCache, sink, logger),
		Manifests: service.NewManifestService(repo, logger),
		Documents: service.NewDocumentService(repo, cfg.Documents.WarningWindow, sink, logger),
		Hub:       hub,
	}

	// Periodic document-expiry scan
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Documents.ScanSchedule, func() {
		if _, err := svc.Documents.ScanExpiring(ctx); err != nil {
			logger.Error("document expiry scan failed", "err", err)
		}
	}); err != nil {
		log.Fatalf("Invalid document scan schedule %q: %v", cfg.Documents.ScanSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.SetupRoutes(cfg, version, buildTime, repo, svc, metricsHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		logger.Error("error closing DB", "err", err)
	}

	logger.Info("server exited")
}
