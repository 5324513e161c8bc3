package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/despensa/planner-service/config"
	"github.com/despensa/planner-service/internal/database"
	"github.com/despensa/planner-service/internal/handlers"
	"github.com/despensa/planner-service/internal/middleware"
	"github.com/despensa/planner-service/internal/optimizer"
	"github.com/despensa/planner-service/internal/planner"
	"github.com/despensa/planner-service/internal/pricecache"
	"github.com/despensa/planner-service/internal/storage"
	"github.com/despensa/planner-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting planner service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.ConfigFromEnv())
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	docStore, err := storage.NewLocalStore(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Storage.BasePath).Msg("Failed to open data directory")
	}

	cacheStore, closeDB, err := buildCacheStore(ctx, cfg, docStore, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize price store")
	}
	defer closeDB()

	cache, err := pricecache.New(ctx, cacheStore, cfg.Cache.TTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load price cache")
	}

	plannerSvc := planner.New(cache, docStore, optimizer.DefaultConfig())
	handlers.Init(plannerSvc, cache, docStore)

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, cfg, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.Auth.InternalAPIKey))
	{
		internal.GET("/health", handlers.HealthCheck)
		internal.GET("/markets", handlers.ListMarkets)

		plan := internal.Group("/plan")
		{
			plan.POST("/compare", handlers.ComparePlan)
			plan.POST("/export", handlers.ExportPlan)
		}

		priceCache := internal.Group("/cache")
		{
			priceCache.POST("/update", handlers.CacheUpdate)
			priceCache.POST("/import", handlers.CacheImport)
			priceCache.GET("/entry", handlers.CacheEntry)
			priceCache.GET("/search", handlers.CacheSearch)
			priceCache.GET("/stats", handlers.CacheStats)
			priceCache.GET("/expired", handlers.CacheExpired)
		}

		lists := internal.Group("/lists")
		{
			lists.GET("/weekly", handlers.WeeklyList)
			lists.GET("/bulk", handlers.BulkList)
			lists.GET("/physical", handlers.PhysicalList)
			lists.GET("/triage", handlers.TriageList)
		}

		consumption := internal.Group("/consumption")
		{
			consumption.POST("/purchase", handlers.RecordPurchase)
			consumption.GET("/check-stock", handlers.CheckStock)
			consumption.POST("/feedback", handlers.Feedback)
			consumption.GET("/predict", handlers.Predict)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// buildCacheStore picks the price snapshot backend: Postgres when a database
// URL is configured, the local document store otherwise.
func buildCacheStore(ctx context.Context, cfg *config.Config, docStore storage.DocumentStore, logger *zerolog.Logger) (pricecache.Store, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info().Msg("Price cache backed by local document store")
		return pricecache.NewLocalStore(docStore), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolConfig{
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	store, err := pricecache.NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info().Msg("Price cache backed by Postgres")
	return store, pool.Close, nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "planner-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, cfg *config.Config, logger *zerolog.Logger) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Internal-API-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.RateLimit(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.RequestsPerSecond),
		BurstSize:         cfg.RateLimit.Burst,
	}))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
