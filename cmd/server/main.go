// @title           ReferralHub API
// @version         1.0
// @description     Job seekers post jobs they want a referral for; employers offer referrals.

// @BasePath  /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-auth-token
// @description JWT issued by POST /api/users or POST /api/auth. "Authorization: Bearer <token>" is accepted too.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"referralhub/internal/appinfo"
	"referralhub/internal/cache"
	"referralhub/internal/config"
	"referralhub/internal/database"
	"referralhub/internal/middleware"
	"referralhub/internal/response"
	"referralhub/internal/router"
	"referralhub/internal/scheduler"
	"referralhub/internal/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting ReferralHub",
		zap.String("version", appinfo.GetVersion()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	dbManager, err := database.NewManager(ctx, &cfg.Database, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Create cache
	cacheInstance, err := cache.NewCache(&cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.UserTTL,
		MaxKeys:         cfg.Cache.MaxKeys,
		CleanupInterval: cfg.Cache.CleanupInterval,
		RedisURL:        cfg.Cache.RedisURL,
		PoolSize:        cache.DefaultConfig().PoolSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	// Initialize services
	serviceCollection, err := services.NewServiceCollection(dbManager, cacheInstance, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Rejected-referral sweep
	var cleanup *scheduler.CleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup, err = scheduler.NewCleanupScheduler(serviceCollection.GetReferralService(), cfg.Cleanup.Interval, logger)
		if err != nil {
			logger.Fatal("Failed to create cleanup scheduler", zap.Error(err))
		}
		cleanup.Start(context.Background())
	}

	// Rate limiter
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimitConfig := middleware.DefaultRateLimiterConfig()
		rateLimitConfig.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateLimitConfig.Burst = cfg.RateLimit.Burst
		rateLimiter = middleware.NewRateLimiter(rateLimitConfig, logger)
	}

	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = cfg.IsDevelopment()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	authMiddleware := middleware.NewAuthMiddleware(serviceCollection.GetAuthService(), logger)

	handler := router.SetupRouter(serviceCollection, authMiddleware, responseBuilder, router.Options{
		AllowedOrigins:       cfg.Server.AllowedOrigins,
		SlowRequestThreshold: 2 * time.Second,
		RateLimiter:          rateLimiter,
		SwaggerUser:          cfg.Server.SwaggerUser,
		SwaggerPassword:      cfg.Server.SwaggerPassword,
	}, logger)

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if cleanup != nil {
		if err := cleanup.Stop(shutdownCtx); err != nil {
			logger.Warn("Cleanup scheduler did not stop in time", zap.Error(err))
		}
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}

	metrics := dbManager.Metrics()
	logger.Info("Final database metrics",
		zap.Int64("total_queries", metrics.QueryCount),
		zap.Int64("slow_queries", metrics.SlowQueryCount),
	)

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down services", zap.Error(err))
	}

	logger.Info("Application shutdown completed")
}

// initLogger initializes the structured logger based on environment
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config

	switch cfg.Server.Environment {
	case "production":
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// LOG_LEVEL and LOG_FORMAT refine the environment preset
	if cfg.Logging.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Logging.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json":
		zc.Encoding = "json"
		zc.EncoderConfig = zap.NewProductionEncoderConfig()
	case "console":
		zc.Encoding = "console"
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
