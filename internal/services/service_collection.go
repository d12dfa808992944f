// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"referralhub/internal/appinfo"
	"referralhub/internal/cache"
	"referralhub/internal/config"
	"referralhub/internal/database"
	"referralhub/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds the application services and the infrastructure they share
type ServiceCollection struct {
	// Core Services
	AuthService     AuthService     `json:"-"`
	UserService     UserService     `json:"-"`
	JobService      JobService      `json:"-"`
	ReferralService ReferralService `json:"-"`

	// Repository Collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure Components
	Cache     cache.Cache       `json:"-"`
	Users     *UserCache        `json:"-"`
	Tokens    *TokenManager     `json:"-"`
	Logger    *zap.Logger       `json:"-"`
	Config    *config.Config    `json:"-"`
	DBManager *database.Manager `json:"-"`

	startTime time.Time
	mu        sync.RWMutex
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Uptime       string                   `json:"uptime"`
	Version      string                   `json:"version"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of an individual dependency
type ServiceStatus struct {
	Name         string                 `json:"name"`
	Status       string                 `json:"status"` // healthy, unhealthy
	ResponseTime time.Duration          `json:"response_time"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewServiceCollection wires repositories, the user cache and the services
func NewServiceCollection(
	dbManager *database.Manager,
	backend cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository collection: %w", err)
	}

	collection := NewServiceCollectionFromRepositories(
		repos.User, repos.Job, repos.Referral, backend, cfg, logger,
	)
	collection.Repositories = repos
	collection.DBManager = dbManager

	logger.Info("Service collection initialized successfully",
		zap.String("cache_provider", cfg.Cache.Provider),
		zap.Duration("rejected_max_age", cfg.Cleanup.MaxAge),
	)
	return collection, nil
}

// NewServiceCollectionFromRepositories wires services over the given repositories
func NewServiceCollectionFromRepositories(
	userRepo repositories.UserRepository,
	jobRepo repositories.JobRepository,
	referralRepo repositories.ReferralRepository,
	backend cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceCollection {
	users := NewUserCache(backend, cfg.Cache.UserTTL, logger)
	tokens := NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	return &ServiceCollection{
		AuthService:     NewAuthService(userRepo, users, tokens, cfg.Auth.BCryptCost, logger),
		UserService:     NewUserService(userRepo, users, logger),
		JobService:      NewJobService(jobRepo, userRepo, logger),
		ReferralService: NewReferralService(referralRepo, jobRepo, userRepo, cfg.Cleanup.MaxAge, logger),
		Cache:           backend,
		Users:           users,
		Tokens:          tokens,
		Logger:          logger,
		Config:          cfg,
		startTime:       time.Now(),
	}
}

// ===============================
// SERVICE ACCESS METHODS
// ===============================

// GetAuthService returns the auth service
func (sc *ServiceCollection) GetAuthService() AuthService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.AuthService
}

// GetUserService returns the user service
func (sc *ServiceCollection) GetUserService() UserService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.UserService
}

// GetJobService returns the job service
func (sc *ServiceCollection) GetJobService() JobService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.JobService
}

// GetReferralService returns the referral service
func (sc *ServiceCollection) GetReferralService() ReferralService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ReferralService
}

// ===============================
// HEALTH
// ===============================

// HealthCheck probes the database and the cache
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]ServiceStatus),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Version:      appinfo.GetVersion(),
	}

	if sc.DBManager != nil {
		dbHealth := sc.DBManager.Health(ctx)
		status := ServiceStatus{
			Name:         "database",
			Status:       dbHealth.Status,
			ResponseTime: dbHealth.ResponseTime,
			Metadata: map[string]interface{}{
				"query_count":      dbHealth.Metrics.QueryCount,
				"slow_query_count": dbHealth.Metrics.SlowQueryCount,
			},
		}
		if len(dbHealth.Errors) > 0 {
			status.Error = dbHealth.Errors[0]
		}
		health.Dependencies["database"] = status
	}

	if sc.Cache != nil {
		health.Dependencies["cache"] = sc.checkCacheHealth(ctx)
	}

	for name, dep := range health.Dependencies {
		if dep.Status != "healthy" {
			health.Status = "unhealthy"
			health.Issues = append(health.Issues, fmt.Sprintf("%s: %s", name, dep.Error))
		}
	}

	return health
}

func (sc *ServiceCollection) checkCacheHealth(ctx context.Context) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: "cache", Status: "healthy"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sc.Cache.Health(checkCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else if stats, err := sc.Cache.Stats(checkCtx); err == nil {
		status.Metadata = map[string]interface{}{
			"provider":  stats.Provider,
			"keys":      stats.Keys,
			"hit_ratio": stats.HitRatio,
		}
	}

	status.ResponseTime = time.Since(start)
	return status
}

// ===============================
// LIFECYCLE
// ===============================

// Shutdown closes the cache and the database
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var shutdownErrors []error

	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if sc.DBManager != nil {
		if err := sc.DBManager.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		for _, err := range shutdownErrors {
			sc.Logger.Error("Shutdown error", zap.Error(err))
		}
		return fmt.Errorf("shutdown completed with %d errors", len(shutdownErrors))
	}

	sc.Logger.Info("Service collection shutdown completed successfully")
	return nil
}
