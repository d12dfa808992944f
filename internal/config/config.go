package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"referralhub/internal/appinfo"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Cleanup   CleanupConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	AllowedOrigins  []string

	// Basic auth for /swagger in production; empty leaves it open
	SwaggerUser     string
	SwaggerPassword string
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	AutoMigrate        bool

	// Connect retry
	ConnectTimeout   time.Duration
	MaxRetryAttempts int
	RetryBackoff     time.Duration
}

// AuthConfig holds token and password hashing settings
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	JWTIssuer  string
	BCryptCost int
}

// CacheConfig selects the principal cache backend
type CacheConfig struct {
	Provider        string // "memory" or "redis"
	RedisURL        string
	UserTTL         time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
}

// RateLimitConfig controls per-client request throttling
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// CleanupConfig controls the rejected-referral sweep
type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
	MaxAge   time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, loading .env files first
func Load() (*Config, error) {
	env := appinfo.Environment()
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		}
		_ = godotenv.Load() // .env never overrides values already set
	}

	config := &Config{
		Server:    loadServerConfig(env),
		Database:  loadDatabaseConfig(env),
		Auth:      loadAuthConfig(),
		Cache:     loadCacheConfig(),
		RateLimit: loadRateLimitConfig(env),
		Cleanup:   loadCleanupConfig(),
		Logging:   loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "8000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		AllowedOrigins:  getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SwaggerUser:     getEnv("SWAGGER_USERNAME", ""),
		SwaggerPassword: getEnv("SWAGGER_PASSWORD", ""),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
		AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", 5),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", 500*time.Millisecond),
	}

	if env == "production" {
		config.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", 50)
		config.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", 25)
	}

	return config
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTExpiry:  getDurationEnv("JWT_EXPIRY", 5*24*time.Hour),
		JWTIssuer:  getEnv("JWT_ISSUER", "referralhub"),
		BCryptCost: getIntEnv("BCRYPT_COST", 10),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:        strings.ToLower(getEnv("CACHE_PROVIDER", "memory")),
		RedisURL:        getEnv("REDIS_URL", ""),
		UserTTL:         getDurationEnv("CACHE_USER_TTL", 5*time.Minute),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

func loadRateLimitConfig(env string) RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", env != "test"),
		RequestsPerSecond: getFloat64Env("RATE_LIMIT_RPS", 20),
		Burst:             getIntEnv("RATE_LIMIT_BURST", 40),
	}
}

func loadCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Enabled:  getBoolEnv("CLEANUP_ENABLED", true),
		Interval: getDurationEnv("CLEANUP_INTERVAL", time.Hour),
		MaxAge:   getDurationEnv("CLEANUP_MAX_AGE", 24*time.Hour),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if c.Cache.Provider != "memory" && c.Cache.Provider != "redis" {
		return fmt.Errorf("cache config: unsupported provider %q", c.Cache.Provider)
	}

	if c.Cleanup.Enabled && c.Cleanup.Interval <= 0 {
		return fmt.Errorf("cleanup config: CLEANUP_INTERVAL must be positive")
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	return nil
}

func (a *AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloat64Env(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
