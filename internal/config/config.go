package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Reviews   ReviewsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
	AllowedOrigins    []string
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ReviewsListTTL time.Duration
	RatingStatsTTL time.Duration
	UserTTL        time.Duration
	UserCacheSize  int
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// ReviewsConfig holds review workflow settings
type ReviewsConfig struct {
	// AutoApprove publishes new reviews immediately instead of queueing them for moderation.
	AutoApprove bool
}

// RateLimitConfig holds limits for mutating endpoints, in limiter format ("30-M")
type RateLimitConfig struct {
	Mutations string
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("SERVER_TRUST_PROXY_HEADERS", false)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "northern_chefs")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_MIGRATIONS_DIR", "migrations")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("NATS_URL", "nats://localhost:4222")

	viper.SetDefault("CACHE_TTL_REVIEWS_LIST", "120s")
	viper.SetDefault("CACHE_TTL_RATING_STATS", "300s")
	viper.SetDefault("CACHE_TTL_USER", "60s")
	viper.SetDefault("CACHE_USER_SIZE", 10000)

	viper.SetDefault("AUTH_JWT_SECRET", "")
	viper.SetDefault("AUTH_ISSUER", "northern-chefs")

	viper.SetDefault("REVIEWS_AUTO_APPROVE", true)

	viper.SetDefault("RATE_LIMIT_MUTATIONS", "30-M")

	readTimeout, err := time.ParseDuration(viper.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(viper.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}

	requestTimeout, err := time.ParseDuration(viper.GetString("SERVER_REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_REQUEST_TIMEOUT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	reviewsListTTL, err := time.ParseDuration(viper.GetString("CACHE_TTL_REVIEWS_LIST"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_REVIEWS_LIST: %w", err)
	}

	ratingStatsTTL, err := time.ParseDuration(viper.GetString("CACHE_TTL_RATING_STATS"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_RATING_STATS: %w", err)
	}

	userTTL, err := time.ParseDuration(viper.GetString("CACHE_TTL_USER"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_USER: %w", err)
	}

	env := viper.GetString("ENV")
	jwtSecret := viper.GetString("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		if env == "production" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
		}
		jwtSecret = "development-secret"
	}

	allowedOriginsStr := viper.GetString("CORS_ALLOWED_ORIGINS")
	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:      env,
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:              viper.GetString("SERVER_PORT"),
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			ShutdownTimeout:   shutdownTimeout,
			RequestTimeout:    requestTimeout,
			AllowedOrigins:    allowedOrigins,
			TrustProxyHeaders: viper.GetBool("SERVER_TRUST_PROXY_HEADERS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			MigrationsDir:   viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Cache: CacheConfig{
			ReviewsListTTL: reviewsListTTL,
			RatingStatsTTL: ratingStatsTTL,
			UserTTL:        userTTL,
			UserCacheSize:  viper.GetInt("CACHE_USER_SIZE"),
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
			Issuer:    viper.GetString("AUTH_ISSUER"),
		},
		Reviews: ReviewsConfig{
			AutoApprove: viper.GetBool("REVIEWS_AUTO_APPROVE"),
		},
		RateLimit: RateLimitConfig{
			Mutations: viper.GetString("RATE_LIMIT_MUTATIONS"),
		},
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
