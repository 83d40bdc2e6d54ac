package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	DatabaseURL     string
	Redis           RedisConfig
	CatalogCacheTTL time.Duration
	RateLimit       RateLimitConfig
	LogLevel        string
}

// RateLimitConfig bounds saved-item writes per user.
type RateLimitConfig struct {
	Disabled    bool
	SavedWrites int
	Window      time.Duration
}

// RedisConfig configures the Redis client used for visitor-local state.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client captures configuration for a storefront session talking to the API.
type Client struct {
	APIBaseURL      string
	Token           string
	Visitor         string
	RequestTimeout  time.Duration
	SyncConcurrency int
	LocalStateTTL   time.Duration
	Redis           RedisConfig
	LogLevel        string
}

// DefaultSyncConcurrency bounds parallel saved-item sync calls in one pass.
const DefaultSyncConcurrency = 4

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BEATSTORE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            addr,
		JWTSigningKey:   jwtSigningKey,
		JWTIssuer:       stringEnv("JWT_ISSUER", "beatstore"),
		JWTAudience:     stringEnv("JWT_AUDIENCE", "beatstore-api"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Redis:           redisFromEnv(),
		CatalogCacheTTL: durationEnv("CATALOG_CACHE_TTL", 5*time.Minute),
		RateLimit: RateLimitConfig{
			Disabled:    os.Getenv("RATE_LIMIT_DISABLED") == "true",
			SavedWrites: intEnv("RATE_LIMIT_SAVED_WRITES", 120),
			Window:      durationEnv("RATE_LIMIT_WINDOW", time.Minute),
		},
		LogLevel: os.Getenv("LOG_LEVEL"),
	}
}

// ClientFromEnv builds the storefront session configuration.
func ClientFromEnv() Client {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return Client{
		APIBaseURL:      baseURL,
		Token:           os.Getenv("SHOPPER_TOKEN"),
		Visitor:         stringEnv("SHOPPER_VISITOR", "default"),
		RequestTimeout:  durationEnv("API_REQUEST_TIMEOUT", 10*time.Second),
		SyncConcurrency: intEnv("SYNC_CONCURRENCY", DefaultSyncConcurrency),
		LocalStateTTL:   durationEnv("LOCAL_STATE_TTL", 30*24*time.Hour),
		Redis:           redisFromEnv(),
		LogLevel:        os.Getenv("LOG_LEVEL"),
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
		MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
