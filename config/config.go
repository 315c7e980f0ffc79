package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every setting of the shoplist application, loaded from the
// environment in LoadConfig.
type Config struct {
	// General
	Port        string
	Environment string
	LogLevel    string

	// Database (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr    string
	CacheTimeout time.Duration

	// Browser sessions
	SessionKey string

	// JSON API security (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Catalog listing
	PageSize int
	// AdminManagesProducts decides whether the admin role is part of the
	// manager set for product mutations, on top of sales_executive.
	AdminManagesProducts bool

	// Media uploads (product images)
	MediaDir string

	// Rate limiting for the auth endpoints
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout: getDurationEnv("CACHE_TIMEOUT_SEC", 10) * time.Second,

		SessionKey: mustGetEnv("SESSION_KEY"),

		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		PageSize:             getIntEnv("PAGE_SIZE", 6),
		AdminManagesProducts: getBoolEnv("ADMIN_MANAGES_PRODUCTS", true),

		MediaDir: getEnv("MEDIA_DIR", "./media"),

		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("configuration error: environment variable %s must be set", key)
	return ""
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("warning: value of %s (%q) is not a valid integer, using default %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getBoolEnv(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("warning: value of %s (%q) is not a valid boolean, using default %v", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
