package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	ServerPort    string
	DatabaseURL   string
	RedisURL      string
	RedisPoolSize int
	JWTSecret     string
	JWTExpiry     time.Duration
	LogLevel      string
	PushEndpoint  string
	AuthRateLimit int
}

func LoadConfig() (*Config, error) {
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPoolSize: getInt("REDIS_POOL_SIZE", 10),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiry:     expiry,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PushEndpoint:  getEnv("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send"),
		AuthRateLimit: getInt("AUTH_RATE_LIMIT", 10),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// ClientConfig configures the headless Peep client.
type ClientConfig struct {
	DatabaseURL       string
	RedisURL          string
	RedisPoolSize     int
	UserID            uuid.UUID
	BroadcastInterval time.Duration
	AlertDuration     time.Duration
	SensorPath        string
	GrantPath         string
	OwnPackage        string
	AppState          string
	StatusCacheTTL    time.Duration
	LogLevel          string
}

func LoadClientConfig() (*ClientConfig, error) {
	interval, err := time.ParseDuration(getEnv("PEEP_BROADCAST_INTERVAL", "30s"))
	if err != nil || interval <= 0 {
		return nil, errors.New("invalid PEEP_BROADCAST_INTERVAL format")
	}
	alertDuration, err := time.ParseDuration(getEnv("PEEP_ALERT_DURATION", "3s"))
	if err != nil {
		return nil, errors.New("invalid PEEP_ALERT_DURATION format")
	}
	cacheTTL, err := time.ParseDuration(getEnv("PEEP_STATUS_CACHE_TTL", "5m"))
	if err != nil {
		return nil, errors.New("invalid PEEP_STATUS_CACHE_TTL format")
	}

	cfg := &ClientConfig{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		RedisPoolSize:     getInt("REDIS_POOL_SIZE", 4),
		BroadcastInterval: interval,
		AlertDuration:     alertDuration,
		SensorPath:        getEnv("PEEP_SENSOR_FILE", "foreground_app"),
		GrantPath:         getEnv("PEEP_SENSOR_GRANT", "usage_access_granted"),
		OwnPackage:        getEnv("PEEP_OWN_PACKAGE", "com.anonymous.peep"),
		AppState:          getEnv("PEEP_APP_STATE", "active"),
		StatusCacheTTL:    cacheTTL,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	userID, err := uuid.Parse(os.Getenv("PEEP_USER_ID"))
	if err != nil {
		return nil, errors.New("PEEP_USER_ID must be a valid UUID")
	}
	cfg.UserID = userID

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
