package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultDealershipID is the last-resort fallback used by the Dealership
// Phone Resolver (§4.2) when no lead or integration_config entry matches an
// inbound phone number. Open Question (§9): whether this fallback should
// exist at all in production is unresolved upstream; it is kept here,
// off by default (empty), and only engages when DEFAULT_DEALERSHIP_ID is set.
var DefaultDealershipID = getEnvOrDefault("DEFAULT_DEALERSHIP_ID", "")

// RefreshDefaultDealershipID re-reads DEFAULT_DEALERSHIP_ID, for use after
// .env files are loaded in main.go.
func RefreshDefaultDealershipID() {
	DefaultDealershipID = getEnvOrDefault("DEFAULT_DEALERSHIP_ID", "")
}

// Config aggregates every environment-driven setting the gateway needs (§6).
type Config struct {
	Port string

	Database DatabaseConfig
	Redis    RedisConfig

	SMSProviderAPIKey     string
	SMSProviderAPISecret  string
	SMSWebhookSecret      string
	ChatProviderAPIKey    string
	ChatProviderAPISecret string
	ChatWebhookSecret     string

	LLMAPIKey       string
	LLMBaseURL      string
	EmbeddingAPIKey string

	JWTSigningSecret string

	DefaultDealershipID string

	InstanceID string

	RateLimitPerMinute int
}

// DatabaseConfig mirrors the teacher's DatabaseConfig shape (internal/repository/connection.go).
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig mirrors pkg/redis.RedisConfig.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoadFromEnv loads the process configuration, following the teacher's
// cmd/server/main.go LoadConfigFromEnv convention.
func LoadFromEnv() *Config {
	RefreshDefaultDealershipID()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),

		Database: DatabaseConfig{
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvAsIntOrDefault("DB_PORT", 5432),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", ""),
			DBName:          getEnvOrDefault("DB_NAME", "dealership_gateway"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvAsIntOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},

		Redis: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},

		SMSProviderAPIKey:     getEnvOrDefault("SMS_PROVIDER_API_KEY", ""),
		SMSProviderAPISecret:  getEnvOrDefault("SMS_PROVIDER_API_SECRET", ""),
		SMSWebhookSecret:      getEnvOrDefault("SMS_WEBHOOK_SECRET", ""),
		ChatProviderAPIKey:    getEnvOrDefault("CHAT_PROVIDER_API_KEY", ""),
		ChatProviderAPISecret: getEnvOrDefault("CHAT_PROVIDER_API_SECRET", ""),
		ChatWebhookSecret:     getEnvOrDefault("CHAT_WEBHOOK_SECRET", ""),

		LLMAPIKey:       getEnvOrDefault("LLM_API_KEY", ""),
		LLMBaseURL:      getEnvOrDefault("LLM_BASE_URL", "https://api.anthropic.com"),
		EmbeddingAPIKey: getEnvOrDefault("EMBEDDING_API_KEY", ""),

		JWTSigningSecret: getEnvOrDefault("JWT_SIGNING_SECRET", ""),

		DefaultDealershipID: DefaultDealershipID,

		InstanceID: getDynamicInstanceID(),

		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 25),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDynamicInstanceID mirrors the teacher's pod-aware instance id derivation.
func getDynamicInstanceID() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return fmt.Sprintf("dealership-gateway-%d", time.Now().UnixNano())
}
