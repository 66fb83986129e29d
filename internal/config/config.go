package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	ServiceNow ServiceNowConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Search     SearchConfig
	Escalation EscalationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// ServiceNowConfig holds the upstream case-store connection values.
type ServiceNowConfig struct {
	InstanceURL    string
	Username       string
	Password       string
	TimeoutSeconds int
	CaseTable      string
	AccountTable   string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// SearchConfig tunes pagination-state handling.
type SearchConfig struct {
	StateTTLSeconds        int
	InlineTokenBudget      int
	SuggestCacheTTLSeconds int
	SweepSchedule          string
}

// EscalationConfig holds the stub escalation sink.
type EscalationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "case-assistant"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		ServiceNow: ServiceNowConfig{
			InstanceURL:    getEnv("SERVICENOW_INSTANCE_URL", ""),
			Username:       os.Getenv("SERVICENOW_USERNAME"),
			Password:       os.Getenv("SERVICENOW_PASSWORD"),
			TimeoutSeconds: getEnvAsInt("SERVICENOW_TIMEOUT_SECONDS", 30),
			CaseTable:      getEnv("SERVICENOW_CASE_TABLE", "sn_customerservice_case"),
			AccountTable:   getEnv("SERVICENOW_ACCOUNT_TABLE", "customer_account"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Search: SearchConfig{
			StateTTLSeconds:        getEnvAsInt("SEARCH_STATE_TTL_SECONDS", 3600),
			InlineTokenBudget:      getEnvAsInt("SEARCH_INLINE_TOKEN_BUDGET", 75),
			SuggestCacheTTLSeconds: getEnvAsInt("SEARCH_SUGGEST_CACHE_TTL_SECONDS", 300),
			SweepSchedule:          getEnv("SEARCH_STATE_SWEEP_SCHEDULE", "@every 10m"),
		},
		Escalation: EscalationConfig{
			WebhookURL: getEnv("ESCALATION_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the upstream request timeout duration.
func (s ServiceNowConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StateTTL returns the persisted search-state lifetime.
func (s SearchConfig) StateTTL() time.Duration {
	if s.StateTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.StateTTLSeconds) * time.Second
}

// SuggestCacheTTL returns the suggestion cache entry lifetime.
func (s SearchConfig) SuggestCacheTTL() time.Duration {
	if s.SuggestCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.SuggestCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
