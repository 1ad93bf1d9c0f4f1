package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Sla          SlaConfig
	Notification NotificationConfig
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
	BcryptCost            int
}

// SlaConfig configures the SLA clock and batch recomputation. The
// counted/paused partition is global, not per policy.
type SlaConfig struct {
	CountedStatuses      []domain.TicketStatus
	PausedStatuses       []domain.TicketStatus
	RecomputeSchedule    string
	RecomputeWorkers     int
	RecomputeBatchSize   int
	StatsCacheTTLMinutes int
}

// NotificationConfig holds stub notification endpoints for breach alerts.
type NotificationConfig struct {
	EmailFrom  string
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
			Name:                  getEnv("APP_NAME", "sla-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Sla: SlaConfig{
			CountedStatuses:      getEnvAsStatuses("SLA_COUNTED_STATUSES", defaultCountedStatuses),
			PausedStatuses:       getEnvAsStatuses("SLA_PAUSED_STATUSES", defaultPausedStatuses),
			RecomputeSchedule:    getEnv("SLA_RECOMPUTE_SCHEDULE", "@hourly"),
			RecomputeWorkers:     getEnvAsInt("SLA_RECOMPUTE_WORKERS", 4),
			RecomputeBatchSize:   getEnvAsInt("SLA_RECOMPUTE_BATCH_SIZE", 500),
			StatsCacheTTLMinutes: getEnvAsInt("SLA_STATS_CACHE_TTL_MINUTES", 10),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := validateStatusPartition(cfg.Sla); err != nil {
		return nil, err
	}

	return cfg, nil
}

var defaultCountedStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
}

var defaultPausedStatuses = []domain.TicketStatus{
	domain.TicketStatusPendingUser,
	domain.TicketStatusPendingThirdParty,
}

// validateStatusPartition rejects overlapping counted/paused sets.
func validateStatusPartition(cfg SlaConfig) error {
	counted := domain.NewStatusSet(cfg.CountedStatuses...)
	for _, status := range cfg.PausedStatuses {
		if counted.Contains(status) {
			return fmt.Errorf("status %s cannot be both counted and paused", status)
		}
	}
	return nil
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

// StatsCacheTTL returns the Redis TTL for cached SLA stats.
func (s SlaConfig) StatsCacheTTL() time.Duration {
	if s.StatsCacheTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.StatsCacheTTLMinutes) * time.Minute
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

func getEnvAsStatuses(key string, fallback []domain.TicketStatus) []domain.TicketStatus {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	statuses := make([]domain.TicketStatus, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		statuses = append(statuses, domain.TicketStatus(strings.ToUpper(part)))
	}
	if len(statuses) == 0 {
		return fallback
	}
	return statuses
}
