package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Redis / run lease
	RedisAddr     string // empty disables the distributed lease
	RedisPassword string
	RunLockKey    string
	RunLockTTL    time.Duration

	// External payment processor
	ProcessorBaseURL         string
	ProcessorAPIKey          string
	ProcessorAPIKeyHeader    string
	ProcessorRateLimitPerMin int

	// Alerting
	AlertWebhookURL string // empty falls back to the log sink

	// Sync engine
	SyncRetentionWindow time.Duration
	SyncPendingTimeout  time.Duration
	SyncWorkerCount     int
	SyncMaxRetries      int

	// Health thresholds
	StalePendingWarnAt int
	DiscrepancyWarnAt  int
	DiscrepancyCritAt  int

	// Scheduler
	ScheduleIntervalHours int
	ScheduleOnStart       bool
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("RUN_LOCK_KEY", "reconciliation:run")
	viper.SetDefault("RUN_LOCK_TTL", "30m")
	viper.SetDefault("PROCESSOR_BASE_URL", "")
	viper.SetDefault("PROCESSOR_API_KEY", "")
	viper.SetDefault("PROCESSOR_API_KEY_HEADER", "X-API-Key")
	viper.SetDefault("PROCESSOR_RATE_LIMIT_PER_MIN", 60)
	viper.SetDefault("ALERT_WEBHOOK_URL", "")
	viper.SetDefault("SYNC_RETENTION_WINDOW", "168h")
	viper.SetDefault("SYNC_PENDING_TIMEOUT", "24h")
	viper.SetDefault("SYNC_WORKER_COUNT", 4)
	viper.SetDefault("SYNC_MAX_RETRIES", 3)
	viper.SetDefault("STALE_PENDING_WARN_AT", 10)
	viper.SetDefault("DISCREPANCY_WARN_AT", 5)
	viper.SetDefault("DISCREPANCY_CRIT_AT", 20)
	viper.SetDefault("SCHEDULE_INTERVAL_HOURS", 1)
	viper.SetDefault("SCHEDULE_ON_START", false)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:              viper.GetString("PGSQL_URL"),
		Port:                     viper.GetString("PORT"),
		IsProduction:             viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:            viper.GetBool("ENABLE_DB_CHECK"),
		RedisAddr:                viper.GetString("REDIS_ADDR"),
		RedisPassword:            viper.GetString("REDIS_PASSWORD"),
		RunLockKey:               viper.GetString("RUN_LOCK_KEY"),
		ProcessorBaseURL:         viper.GetString("PROCESSOR_BASE_URL"),
		ProcessorAPIKey:          viper.GetString("PROCESSOR_API_KEY"),
		ProcessorAPIKeyHeader:    viper.GetString("PROCESSOR_API_KEY_HEADER"),
		ProcessorRateLimitPerMin: viper.GetInt("PROCESSOR_RATE_LIMIT_PER_MIN"),
		AlertWebhookURL:          viper.GetString("ALERT_WEBHOOK_URL"),
		SyncWorkerCount:          viper.GetInt("SYNC_WORKER_COUNT"),
		SyncMaxRetries:           viper.GetInt("SYNC_MAX_RETRIES"),
		StalePendingWarnAt:       viper.GetInt("STALE_PENDING_WARN_AT"),
		DiscrepancyWarnAt:        viper.GetInt("DISCREPANCY_WARN_AT"),
		DiscrepancyCritAt:        viper.GetInt("DISCREPANCY_CRIT_AT"),
		ScheduleIntervalHours:    viper.GetInt("SCHEDULE_INTERVAL_HOURS"),
		ScheduleOnStart:          viper.GetBool("SCHEDULE_ON_START"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.ProcessorBaseURL == "" {
		log.Println("Warning: PROCESSOR_BASE_URL environment variable not set.")
	}
	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Using in-process run lock; not safe across multiple instances.")
	}

	cfg.RunLockTTL = parseDurationOr("RUN_LOCK_TTL", 30*time.Minute)
	cfg.SyncRetentionWindow = parseDurationOr("SYNC_RETENTION_WINDOW", 7*24*time.Hour)
	cfg.SyncPendingTimeout = parseDurationOr("SYNC_PENDING_TIMEOUT", 24*time.Hour)

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
