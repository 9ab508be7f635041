package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the full process configuration, built from the environment so
// main stays lean.
type Config struct {
	Server         Server
	Log            LogConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	AuditRetention AuditRetentionConfig
	PurgeSweeper   PurgeSweeperConfig
	PolicyFile     string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig selects the Postgres backend. An empty URL keeps every
// store in memory.
type DatabaseConfig struct {
	URL             string
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// RedisConfig enables the distributed audit append lock and the policy
// cache. An empty URL disables Redis.
type RedisConfig struct {
	URL            string
	PoolSize       int
	MinIdleConns   int
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PolicyCacheTTL time.Duration
	AuditLockTTL   time.Duration
}

// KafkaConfig enables fan-out of appended audit events. Empty brokers
// disables publishing.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// AuditRetentionConfig controls pruning of the audit log itself.
type AuditRetentionConfig struct {
	Enabled       bool
	Schedule      string
	RetentionDays int
}

// PurgeSweeperConfig controls physical deletion of expired tombstones.
type PurgeSweeperConfig struct {
	Enabled       bool
	Schedule      string
	LookbackHours int
}

const (
	DefaultAuditRetentionSchedule = "0 0 2 * * *"
	DefaultAuditRetentionDays     = 730
	DefaultPurgeSchedule          = "0 */15 * * * *"
	DefaultPurgeLookbackHours     = 24
	DefaultAuditTopic             = "gdprkv.audit-events"
)

// scheduleParser accepts six-field cron expressions (seconds first).
var scheduleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Server: Server{
			Addr:            envString("GDPRKV_ADDR", ":8080"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		},
		Log: LogConfig{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Driver:          envString("DATABASE_DRIVER", "postgres"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25, &errs),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5, &errs),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, &errs),
			Migrate:         envBool("DB_MIGRATE", true, &errs),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("REDIS_URL"),
			PoolSize:       envInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns:   envInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:    envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:    envDuration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout:   envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
			PolicyCacheTTL: envDuration("POLICY_CACHE_TTL", 5*time.Minute, &errs),
			AuditLockTTL:   envDuration("AUDIT_LOCK_TTL", 5*time.Second, &errs),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", DefaultAuditTopic),
		},
		AuditRetention: AuditRetentionConfig{
			Enabled:       envBool("AUDIT_RETENTION_ENABLED", false, &errs),
			Schedule:      envString("AUDIT_RETENTION_SCHEDULE", DefaultAuditRetentionSchedule),
			RetentionDays: envInt("AUDIT_RETENTION_DAYS", DefaultAuditRetentionDays, &errs),
		},
		PurgeSweeper: PurgeSweeperConfig{
			Enabled:       envBool("PURGE_SWEEPER_ENABLED", false, &errs),
			Schedule:      envString("PURGE_SWEEPER_SCHEDULE", DefaultPurgeSchedule),
			LookbackHours: envInt("PURGE_SWEEPER_LOOKBACK_HOURS", DefaultPurgeLookbackHours, &errs),
		},
		PolicyFile: os.Getenv("POLICY_FILE"),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the jobs cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.AuditRetention.RetentionDays <= 0 {
		errs = append(errs, fmt.Errorf("AUDIT_RETENTION_DAYS must be positive, got %d", c.AuditRetention.RetentionDays))
	}
	if _, err := scheduleParser.Parse(c.AuditRetention.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("AUDIT_RETENTION_SCHEDULE: %w", err))
	}
	if c.PurgeSweeper.LookbackHours < 0 {
		errs = append(errs, fmt.Errorf("PURGE_SWEEPER_LOOKBACK_HOURS must not be negative, got %d", c.PurgeSweeper.LookbackHours))
	}
	if _, err := scheduleParser.Parse(c.PurgeSweeper.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("PURGE_SWEEPER_SCHEDULE: %w", err))
	}
	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or pgx, got %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envBool(key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
