package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/sla-service/internal/sla"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	SLA      SLAConfig
	Sweep    SweepConfig
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
	MigrationsDir  string
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

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// SLAConfig describes business hours, thresholds and the holiday cache.
type SLAConfig struct {
	Timezone             string
	StartHour            int
	EndHour              int
	Weekdays             string
	ThresholdApproaching float64
	ThresholdCritical    float64
	ThresholdBreached    float64
	HolidayCacheTTL      time.Duration
}

// SweepConfig controls the periodic SLA status sweep.
type SweepConfig struct {
	Enabled  bool
	Schedule string
	Timeout  time.Duration
	Workers  int
	LockKey  string
	LockTTL  time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
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
		SLA: SLAConfig{
			Timezone:             getEnv("SLA_TIMEZONE", "Asia/Seoul"),
			StartHour:            getEnvAsInt("SLA_START_HOUR", 10),
			EndHour:              getEnvAsInt("SLA_END_HOUR", 22),
			Weekdays:             getEnv("SLA_WEEKDAYS", "1,2,3,4,5"),
			ThresholdApproaching: getEnvAsFloat("SLA_THRESHOLD_APPROACHING", sla.DefaultThresholds.Approaching),
			ThresholdCritical:    getEnvAsFloat("SLA_THRESHOLD_CRITICAL", sla.DefaultThresholds.Critical),
			ThresholdBreached:    getEnvAsFloat("SLA_THRESHOLD_BREACHED", sla.DefaultThresholds.Breached),
			HolidayCacheTTL:      getEnvAsDuration("SLA_HOLIDAY_CACHE_TTL", sla.DefaultHolidayTTL),
		},
		Sweep: SweepConfig{
			Enabled:  getEnvAsBool("SLA_SCHEDULER_ENABLED", true),
			Schedule: getEnv("SLA_SWEEP_SCHEDULE", "*/15 * * * *"),
			Timeout:  getEnvAsDuration("SLA_SWEEP_TIMEOUT", 14*time.Minute),
			Workers:  getEnvAsInt("SLA_SWEEP_WORKERS", 4),
			LockKey:  getEnv("SLA_SWEEP_LOCK_KEY", "sla:sweep:lock"),
			LockTTL:  getEnvAsDuration("SLA_SWEEP_LOCK_TTL", 14*time.Minute),
		},
	}

	if _, err := cfg.SLA.BusinessHours(); err != nil {
		return nil, err
	}
	if err := cfg.SLA.Thresholds().Validate(); err != nil {
		return nil, err
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

// Location loads the business timezone.
func (s SLAConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SLA_TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// BusinessHours validates the business-hours settings.
func (s SLAConfig) BusinessHours() (sla.BusinessHours, error) {
	loc, err := s.Location()
	if err != nil {
		return sla.BusinessHours{}, err
	}
	weekdays, err := ParseWeekdays(s.Weekdays)
	if err != nil {
		return sla.BusinessHours{}, err
	}
	return sla.NewBusinessHours(loc, s.StartHour, s.EndHour, weekdays)
}

// Thresholds returns the configured tier boundaries.
func (s SLAConfig) Thresholds() sla.Thresholds {
	return sla.Thresholds{
		Approaching: s.ThresholdApproaching,
		Critical:    s.ThresholdCritical,
		Breached:    s.ThresholdBreached,
	}
}

// CronSpec returns the sweep schedule pinned to the business timezone.
func (s SweepConfig) CronSpec(timezone string) string {
	if strings.HasPrefix(s.Schedule, "CRON_TZ=") || strings.HasPrefix(s.Schedule, "TZ=") || strings.HasPrefix(s.Schedule, "@") {
		return s.Schedule
	}
	return fmt.Sprintf("CRON_TZ=%s %s", timezone, s.Schedule)
}

// ParseWeekdays parses a comma separated list of weekday indices (Sunday=0) or short names.
func ParseWeekdays(raw string) ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if day, ok := names[part]; ok {
			days = append(days, day)
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 || idx > 6 {
			return nil, fmt.Errorf("invalid SLA_WEEKDAYS entry %q", part)
		}
		days = append(days, time.Weekday(idx))
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("SLA_WEEKDAYS must list at least one weekday")
	}
	return days, nil
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
