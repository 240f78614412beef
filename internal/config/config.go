package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Notification NotificationConfig
	HourBank     HourBankConfig
	Overtime     OvertimeConfig
	Storage      StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	// LockTimeout bounds the wait on a locked hour bank row, e.g. "5s".
	LockTimeout string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

// HourBankConfig drives the background settlement and reconciliation jobs.
type HourBankConfig struct {
	SweepInterval     time.Duration
	SweepLookbackDays int
	ReconcileInterval time.Duration
}

// StorageConfig locates uploaded medical attestations.
type StorageConfig struct {
	BasePath      string
	MaxUploadSize int64
}

// OvertimeConfig seeds per-user overtime settings on first access.
type OvertimeConfig struct {
	MaxDailyOvertime   float64
	MaxWeeklyOvertime  float64
	MaxMonthlyOvertime float64
	AutoApprovalLimit  float64
	RequiresApproval   bool
	DefaultMultiplier  float64
	WeekendMultiplier  float64
	HolidayMultiplier  float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (*Config, error) {
	var errs []error
	config := &Config{}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        getEnvInt("DB_PORT", 5432, &errs),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "skponto"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 25, &errs)),
		LockTimeout: getEnv("DB_LOCK_TIMEOUT", "5s"),
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "skponto"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "America/Sao_Paulo"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", time.Hour, &errs),
	}

	config.Notification = NotificationConfig{
		BatchSize:     getEnvInt("NOTIFICATION_BATCH_SIZE", 100, &errs),
		FlushInterval: getEnvDuration("NOTIFICATION_FLUSH_INTERVAL", 5*time.Second, &errs),
		WorkerCount:   getEnvInt("NOTIFICATION_WORKERS", 2, &errs),
		QueueSize:     getEnvInt("NOTIFICATION_QUEUE_SIZE", 1000, &errs),
	}

	config.HourBank = HourBankConfig{
		SweepInterval:     getEnvDuration("HOUR_BANK_SWEEP_INTERVAL", time.Hour, &errs),
		SweepLookbackDays: getEnvInt("HOUR_BANK_SWEEP_LOOKBACK_DAYS", 7, &errs),
		ReconcileInterval: getEnvDuration("HOUR_BANK_RECONCILE_INTERVAL", 24*time.Hour, &errs),
	}

	config.Overtime = OvertimeConfig{
		MaxDailyOvertime:   getEnvFloat("OVERTIME_MAX_DAILY", 4, &errs),
		MaxWeeklyOvertime:  getEnvFloat("OVERTIME_MAX_WEEKLY", 10, &errs),
		MaxMonthlyOvertime: getEnvFloat("OVERTIME_MAX_MONTHLY", 40, &errs),
		AutoApprovalLimit:  getEnvFloat("OVERTIME_AUTO_APPROVAL_LIMIT", 0, &errs),
		RequiresApproval:   getEnvBool("OVERTIME_REQUIRES_APPROVAL", true, &errs),
		DefaultMultiplier:  getEnvFloat("OVERTIME_MULTIPLIER", 1.5, &errs),
		WeekendMultiplier:  getEnvFloat("OVERTIME_WEEKEND_MULTIPLIER", 1.5, &errs),
		HolidayMultiplier:  getEnvFloat("OVERTIME_HOLIDAY_MULTIPLIER", 2, &errs),
	}

	config.Storage = StorageConfig{
		BasePath:      getEnv("STORAGE_BASE_PATH", "./uploads"),
		MaxUploadSize: int64(getEnvInt("STORAGE_MAX_UPLOAD_MB", 10, &errs)) << 20,
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.Database.LockTimeout); err != nil {
		return fmt.Errorf("invalid DB_LOCK_TIMEOUT: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.HourBank.SweepInterval <= 0 || c.HourBank.ReconcileInterval <= 0 {
		return fmt.Errorf("hour bank job intervals must be positive")
	}
	if c.HourBank.SweepLookbackDays <= 0 {
		return fmt.Errorf("HOUR_BANK_SWEEP_LOOKBACK_DAYS must be positive")
	}
	if c.Overtime.DefaultMultiplier <= 0 {
		return fmt.Errorf("OVERTIME_MULTIPLIER must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the timezone used to assign punches to calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
