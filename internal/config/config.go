// Package config provides configuration management for the forecast-eval application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Dataset    DatasetConfig    `mapstructure:"dataset" validate:"required"`
	Evaluation EvaluationConfig `mapstructure:"evaluation" validate:"required"`
	Display    DisplayConfig    `mapstructure:"display" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatasetConfig represents the evaluation table source configuration
type DatasetConfig struct {
	Source                string  `mapstructure:"source" validate:"required"`
	TimestampColumn       string  `mapstructure:"timestamp_column" validate:"required"`
	TruthColumn           string  `mapstructure:"truth_column" validate:"required"`
	ForecastColumn        string  `mapstructure:"forecast_column" validate:"required"`
	CutoffColumn          string  `mapstructure:"cutoff_column"`
	AuthToken             string  `mapstructure:"auth_token"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"omitempty,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"omitempty,gte=0"`
	RateLimitPerSecond    float64 `mapstructure:"rate_limit_per_second" validate:"omitempty,gt=0"`
}

// EvaluationConfig represents metric selection and grouping configuration
type EvaluationConfig struct {
	Metrics            []string `mapstructure:"metrics" validate:"required,min=1,metricnames"`
	Granularity        string   `mapstructure:"granularity" validate:"required,granularity"`
	AggregateForecasts bool     `mapstructure:"aggregate_forecasts"`
	UseCV              bool     `mapstructure:"use_cv"`
	FoldsHorizon       int      `mapstructure:"folds_horizon" validate:"required,gt=0"`
	Freq               string   `mapstructure:"freq" validate:"required,freqcode"`
}

// DisplayConfig represents per-metric display precision configuration
type DisplayConfig struct {
	Precision map[string]int `mapstructure:"precision" validate:"required"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// CacheConfig represents report cache configuration
type CacheConfig struct {
	TTLSeconds     int `mapstructure:"ttl_seconds" validate:"omitempty,gt=0"`
	CleanupSeconds int `mapstructure:"cleanup_seconds" validate:"omitempty,gt=0"`
}

// SchedulerConfig represents scheduled re-evaluation configuration
type SchedulerConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	EvaluationCron         string `mapstructure:"evaluation_cron"`
	GracefulTimeoutSeconds int    `mapstructure:"graceful_timeout_seconds" validate:"omitempty,gt=0"`
	MaxConsecutiveFailures int    `mapstructure:"max_consecutive_failures" validate:"omitempty,gt=0"`
	FailureCooldownSeconds int    `mapstructure:"failure_cooldown_seconds" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
