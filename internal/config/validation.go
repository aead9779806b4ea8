// Package config provides configuration management for the forecast-eval application.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/forecast-eval/internal/frequency"
	"github.com/yourusername/forecast-eval/internal/timebucket"
)

// cutoffGranularity is the grouping key used in cross-validation mode.
const cutoffGranularity = "cutoff"

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("granularity", validateGranularity)
	_ = v.RegisterValidation("freqcode", validateFreqCode)
	_ = v.RegisterValidation("metricnames", validateMetricNames)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateGranularity validates the grouping column name
func validateGranularity(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name == cutoffGranularity || timebucket.Valid(name)
}

// validateFreqCode validates the resampling frequency code
func validateFreqCode(fl validator.FieldLevel) bool {
	_, err := frequency.Seconds(fl.Field().String(), 1)
	return err == nil
}

// validateMetricNames validates the requested metric names
func validateMetricNames(fl validator.FieldLevel) bool {
	metrics := fl.Field().Interface().([]string)

	// Check if metrics array is not empty
	if len(metrics) == 0 {
		return false
	}

	validMetrics := map[string]bool{
		"MAPE":  true,
		"SMAPE": true,
		"MSE":   true,
		"RMSE":  true,
		"MAE":   true,
	}

	// Check if all metrics are valid
	for _, metric := range metrics {
		if !validMetrics[metric] {
			return false
		}
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Cross-validation needs fold cutoffs in the dataset
	if cfg.Evaluation.UseCV {
		if cfg.Evaluation.Granularity != cutoffGranularity {
			return fmt.Errorf("cross-validation requires granularity '%s', got '%s'", cutoffGranularity, cfg.Evaluation.Granularity)
		}
		if cfg.Dataset.CutoffColumn == "" {
			return fmt.Errorf("cross-validation requires dataset.cutoff_column to be set")
		}
	}

	// Every requested metric needs a display precision
	for _, metric := range cfg.Evaluation.Metrics {
		if _, ok := cfg.Display.Precision[metric]; !ok {
			return fmt.Errorf("display.precision is missing an entry for metric '%s'", metric)
		}
	}

	// Validate database settings when persistence is enabled
	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when database is enabled")
		}
		if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
			return fmt.Errorf("max_idle_connections cannot exceed max_connections")
		}
	}

	// Validate production environment requirements
	if cfg.IsProduction() && cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	// Scheduled runs need a cron expression
	if cfg.Scheduler.Enabled && cfg.Scheduler.EvaluationCron == "" {
		return fmt.Errorf("scheduler.evaluation_cron is required when the scheduler is enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "granularity":
			errMsg += fmt.Sprintf("- Field '%s' must be 'cutoff' or a time bucket name, got '%v'\n", field, value)
		case "freqcode":
			errMsg += fmt.Sprintf("- Field '%s' must end in one of s, H, D, W, M, Q, Y, got '%v'\n", field, value)
		case "metricnames":
			errMsg += fmt.Sprintf("- Field '%s' may only contain MAPE, SMAPE, MSE, RMSE, MAE\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		// Production must have SSL enabled
		if cfg.Database.Enabled && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}

		// Production should not have placeholder credentials
		if cfg.Database.Enabled && isTestCredential(cfg.Database.Password) {
			return fmt.Errorf("production environment should not use a placeholder database password")
		}
		if isTestCredential(cfg.Dataset.AuthToken) && cfg.Dataset.AuthToken != "" {
			return fmt.Errorf("production environment should not use a placeholder dataset auth token")
		}
	}

	return nil
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
