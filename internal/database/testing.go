package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/forecast-eval/internal/config"
)

// SetupTestDB connects to the database named by the TEST_DB_* environment
// variables and ensures the report schema exists. Tests are skipped when
// TEST_DB_HOST is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping database tests")
	}

	cfg := &config.DatabaseConfig{
		Enabled:            true,
		Host:               host,
		Port:               envInt("TEST_DB_PORT", 5432),
		Name:               envOr("TEST_DB_NAME", "forecast_eval_test"),
		User:               envOr("TEST_DB_USER", "forecast"),
		Password:           envOr("TEST_DB_PASSWORD", "forecast"),
		SSLMode:            "disable",
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	// Ensure the report schema exists
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("failed to initialize report schema: %v", err)
	}

	return db
}

// TeardownTestDB empties the report table and closes the connection
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.pool.Exec(ctx, "TRUNCATE TABLE evaluation_reports"); err != nil {
		t.Logf("warning: failed to truncate evaluation_reports: %v", err)
	}

	if err := db.Close(ctx); err != nil {
		t.Logf("warning: failed to close test database: %v", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
