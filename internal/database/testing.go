package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stwalsh4118/taxroll/internal/config"
)

// TestConfig returns connection settings for integration tests, taken from
// the usual DB_* variables with local defaults.
func TestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:        envOrDefault("DB_HOST", "localhost"),
		Port:        envOrDefault("DB_PORT", "5432"),
		Name:        envOrDefault("DB_NAME", "taxroll_test"),
		User:        envOrDefault("DB_USER", "postgres"),
		Password:    envOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:     1,
		PoolMax:     5,
		AutoMigrate: true,
	}
}

// NewTestDatabase connects to the integration database, migrates it and
// empties the domain tables. The test is skipped in -short mode or when no
// database is reachable. This should only be used in tests.
func NewTestDatabase(t testing.TB) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewPostgresPool(ctx, TestConfig())
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.Pool.Exec(ctx, `TRUNCATE properties, municipalities RESTART IDENTITY`); err != nil {
		t.Fatalf("Failed to reset test tables: %v", err)
	}
	return db
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
