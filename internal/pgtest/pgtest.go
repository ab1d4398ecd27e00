// Package pgtest provisions throwaway PostgreSQL schemas for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SkipIfNoIntegration skips unless INTEGRATION_TEST=true
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func connString(searchPath string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("TEST_POSTGRES_USER", "postgres"), getEnv("TEST_POSTGRES_PASSWORD", "postgres")),
		Host:   getEnv("TEST_POSTGRES_HOST", "localhost") + ":" + getEnv("TEST_POSTGRES_PORT", "5432"),
		Path:   "/" + getEnv("TEST_POSTGRES_DB", "event_marketplace_test"),
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("pool_max_conns", "20")
	if searchPath != "" {
		q.Set("search_path", searchPath)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// migrationPath resolves the schema file relative to this source file
func migrationPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations", "001_init.sql")
}

// NewPool creates a fresh schema, applies the migrations to it and returns a
// pool whose search_path points there. The schema is dropped on cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	SkipIfNoIntegration(t)
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, connString(""))
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	if err := admin.Ping(ctx); err != nil {
		admin.Close()
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	schema := "it_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	pool, err := pgxpool.New(ctx, connString(schema+",public"))
	if err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema)); err != nil {
			t.Logf("Warning: failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	ddl, err := os.ReadFile(migrationPath())
	if err != nil {
		t.Fatalf("Failed to read migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, string(ddl)); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return pool
}
