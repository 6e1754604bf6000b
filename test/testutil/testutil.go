// Package testutil provides shared utilities for minazuki integration
// tests that apply generated DDL to a PostgreSQL server.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Singleton server state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// ensureSingleton returns the admin DSN, starting a PostgreSQL container
// on first use unless DATABASE_URL or DATABASE_HOST points at a server.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		if cfg := GetDatabaseConfig(); cfg.URL != "" {
			singletonDSN = cfg.URL
			return
		}

		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}
		// Container is not stored - ryuk will handle cleanup automatically
		singletonDSN = dsn
	})

	return singletonDSN, singletonErr
}

// EmptyDB returns a connection to a new, empty database. The database is
// dropped when the test completes. Skipped in -short mode.
func EmptyDB(tb testing.TB) *sql.DB {
	tb.Helper()
	if testing.Short() {
		tb.Skip("integration test: needs PostgreSQL")
	}

	adminDSN, err := ensureSingleton()
	require.NoError(tb, err, "failed to start PostgreSQL")

	dbName := uniqueDBName("minazuki")
	require.NoError(tb, execAdmin(context.Background(), adminDSN, "CREATE DATABASE "+dbName),
		"failed to create database")

	dsn, err := replaceDBName(adminDSN, dbName)
	require.NoError(tb, err)
	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err, "failed to connect to database")
	require.NoError(tb, db.Ping(), "failed to ping database")

	tb.Cleanup(func() {
		_ = db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = execAdmin(ctx, adminDSN, fmt.Sprintf(`
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = '%s' AND pid <> pg_backend_pid()`, dbName))
		_ = execAdmin(ctx, adminDSN, "DROP DATABASE IF EXISTS "+dbName)
	})

	return db
}

func execAdmin(ctx context.Context, adminDSN, stmt string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, stmt)
	return err
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// replaceDBName replaces the database name in a URL-style DSN.
func replaceDBName(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}
