// Package db provides PostgreSQL connection utilities for web applications.
//
// This package wraps [github.com/jackc/pgx/v5/pgxpool] to provide connection pooling,
// health checks, and transaction helpers with sensible defaults for production workloads.
//
// # Features
//
//   - Connection pooling with configurable limits and timeouts
//   - Automatic retry logic with exponential backoff during startup
//   - Health check function compatible with standard health check interfaces
//   - Transaction helper with automatic rollback
//   - yaml-tagged [Config] loadable through the config package
//
// # Configuration
//
// [Config] carries the connection settings; zero fields fall back to
// [DefaultConfig] values, so yaml layers only set what they change:
//
//	database:
//	  url: ${DATABASE_URL}
//	  max_open_conns: 25
//	  retry_attempts: 5
//
// # Usage
//
// Basic connection setup:
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/go-strada/strada/pkg/db"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		pool, err := db.Connect(ctx, db.DefaultConfig(os.Getenv("DATABASE_URL")))
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer pool.Close()
//	}
//
// # Health Checks
//
// The [Healthcheck] function returns a closure suitable for health check endpoints:
//
//	app, err := strada.New(
//		strada.WithHealthChecks(
//			strada.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//		),
//	)
//
// # Transactions
//
// The [WithTx] helper provides automatic transaction management with rollback on error:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		// Execute queries using tx
//		return tx.QueryRow(ctx, "SELECT 1").Scan(&result)
//	})
//	if err != nil {
//		// Transaction was rolled back automatically
//	}
//
// # Graceful Shutdown
//
// Use [Shutdown] with the server runtime's shutdown hook:
//
//	err := app.Run(":8080",
//		strada.ShutdownHook(db.Shutdown(pool)),
//	)
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//
//   - [ErrMissingConnectionURL] - Empty connection URL provided
//   - [ErrFailedToParseDBConfig] - Invalid connection string format
//   - [ErrFailedToOpenDBConnection] - Connection failed after all retries
//   - [ErrHealthcheckFailed] - Database ping failed
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package db
