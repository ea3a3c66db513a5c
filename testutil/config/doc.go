// Package config provides PostgreSQL database configuration for journal integration tests.
//
// The DSN is read from the REACTIVE_TEST_POSTGRES_DSN environment variable.
// Without it, the connection factories return ErrNoPostgresDSN and tests are expected to skip.
// Connections are created with the supported adapters (pgx.Pool, sql.DB with lib/pq, sqlx.DB).
package config
