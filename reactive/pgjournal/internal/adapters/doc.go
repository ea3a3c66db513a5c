// Package adapters lets the journal run on pgxpool.Pool, sql.DB, or sqlx.DB through one DBAdapter interface.
package adapters
