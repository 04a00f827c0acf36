// Package database provides pgx connection pool management for the
// signal archive's PostgreSQL instance.
package database
