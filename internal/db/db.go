// Package db provides a PostgreSQL implementation of store.Store.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/applicant-tracker/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Postgres error codes mapped to store errors
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Schema returns the embedded DDL.
func Schema() string {
	return schemaSQL
}

// translate maps constraint violations to store errors and wraps everything else.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s: %s", store.ErrInvalidReference, op, pgErr.Detail)
		case codeUniqueViolation:
			return fmt.Errorf("failed to %s: duplicate value: %s", op, pgErr.Detail)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
