package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS customers (
			id            BIGSERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			date_of_birth TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS certificates (
			id              BIGSERIAL PRIMARY KEY,
			number          TEXT NOT NULL UNIQUE,
			creation_date   TIMESTAMPTZ NOT NULL,
			valid_from      TIMESTAMPTZ NOT NULL,
			valid_to        TIMESTAMPTZ NOT NULL,
			customer_id     BIGINT NOT NULL REFERENCES customers(id),
			insured_item    TEXT NOT NULL,
			insured_sum     DOUBLE PRECISION NOT NULL,
			certificate_sum DOUBLE PRECISION NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_certificates_number ON certificates(number);
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
