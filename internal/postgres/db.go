package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the tables this service needs. The machine state is a
// snapshot: whole-aggregate rows rewritten on every flush.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS machines (
			id           TEXT PRIMARY KEY,
			five_cent    INT NOT NULL DEFAULT 0,
			ten_cent     INT NOT NULL DEFAULT 0,
			twenty_cent  INT NOT NULL DEFAULT 0,
			fifty_cent   INT NOT NULL DEFAULT 0,
			hundred_cent INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS machine_products (
			machine_id TEXT NOT NULL,
			id         TEXT NOT NULL,
			position   INT NOT NULL,
			name       TEXT NOT NULL,
			cost_cents INT NOT NULL,
			available  INT NOT NULL,
			seller_id  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS machine_products_machine_idx ON machine_products (machine_id, position);
		CREATE TABLE IF NOT EXISTS machine_accounts (
			machine_id    TEXT NOT NULL,
			id            TEXT NOT NULL,
			deposit_cents INT NOT NULL,
			PRIMARY KEY (machine_id, id)
		);
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			deposit_cents INT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}
