package postgres

import (
	"context"
	"fmt"
)

// schema DDL idempotente de lotes, unidades, catálogo y operadores.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS lots (
		lot_id       TEXT PRIMARY KEY,
		product_name TEXT NOT NULL,
		expiry_date  TIMESTAMPTZ NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity >= 0),
		seq          BIGSERIAL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lots_product_fefo ON lots (product_name, expiry_date, seq)`,
	`CREATE TABLE IF NOT EXISTS lot_units (
		unit_id  TEXT PRIMARY KEY,
		lot_id   TEXT NOT NULL REFERENCES lots(lot_id) ON DELETE CASCADE,
		position INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lot_units_lot ON lot_units (lot_id, position)`,
	`CREATE TABLE IF NOT EXISTS flights (
		flight_number  TEXT PRIMARY KEY,
		origin         TEXT NOT NULL DEFAULT '',
		destination    TEXT NOT NULL DEFAULT '',
		departure_time TEXT NOT NULL DEFAULT '',
		position       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS flight_products (
		id                BIGSERIAL PRIMARY KEY,
		flight_number     TEXT NOT NULL REFERENCES flights(flight_number) ON DELETE CASCADE,
		product_name      TEXT NOT NULL,
		category_quantity INTEGER NOT NULL CHECK (category_quantity >= 0),
		weight_kg         NUMERIC(12,4) NOT NULL CHECK (weight_kg > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema crea las tablas si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
