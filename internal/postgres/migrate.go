package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the storefront. Idempotent: every statement is IF NOT EXISTS so
// the API can run it on every boot.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS markets (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		day_of_week INT  NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS market_open_flags (
		market_id           TEXT NOT NULL REFERENCES markets(id),
		local_date          DATE NOT NULL,
		is_open             BOOLEAN NOT NULL DEFAULT FALSE,
		cutoff_minutes      INT NOT NULL DEFAULT 0,
		occurrence_start_at TIMESTAMPTZ NOT NULL,
		occurrence_end_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (market_id, local_date)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		type        TEXT NOT NULL DEFAULT '',
		price_cents INT  NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS sides (
		id        TEXT PRIMARY KEY,
		title     TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             UUID PRIMARY KEY,
		payment_ref    TEXT NOT NULL UNIQUE,
		customer_name  TEXT NOT NULL DEFAULT '',
		customer_email TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		market_id      TEXT NOT NULL DEFAULT '',
		market_name    TEXT NOT NULL DEFAULT '',
		market_date    TIMESTAMPTZ NOT NULL,
		pickup_slot    TIMESTAMPTZ NOT NULL,
		subtotal_cents INT NOT NULL DEFAULT 0,
		tip_cents      INT NOT NULL DEFAULT 0,
		total_cents    INT NOT NULL DEFAULT 0,
		order_status   TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id       UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id  TEXT NOT NULL,
		title    TEXT NOT NULL,
		quantity INT  NOT NULL,
		notes    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS order_item_sides (
		order_item_id UUID NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
		side_id       TEXT NOT NULL,
		quantity      INT  NOT NULL DEFAULT 1,
		PRIMARY KEY (order_item_id, side_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
