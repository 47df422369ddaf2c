package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS markets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT 'satamatka',
		status     TEXT NOT NULL DEFAULT 'open',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		market_id    TEXT,
		game_type    TEXT NOT NULL,
		game_mode    TEXT,
		prediction   TEXT NOT NULL,
		amount_paise BIGINT NOT NULL CHECK (amount_paise >= 0),
		result       TEXT,
		placed       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// placed = false: liquidação recebida antes da aposta
	`ALTER TABLE bets ADD COLUMN IF NOT EXISTS placed BOOLEAN NOT NULL DEFAULT TRUE`,
	`CREATE INDEX IF NOT EXISTS bets_open_idx ON bets (market_id, game_mode) WHERE result IS NULL OR result = '' OR lower(result) = 'pending'`,
	// scale NULL => valor legado, escala deduzida pela magnitude
	`CREATE TABLE IF NOT EXISTS odds_settings (
		game_key   TEXT PRIMARY KEY,
		raw_value  NUMERIC NOT NULL,
		scale      TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate cria as tabelas usadas pelo jantri; só é chamado em local/dev.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
