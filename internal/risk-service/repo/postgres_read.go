package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/internal/odds"
)

var ErrNotFound = errors.New("not found")

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListMarkets(ctx context.Context) ([]jantri.Market, error) {
	const q = `
		SELECT id, name, type, status
		FROM markets
		ORDER BY name;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []jantri.Market{}
	for rows.Next() {
		var m jantri.Market
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Status); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListOpenBets devolve as apostas em aberto; marketID vazio => todos os mercados.
// O filtro é refeito em memória pelo jantri, aqui só reduz o volume lido.
func (r *ReadRepo) ListOpenBets(ctx context.Context, marketID string, mode jantri.GameMode) ([]jantri.Bet, error) {
	const q = `
		SELECT id, user_id, COALESCE(market_id, ''), game_type, COALESCE(game_mode, ''),
		       prediction, amount_paise, COALESCE(result, ''), created_at
		FROM bets
		WHERE placed
		  AND (result IS NULL OR result = '' OR lower(result) = 'pending')
		  AND ($1 = '' OR market_id = $1)
		  AND ($2 = '' OR game_mode = $2)
		ORDER BY created_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, marketID, string(mode))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []jantri.Bet
	for rows.Next() {
		var b jantri.Bet
		var gm string
		if err := rows.Scan(&b.ID, &b.UserID, &b.MarketID, &b.GameType, &gm,
			&b.Prediction, &b.BetAmount, &b.Result, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.GameMode = jantri.GameMode(gm)
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetMultiplier lê o settings; linhas sem escala são valores legados.
func (r *ReadRepo) GetMultiplier(ctx context.Context, key string) (odds.Multiplier, error) {
	const q = `
		SELECT raw_value::text, COALESCE(scale, '')
		FROM odds_settings
		WHERE game_key = $1;
	`
	var raw, scale string
	err := r.DB.QueryRowContext(ctx, q, key).Scan(&raw, &scale)
	if errors.Is(err, sql.ErrNoRows) {
		return odds.Multiplier{}, fmt.Errorf("%w: %w: %s", ErrNotFound, odds.ErrNotConfigured, key)
	}
	if err != nil {
		return odds.Multiplier{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return odds.Multiplier{}, fmt.Errorf("odds_settings %s: %w", key, err)
	}
	if scale == "" {
		return odds.Multiplier{Raw: d, Scale: odds.GuessScale(d)}, nil
	}
	sc, err := odds.ParseScale(scale)
	if err != nil {
		return odds.Multiplier{}, err
	}
	return odds.New(d, sc)
}

// UpsertMultiplier grava o valor sempre com a escala explícita
func (r *ReadRepo) UpsertMultiplier(ctx context.Context, key string, m odds.Multiplier) error {
	const q = `
		INSERT INTO odds_settings (game_key, raw_value, scale, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (game_key) DO UPDATE SET
		  raw_value  = EXCLUDED.raw_value,
		  scale      = EXCLUDED.scale,
		  updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q, key, m.Raw.String(), string(m.Scale))
	return err
}
