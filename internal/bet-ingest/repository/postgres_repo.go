package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/matka-risk-platform/pkg/contracts/events"
)

// Settlement é o efeito de uma liquidação: Placed=false quando ela chegou
// antes da aposta e ficou guardada numa linha provisória.
type Settlement struct {
	MarketID string
	Placed   bool
}

// PostgresRepo persiste apostas e liquidações na tabela bets
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertBet insere a aposta. Se a liquidação chegou antes, completa a linha
// provisória mantendo o result; replays da mesma aposta não alteram nada.
func (r *PostgresRepo) UpsertBet(ctx context.Context, e events.BetPlaced) error {
	const q = `
		INSERT INTO bets
		  (id, user_id, market_id, game_type, game_mode, prediction, amount_paise, created_at, updated_at, placed)
		VALUES
		  ($1,$2,NULLIF($3,''),$4,NULLIF($5,''),$6,$7,$8,NOW(),TRUE)
		ON CONFLICT (id) DO UPDATE SET
		  user_id      = EXCLUDED.user_id,
		  market_id    = COALESCE(EXCLUDED.market_id, bets.market_id),
		  game_type    = EXCLUDED.game_type,
		  game_mode    = EXCLUDED.game_mode,
		  prediction   = EXCLUDED.prediction,
		  amount_paise = EXCLUDED.amount_paise,
		  created_at   = EXCLUDED.created_at,
		  updated_at   = NOW(),
		  placed       = TRUE
		WHERE bets.placed = FALSE
	`
	if e.MarketID != "" {
		if err := r.ensureMarket(ctx, e.MarketID, e.GameType); err != nil {
			return err
		}
	}
	created := time.UnixMilli(e.TsUnixMs).UTC()
	if e.TsUnixMs == 0 {
		created = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, q,
		e.BetID, e.UserID, e.MarketID, e.GameType, e.GameMode,
		e.Prediction, e.AmountPaise, created,
	)
	return err
}

// ensureMarket registra mercados vistos pela primeira vez; nome = id até o cadastro
func (r *PostgresRepo) ensureMarket(ctx context.Context, id, gameType string) error {
	const q = `
		INSERT INTO markets (id, name, type)
		VALUES ($1, $1, COALESCE(NULLIF($2,''), 'satamatka'))
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q, id, gameType)
	return err
}

// SettleBet grava o resultado. Sem aposta ainda, cria a linha provisória
// (placed = false) que o UpsertBet completa depois.
func (r *PostgresRepo) SettleBet(ctx context.Context, e events.BetSettled) (Settlement, error) {
	const q = `
		INSERT INTO bets
		  (id, user_id, market_id, game_type, prediction, amount_paise, result, updated_at, placed)
		VALUES
		  ($1, '', NULLIF($2,''), '', '', 0, $3, NOW(), FALSE)
		ON CONFLICT (id) DO UPDATE SET
		  result     = EXCLUDED.result,
		  market_id  = COALESCE(bets.market_id, EXCLUDED.market_id),
		  updated_at = NOW()
		RETURNING COALESCE(market_id, ''), placed
	`
	var s Settlement
	err := r.DB.QueryRowContext(ctx, q, e.BetID, e.MarketID, e.Result).Scan(&s.MarketID, &s.Placed)
	return s, err
}
