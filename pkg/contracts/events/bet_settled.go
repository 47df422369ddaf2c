package events

import "time"

// Evento emitido pelo processo de liquidação quando o resultado do mercado sai.
// Result vazio ou "pending" mantém a aposta em aberto.
type BetSettled struct {
	BetID    string    `json:"bet_id"`
	MarketID string    `json:"market_id,omitempty"`
	Result   string    `json:"result"`
	Ts       time.Time `json:"ts"`
}
