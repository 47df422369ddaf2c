package events

import "time"

const (
	UpdatePlaced  = "placed"
	UpdateSettled = "settled"
)

// JantriUpdate avisa os dashboards que a exposição de um mercado mudou.
// Trafega no Redis Pub/Sub, não no Kafka.
type JantriUpdate struct {
	MarketID string    `json:"market_id"`
	BetID    string    `json:"bet_id"`
	Kind     string    `json:"kind"` // placed | settled
	Ts       time.Time `json:"ts"`
}
