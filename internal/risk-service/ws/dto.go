package ws

import "github.com/radieske/matka-risk-platform/pkg/contracts/events"

// ClientMsg representa uma mensagem recebida do dashboard
type ClientMsg struct {
	Type     string `json:"type"`     // subscribe | unsubscribe | ping
	MarketID string `json:"marketId"` // vazio ou "*" => todos os mercados
}

// ServerMsg é o aviso de que a grade do mercado mudou; o cliente refaz o GET
type ServerMsg struct {
	Type string `json:"type"` // jantri_update | pong
	*events.JantriUpdate
}
