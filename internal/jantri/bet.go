// Package jantri agrega a exposição das apostas em aberto de Satamatka por
// número (Jodi), por dígito (Harf) e por par/ímpar, e classifica cada
// balde numa faixa de risco.
//
// Tudo aqui é puro: nenhuma função faz I/O nem guarda estado entre chamadas.
package jantri

import (
	"strings"
	"time"
)

const GameTypeSatamatka = "satamatka"

type GameMode string

const (
	ModeJodi     GameMode = "jodi"
	ModeHarf     GameMode = "harf"
	ModeCrossing GameMode = "crossing"
	ModeOddEven  GameMode = "odd_even"
)

// Bet é o registro de aposta como chega da API/banco. Valores em paise.
type Bet struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	MarketID   string    `json:"marketId,omitempty"`
	GameType   string    `json:"gameType"`
	GameMode   GameMode  `json:"gameMode,omitempty"`
	Prediction string    `json:"prediction"`
	BetAmount  int64     `json:"betAmount"`
	Result     string    `json:"result,omitempty"` // vazio ou "pending" => em aberto
	CreatedAt  time.Time `json:"createdAt"`
}

// Market é dado de referência, somente leitura aqui.
type Market struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// IsOpen informa se a aposta ainda não foi liquidada.
func IsOpen(b Bet) bool {
	r := strings.TrimSpace(b.Result)
	return r == "" || strings.EqualFold(r, "pending")
}
