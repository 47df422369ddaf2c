package jantri

import "github.com/radieske/matka-risk-platform/internal/odds"

// Exposure é o agregado de um balde: quantidade, soma apostada e pagamento potencial.
type Exposure struct {
	Count           int   `json:"count"`
	TotalAmount     int64 `json:"totalAmount"`
	PotentialPayout int64 `json:"potentialPayout"`
}

func (e Exposure) IsEmpty() bool { return e.Count == 0 }

// Filter devolve as apostas em aberto que satisfazem p, na ordem original.
func Filter(bets []Bet, p Predicate) []Bet {
	var out []Bet
	for _, b := range bets {
		if !IsOpen(b) {
			continue
		}
		if p != nil && !p(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Aggregate soma as apostas em aberto selecionadas por p e projeta o pagamento com m.
func Aggregate(bets []Bet, p Predicate, m odds.Multiplier) Exposure {
	var e Exposure
	for _, b := range Filter(bets, p) {
		e.Count++
		e.TotalAmount += b.BetAmount
	}
	if e.TotalAmount != 0 {
		e.PotentialPayout = m.Payout(e.TotalAmount)
	}
	return e
}
