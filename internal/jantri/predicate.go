package jantri

import "strings"

// Predicate seleciona apostas; nil casa com tudo.
type Predicate func(Bet) bool

// All combina predicados com E lógico.
func All(ps ...Predicate) Predicate {
	return func(b Bet) bool {
		for _, p := range ps {
			if p != nil && !p(b) {
				return false
			}
		}
		return true
	}
}

// ByMarket filtra por mercado; id vazio significa "todos os mercados".
func ByMarket(id string) Predicate {
	id = strings.TrimSpace(id)
	return func(b Bet) bool {
		return id == "" || b.MarketID == id
	}
}

func ByMode(m GameMode) Predicate {
	return func(b Bet) bool { return strings.EqualFold(string(b.GameMode), string(m)) }
}

func ByPrediction(p string) Predicate {
	p = strings.TrimSpace(p)
	return func(b Bet) bool { return strings.EqualFold(strings.TrimSpace(b.Prediction), p) }
}
