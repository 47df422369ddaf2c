package jantri

import "github.com/radieske/matka-risk-platform/internal/odds"

// BoardOptions parametriza a montagem de uma grade.
type BoardOptions struct {
	View       View
	MarketID   string          // vazio => todos os mercados
	Multiplier odds.Multiplier // zero => 90 fixo para Jodi/Harf
	Thresholds Thresholds
	ShowEmpty  *bool // nil => padrão da view
}

type Cell struct {
	Key string `json:"key"`
	Exposure
	Band          Band   `json:"band"`
	Colour        string `json:"colour"`
	AmountDisplay string `json:"amountDisplay"`
	PayoutDisplay string `json:"payoutDisplay"`
}

type Board struct {
	View       View       `json:"view"`
	MarketID   string     `json:"marketId,omitempty"`
	Multiplier string     `json:"multiplier"`
	Thresholds Thresholds `json:"thresholds"`
	ShowEmpty  bool       `json:"showEmpty"`
	Cells      []Cell     `json:"cells"`
	Total      Exposure   `json:"total"`
	// Unmatched: apostas da modalidade com palpite fora do domínio (ex.: Jodi "100")
	Unmatched  Exposure   `json:"unmatched"`
	Highest    Band       `json:"highest"`
}

// ResolveMultiplier aplica o fallback de 90 para Jodi/Harf quando não há settings.
func ResolveMultiplier(v View, m odds.Multiplier) odds.Multiplier {
	if m.IsZero() && v != ViewOddEven {
		return odds.Fixed(odds.FixedJodiHarf)
	}
	return m
}

// BuildBoard agrega as apostas em aberto do mercado/modalidade para cada
// chave do domínio da view, classifica e monta as células na ordem do domínio.
func BuildBoard(bets []Bet, opt BoardOptions) Board {
	showEmpty := opt.View.ShowsEmptyByDefault()
	if opt.ShowEmpty != nil {
		showEmpty = *opt.ShowEmpty
	}
	m := ResolveMultiplier(opt.View, opt.Multiplier)

	domain := opt.View.Domain()
	inDomain := make(map[string]bool, len(domain))
	for _, k := range domain {
		inDomain[k] = true
	}

	scope := Filter(bets, All(ByMarket(opt.MarketID), ByMode(opt.View.Mode())))
	byKey := make(map[string][]Bet, len(scope))
	var matched, unmatched []Bet
	for _, b := range scope {
		k := opt.View.normalizeKey(b.Prediction)
		if !inDomain[k] {
			unmatched = append(unmatched, b)
			continue
		}
		byKey[k] = append(byKey[k], b)
		matched = append(matched, b)
	}

	board := Board{
		View:       opt.View,
		MarketID:   opt.MarketID,
		Multiplier: m.String(),
		Thresholds: opt.Thresholds,
		ShowEmpty:  showEmpty,
		Cells:      make([]Cell, 0, len(domain)),
		Total:      Aggregate(matched, nil, m),
		Unmatched:  Aggregate(unmatched, nil, m),
		Highest:    BandNone,
	}
	for _, key := range domain {
		e := Aggregate(byKey[key], nil, m)
		if e.IsEmpty() && !showEmpty {
			continue
		}
		band := Classify(e.TotalAmount, opt.Thresholds)
		if band.rank() > board.Highest.rank() {
			board.Highest = band
		}
		board.Cells = append(board.Cells, Cell{
			Key:           key,
			Exposure:      e,
			Band:          band,
			Colour:        band.Colour(),
			AmountDisplay: FormatRupees(e.TotalAmount),
			PayoutDisplay: FormatRupees(e.PotentialPayout),
		})
	}
	return board
}
