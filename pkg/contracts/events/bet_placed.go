package events

// Evento publicado no tópico "matka_bet_placed" a cada aposta aceita pela plataforma.
type BetPlaced struct {
	BetID       string `json:"bet_id"`
	UserID      string `json:"user_id"`
	MarketID    string `json:"market_id,omitempty"`
	GameType    string `json:"game_type"`           // "satamatka"
	GameMode    string `json:"game_mode,omitempty"` // jodi | harf | crossing | odd_even
	Prediction  string `json:"prediction"`          // "05", "A3", "odd"
	AmountPaise int64  `json:"amount_paise"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
