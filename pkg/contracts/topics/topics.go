package topics

const (
	// Bets
	BetPlaced  = "matka_bet_placed"
	BetSettled = "matka_bet_settled"

	// DLQs
	BetPlacedDLQ  = "matka_bet_placed_dlq"
	BetSettledDLQ = "matka_bet_settled_dlq"

	// Redis Pub/Sub
	JantriUpdates = "jantri_updates"
)
