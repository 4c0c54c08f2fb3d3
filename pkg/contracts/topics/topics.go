package topics

const (
	// Auditoria
	BetMutations = "bets_mutations"

	// Redis Pub/Sub
	BetsBroadcast = "bets_updates_broadcast"
)
