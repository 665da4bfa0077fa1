package topics

const (
	// Apostas
	BetEvents = "bet_events"

	// Ciclo de vida de partidas
	MatchLocked    = "match_locked"
	MatchFinalized = "match_finalized"
	MatchSettled   = "match_settled"

	// Estatísticas de jogadores
	StatsEntered = "stats_entered"

	// DLQs
	MatchFinalizedDLQ = "match_finalized_dlq"
)
