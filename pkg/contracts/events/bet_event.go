package events

// Tipos de mutação de aposta publicados no tópico "bet_events"
const (
	BetPlaced  = "PLACED"
	BetUpdated = "UPDATED"
	BetDeleted = "DELETED"
)

// BetEvent é emitido pelo bet-service após cada mutação de aposta.
// O odds-worker consome esses eventos para recalcular os pools da partida.
type BetEvent struct {
	Type     string `json:"type"` // PLACED | UPDATED | DELETED
	BetID    string `json:"bet_id"`
	UserID   string `json:"user_id"`
	MatchID  string `json:"match_id"`
	TeamID   string `json:"team_id"`
	Stake    int64  `json:"stake"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
