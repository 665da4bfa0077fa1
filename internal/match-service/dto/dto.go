package dto

import "time"

// CreateMatchRequest cadastra uma partida aberta
type CreateMatchRequest struct {
	HomeTeamID string    `json:"homeTeamId"`
	AwayTeamID string    `json:"awayTeamId"`
	StartsAt   time.Time `json:"startsAt"`
}

// FinalizeRequest registra o resultado de uma partida travada
type FinalizeRequest struct {
	ResultKind   string `json:"resultKind"` // DECIDED | NO_RESULT
	WinnerTeamID string `json:"winnerTeamId,omitempty"`
}

// StatRequest lança as estatísticas brutas de um jogador
// (vindas do operador admin ou do merge de scorecard externo)
type StatRequest struct {
	IsPlayed  bool  `json:"isPlayed"`
	Runs      int64 `json:"runs"`
	Wickets   int64 `json:"wickets"`
	Catches   int64 `json:"catches"`
	Stumpings int64 `json:"stumpings"`
	Runouts   int64 `json:"runouts"`
}

// MatchResponse é a visão administrativa de uma partida
type MatchResponse struct {
	MatchID      string    `json:"matchId"`
	HomeTeamID   string    `json:"homeTeamId"`
	AwayTeamID   string    `json:"awayTeamId"`
	StartsAt     time.Time `json:"startsAt"`
	State        string    `json:"state"`
	ResultKind   string    `json:"resultKind,omitempty"`
	WinnerTeamID string    `json:"winnerTeamId,omitempty"`
}

// StatResponse devolve a estatística com os pontos derivados
type StatResponse struct {
	MatchID      string `json:"matchId"`
	PlayerID     string `json:"playerId"`
	IsPlayed     bool   `json:"isPlayed"`
	Runs         int64  `json:"runs"`
	Wickets      int64  `json:"wickets"`
	Catches      int64  `json:"catches"`
	Stumpings    int64  `json:"stumpings"`
	Runouts      int64  `json:"runouts"`
	PlayerPoints int64  `json:"playerPoints"`
}
