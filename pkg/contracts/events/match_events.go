package events

import "time"

// Tipos de resultado de uma partida finalizada
const (
	ResultDecided  = "DECIDED"
	ResultNoResult = "NO_RESULT"
)

// MatchLocked é publicado quando a janela de apostas/seleções fecha.
// O scoring-worker reage gerando seleções automáticas para quem não escolheu.
type MatchLocked struct {
	MatchID    string    `json:"match_id"`
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Ts         time.Time `json:"ts"`
}

// MatchFinalized é publicado quando o resultado da partida é conhecido.
// ResultKind DECIDED carrega o vencedor; NO_RESULT dispara reembolso integral.
type MatchFinalized struct {
	MatchID      string    `json:"match_id"`
	ResultKind   string    `json:"result_kind"` // DECIDED | NO_RESULT
	WinnerTeamID string    `json:"winner_team_id,omitempty"`
	Ts           time.Time `json:"ts"`
}

// MatchSettled é emitido pelo settlement-worker após pagar todas as apostas.
type MatchSettled struct {
	MatchID      string    `json:"match_id"`
	ResultKind   string    `json:"result_kind"`
	WinnerTeamID string    `json:"winner_team_id,omitempty"`
	BetsPaid     int       `json:"bets_paid"`
	TotalPaid    int64     `json:"total_paid"`
	Ts           time.Time `json:"ts"`
}

// StatsEntered é publicado pelo match-service quando estatísticas brutas de um
// jogador são inseridas ou corrigidas; pontos derivados já recalculados.
type StatsEntered struct {
	MatchID      string    `json:"match_id"`
	PlayerID     string    `json:"player_id"`
	PlayerPoints int64     `json:"player_points"`
	Ts           time.Time `json:"ts"`
}
