package dto

import "time"

// Match é a visão pública de uma partida para a UI de apostas
type Match struct {
	MatchID    string    `json:"matchId"`
	HomeTeamID string    `json:"homeTeamId"`
	AwayTeamID string    `json:"awayTeamId"`
	StartsAt   time.Time `json:"startsAt"`
	State      string    `json:"state"` // OPEN | LOCKED | SETTLED
}

// MatchOdds retorna pools e multiplicadores correntes de uma partida.
// Odd indefinida (pool oposto zerado) vem com o flag available=false.
type MatchOdds struct {
	MatchID       string  `json:"matchId"`
	HomeTeamID    string  `json:"homeTeamId"`
	AwayTeamID    string  `json:"awayTeamId"`
	PoolHome      int64   `json:"poolHome"`
	PoolAway      int64   `json:"poolAway"`
	OddsHome      float64 `json:"oddsHome,omitempty"`
	OddsAway      float64 `json:"oddsAway,omitempty"`
	HomeAvailable bool    `json:"homeAvailable"`
	AwayAvailable bool    `json:"awayAvailable"`
	Version       int64   `json:"version,omitempty"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}
