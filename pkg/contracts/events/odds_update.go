package events

import "time"

// OddsUpdate carrega os pools e multiplicadores pari-mutuel de uma partida.
// Publicado pelo odds-worker no cache Redis e no canal Pub/Sub de broadcast.
//
// Quando um dos pools é zero a odd do lado oposto é indefinida: o flag
// *Available fica false e o valor numérico não deve ser usado.
type OddsUpdate struct {
	MatchID       string    `json:"match_id"`
	HomeTeamID    string    `json:"home_team_id"`
	AwayTeamID    string    `json:"away_team_id"`
	PoolHome      int64     `json:"pool_home"`
	PoolAway      int64     `json:"pool_away"`
	OddsHome      float64   `json:"odds_home,omitempty"`
	OddsAway      float64   `json:"odds_away,omitempty"`
	HomeAvailable bool      `json:"home_available"`
	AwayAvailable bool      `json:"away_available"`
	Version       int64     `json:"version"` // incrementado a cada recálculo
	UpdatedAt     time.Time `json:"updated_at"`
}
