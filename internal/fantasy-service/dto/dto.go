package dto

import "time"

// SelectionRequest grava a seleção fantasy do usuário para uma partida
type SelectionRequest struct {
	MatchID   string   `json:"matchId"`
	TeamID    string   `json:"teamId"`
	Players   []string `json:"players"` // exatamente 4
	CaptainID string   `json:"captainId"`
}

// TeamPreferencesRequest substitui a lista ranqueada de times do usuário
type TeamPreferencesRequest struct {
	TeamIDs []string `json:"teamIds"`
}

// FavoritePlayersRequest substitui os favoritos do usuário para um time
type FavoritePlayersRequest struct {
	TeamID    string   `json:"teamId"`
	PlayerIDs []string `json:"playerIds"` // até 2
}

// SelectionResponse é a seleção persistida
type SelectionResponse struct {
	MatchID   string    `json:"matchId"`
	TeamID    string    `json:"teamId"`
	Players   []string  `json:"players"`
	CaptainID string    `json:"captainId"`
	ByUser    bool      `json:"byUser"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MatchPointsResponse é a pontuação do usuário numa partida
type MatchPointsResponse struct {
	MatchID     string `json:"matchId"`
	TeamBonus   int64  `json:"teamBonus"`
	PlayerTotal int64  `json:"playerTotal"`
	Total       int64  `json:"total"`
}

// TotalPointsResponse são os pontos acumulados do usuário
type TotalPointsResponse struct {
	UserID string `json:"userId"`
	Total  int64  `json:"total"`
}

// LeaderboardEntry é uma linha do ranking global
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}
