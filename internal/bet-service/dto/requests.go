package dto

// PlaceBetRequest cria ou substitui a aposta do usuário na partida
type PlaceBetRequest struct {
	MatchID string `json:"matchId"`
	TeamID  string `json:"teamId"`
	Stake   int64  `json:"stake"` // em moedas; mínimo 100
}
