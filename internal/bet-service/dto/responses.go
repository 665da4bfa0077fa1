package dto

// PlaceBetResponse devolve o resultado da operação no formato {success, message}
// mais o saldo atualizado e, quando as odds estiverem definidas, o retorno potencial
type PlaceBetResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	BetID            string `json:"betId,omitempty"`
	MatchID          string `json:"matchId,omitempty"`
	TeamID           string `json:"teamId,omitempty"`
	Stake            int64  `json:"stake,omitempty"`
	Coins            int64  `json:"coins"`
	PotentialEarning *int64 `json:"potentialEarning,omitempty"` // ausente se odds indefinidas
}

// BetResponse é a visão de leitura de uma aposta
type BetResponse struct {
	BetID   string `json:"betId"`
	MatchID string `json:"matchId"`
	TeamID  string `json:"teamId"`
	Stake   int64  `json:"stake"`
	Earning int64  `json:"earning"`
	Settled bool   `json:"settled"`
}

// DeleteBetResponse confirma a remoção com o valor reembolsado
type DeleteBetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Refund  int64  `json:"refund,omitempty"`
	Coins   int64  `json:"coins"`
}
