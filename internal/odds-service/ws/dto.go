package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MatchID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	MatchID string `json:"matchId"` // requerido em subscribe/unsubscribe
}

// OddsUpdate representa uma atualização de odds enviada para clientes WebSocket
type OddsUpdate struct {
	MatchID string      `json:"matchId"`
	Payload interface{} `json:"payload"`
}
