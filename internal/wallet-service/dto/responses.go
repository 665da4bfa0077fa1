package dto

import "time"

// WalletResponse é a visão pública da conta de moedas
type WalletResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Coins  int64  `json:"coins"`
}

// LedgerEntryResponse é um lançamento do histórico de saldo
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	EntryType string    `json:"entryType"` // bet | earn | give | initial
	Delta     int64     `json:"delta"`
	BetID     string    `json:"betId,omitempty"`
	MatchID   string    `json:"matchId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReconcileResponse compara saldo e soma do ledger para auditoria
type ReconcileResponse struct {
	UserID     string `json:"userId"`
	Coins      int64  `json:"coins"`
	LedgerSum  int64  `json:"ledgerSum"`
	Consistent bool   `json:"consistent"`
}
