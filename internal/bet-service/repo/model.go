package repo

import (
	"database/sql"
	"time"
)

// Bet é o modelo persistido no Postgres.
// Existe no máximo uma aposta ativa por (user_id, match_id): atualizações
// sobrescrevem time e valor, nunca criam uma segunda linha.
type Bet struct {
	ID        string
	UserID    string
	MatchID   string
	TeamID    string
	Stake     int64
	Earning   int64        // 0 até a liquidação
	SettledAt sql.NullTime // preenchido pelo settlement-worker
	CreatedAt time.Time
	UpdatedAt time.Time
}
