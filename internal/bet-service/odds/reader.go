package odds

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// Reader consulta no Redis as odds correntes calculadas pelo odds-worker.
// Usado só para enriquecer a resposta de aposta com o retorno potencial;
// a liquidação real usa os pools do banco, nunca o cache.
type Reader struct {
	Rdb *redis.Client
}

func NewReader(r *redis.Client) *Reader { return &Reader{Rdb: r} }

// Espera chave "odds:current:{matchID}" com events.OddsUpdate serializado
func (r *Reader) Current(ctx context.Context, matchID string) (events.OddsUpdate, bool, error) {
	b, err := r.Rdb.Get(ctx, "odds:current:"+matchID).Bytes()
	if err == redis.Nil {
		return events.OddsUpdate{}, false, nil
	}
	if err != nil {
		return events.OddsUpdate{}, false, err
	}
	var upd events.OddsUpdate
	if err := json.Unmarshal(b, &upd); err != nil {
		return events.OddsUpdate{}, false, err
	}
	return upd, true, nil
}

// PotentialEarning estima o pagamento de um stake no time informado.
// Retorna ok=false quando a odd do lado é indefinida (pool oposto zerado).
func PotentialEarning(upd events.OddsUpdate, teamID string, stake int64) (int64, bool) {
	switch teamID {
	case upd.HomeTeamID:
		if !upd.HomeAvailable {
			return 0, false
		}
		return stake + int64(float64(stake)*upd.OddsHome), true
	case upd.AwayTeamID:
		if !upd.AwayAvailable {
			return 0, false
		}
		return stake + int64(float64(stake)*upd.OddsAway), true
	}
	return 0, false
}
