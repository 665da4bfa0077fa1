package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crickpool/crickpool/internal/odds-service/cache"
	"github.com/crickpool/crickpool/internal/odds-service/dto"
	"github.com/crickpool/crickpool/internal/odds-service/repo"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

// API expõe os endpoints REST de consulta de partidas e odds
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de odds
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/matches", a.listMatches)          // Lista partidas
	r.Get("/v1/matches/{id}/odds", a.getOdds)    // Pools e odds de uma partida
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listMatches retorna todas as partidas disponíveis
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	mt, err := a.ReadRepo.ListMatches(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, mt)
}

// getOdds retorna pools e odds da partida, preferencialmente do cache
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache events.OddsUpdate
	if ok, _ := a.Cache.GetOdds(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, dto.MatchOdds{
			MatchID:       fromCache.MatchID,
			HomeTeamID:    fromCache.HomeTeamID,
			AwayTeamID:    fromCache.AwayTeamID,
			PoolHome:      fromCache.PoolHome,
			PoolAway:      fromCache.PoolAway,
			OddsHome:      fromCache.OddsHome,
			OddsAway:      fromCache.OddsAway,
			HomeAvailable: fromCache.HomeAvailable,
			AwayAvailable: fromCache.AwayAvailable,
			Version:       fromCache.Version,
			UpdatedAt:     fromCache.UpdatedAt.Format(time.RFC3339),
		})
		return
	}

	od, err := a.ReadRepo.GetOddsByMatch(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, od)
}
