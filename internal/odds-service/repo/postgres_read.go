package repo

import (
	"context"
	"database/sql"

	"github.com/crickpool/crickpool/internal/odds-service/dto"
	"github.com/crickpool/crickpool/internal/odds-worker/calculator"
)

// ReadRepo é o acesso somente-leitura usado pela API de odds
type ReadRepo struct {
	DB *sql.DB
}

// ListMatches retorna as partidas ordenadas por horário de início
func (r *ReadRepo) ListMatches(ctx context.Context) ([]dto.Match, error) {
	const q = `
		SELECT id, home_team_id, away_team_id, starts_at, state
		FROM matches
		ORDER BY starts_at;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Match
	for rows.Next() {
		var m dto.Match
		if err := rows.Scan(&m.MatchID, &m.HomeTeamID, &m.AwayTeamID, &m.StartsAt, &m.State); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetOddsByMatch recalcula pools e odds direto do banco.
// Fallback quando o cache do odds-worker está frio ou expirou.
func (r *ReadRepo) GetOddsByMatch(ctx context.Context, matchID string) (dto.MatchOdds, error) {
	var home, away string
	err := r.DB.QueryRowContext(ctx,
		`SELECT home_team_id, away_team_id FROM matches WHERE id=$1`, matchID).
		Scan(&home, &away)
	if err != nil {
		return dto.MatchOdds{}, err
	}

	const q = `
		SELECT
		  COALESCE(SUM(stake) FILTER (WHERE team_id = $2), 0),
		  COALESCE(SUM(stake) FILTER (WHERE team_id = $3), 0)
		FROM bets
		WHERE match_id = $1 AND settled_at IS NULL;
	`
	var pools calculator.Pools
	if err := r.DB.QueryRowContext(ctx, q, matchID, home, away).Scan(&pools.Home, &pools.Away); err != nil {
		return dto.MatchOdds{}, err
	}

	odds := calculator.Compute(pools)
	return dto.MatchOdds{
		MatchID:       matchID,
		HomeTeamID:    home,
		AwayTeamID:    away,
		PoolHome:      pools.Home,
		PoolAway:      pools.Away,
		OddsHome:      odds.Home,
		OddsAway:      odds.Away,
		HomeAvailable: odds.HomeAvailable,
		AwayAvailable: odds.AwayAvailable,
	}, nil
}
