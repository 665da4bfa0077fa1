package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crickpool/crickpool/internal/odds-worker/calculator"
)

var ErrMatchNotFound = errors.New("match not found")

// PostgresRepo lê os pools de apostas ativas de uma partida
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// MatchPools soma os stakes não liquidados por time da partida.
// Apostas já liquidadas ficam de fora: o mercado morreu com a liquidação.
func (r *PostgresRepo) MatchPools(ctx context.Context, matchID string) (home string, away string, pools calculator.Pools, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT home_team_id, away_team_id FROM matches WHERE id=$1`, matchID).
		Scan(&home, &away)
	if err == sql.ErrNoRows {
		return "", "", calculator.Pools{}, ErrMatchNotFound
	} else if err != nil {
		return "", "", calculator.Pools{}, err
	}

	const q = `
		SELECT
		  COALESCE(SUM(stake) FILTER (WHERE team_id = $2), 0),
		  COALESCE(SUM(stake) FILTER (WHERE team_id = $3), 0)
		FROM bets
		WHERE match_id = $1 AND settled_at IS NULL
	`
	err = r.DB.QueryRowContext(ctx, q, matchID, home, away).Scan(&pools.Home, &pools.Away)
	return home, away, pools, err
}
