package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/crickpool/crickpool/internal/scoring-worker/resolver"
	"github.com/crickpool/crickpool/internal/scoring/engine"
)

var ErrMatchNotFound = errors.New("match not found")

// Postgres dá ao scoring-worker acesso a seleções, estatísticas e pontuações
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListCandidates devolve os usuários elegíveis ao fallback: têm lista
// ranqueada de times e nenhuma seleção pra partida. Favoritos dos dois
// times vêm agregados na mesma consulta.
func (p *Postgres) ListCandidates(ctx context.Context, matchID, homeTeamID, awayTeamID string) ([]resolver.Candidate, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT tp.user_id,
		       tp.team_ids,
		       COALESCE(array_agg(fp.player_id ORDER BY fp.player_id) FILTER (WHERE fp.team_id = $2), '{}') AS fav_home,
		       COALESCE(array_agg(fp.player_id ORDER BY fp.player_id) FILTER (WHERE fp.team_id = $3), '{}') AS fav_away
		FROM team_preferences tp
		LEFT JOIN favorite_players fp
		       ON fp.user_id = tp.user_id AND fp.team_id IN ($2, $3)
		WHERE NOT EXISTS (
			SELECT 1 FROM fantasy_selections fs
			WHERE fs.user_id = tp.user_id AND fs.match_id = $1
		)
		GROUP BY tp.user_id, tp.team_ids
		ORDER BY tp.user_id`,
		matchID, homeTeamID, awayTeamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []resolver.Candidate
	for rows.Next() {
		var c resolver.Candidate
		var prefs, favHome, favAway pq.StringArray
		if err := rows.Scan(&c.UserID, &prefs, &favHome, &favAway); err != nil {
			return nil, err
		}
		c.TeamPrefs = prefs
		c.FavoriteHome = favHome
		c.FavoriteAway = favAway
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertAutoSelection grava a seleção gerada com by_user=false.
// DO NOTHING no conflito: se qualquer seleção apareceu no meio tempo,
// manual ou de outro worker, ela fica.
func (p *Postgres) InsertAutoSelection(ctx context.Context, matchID string, sel resolver.AutoSelection) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO fantasy_selections (user_id, match_id, team_id, players, captain_id, by_user, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, now(), now())
		ON CONFLICT (user_id, match_id) DO NOTHING`,
		sel.UserID, matchID, sel.TeamID, pq.Array(sel.Players), sel.CaptainID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RecomputeMatchPoints refaz a pontuação de todos os usuários com seleção
// na partida e depois ressoma os totais acumulados dos afetados.
// Recalcular tudo é barato no volume esperado e torna a operação
// idempotente: correções de estatística e replays convergem pro mesmo
// estado final.
func (p *Postgres) RecomputeMatchPoints(ctx context.Context, matchID string) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var resultKind string
	var winner sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT result_kind, winner_team_id FROM matches WHERE id=$1`, matchID,
	).Scan(&resultKind, &winner)
	if err == sql.ErrNoRows {
		return 0, ErrMatchNotFound
	}
	if err != nil {
		return 0, err
	}

	playerPoints, err := loadPlayerPoints(ctx, tx, matchID)
	if err != nil {
		return 0, err
	}

	sels, err := loadSelections(ctx, tx, matchID)
	if err != nil {
		return 0, err
	}

	userIDs := make([]string, 0, len(sels))
	for _, sel := range sels {
		bonus := engine.TeamBonus(sel.TeamID, winner.String, resultKind)
		total := engine.UserMatchPoints(sel.Engine(), playerPoints, bonus)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_match_points (user_id, match_id, team_bonus, player_total, total_points, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (user_id, match_id) DO UPDATE SET
				team_bonus = EXCLUDED.team_bonus,
				player_total = EXCLUDED.player_total,
				total_points = EXCLUDED.total_points,
				updated_at = now()`,
			sel.UserID, matchID, bonus, total-bonus, total); err != nil {
			return 0, err
		}
		userIDs = append(userIDs, sel.UserID)
	}

	if len(userIDs) > 0 {
		// Ressoma completa, nada de incrementos: o total nunca deriva
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_total_points (user_id, total_points, match_ids, updated_at)
			SELECT user_id,
			       SUM(total_points),
			       array_agg(match_id ORDER BY match_id),
			       now()
			FROM user_match_points
			WHERE user_id = ANY($1)
			GROUP BY user_id
			ON CONFLICT (user_id) DO UPDATE SET
				total_points = EXCLUDED.total_points,
				match_ids = EXCLUDED.match_ids,
				updated_at = now()`,
			pq.Array(userIDs)); err != nil {
			return 0, err
		}
	}

	return len(sels), tx.Commit()
}

type selectionRow struct {
	UserID  string
	TeamID  string
	Players []string
	Captain string
}

func (s selectionRow) Engine() engine.Selection {
	return engine.Selection{TeamID: s.TeamID, Players: s.Players, Captain: s.Captain}
}

func loadSelections(ctx context.Context, tx *sql.Tx, matchID string) ([]selectionRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT user_id, team_id, players, captain_id
		FROM fantasy_selections
		WHERE match_id = $1
		ORDER BY user_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []selectionRow
	for rows.Next() {
		var s selectionRow
		var players pq.StringArray
		if err := rows.Scan(&s.UserID, &s.TeamID, &players, &s.Captain); err != nil {
			return nil, err
		}
		s.Players = players
		out = append(out, s)
	}
	return out, rows.Err()
}

func loadPlayerPoints(ctx context.Context, tx *sql.Tx, matchID string) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT player_id, player_points FROM player_match_stats WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var pts int64
		if err := rows.Scan(&id, &pts); err != nil {
			return nil, err
		}
		out[id] = pts
	}
	return out, rows.Err()
}

// MatchTeams devolve os dois times de uma partida
func (p *Postgres) MatchTeams(ctx context.Context, matchID string) (home, away string, err error) {
	err = p.db.QueryRowContext(ctx,
		`SELECT home_team_id, away_team_id FROM matches WHERE id=$1`, matchID,
	).Scan(&home, &away)
	if err == sql.ErrNoRows {
		return "", "", ErrMatchNotFound
	}
	return home, away, err
}
