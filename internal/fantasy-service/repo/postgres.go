package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/crickpool/crickpool/internal/scoring/engine"
)

// SelectionSize é o tamanho fixo do time fantasy de um usuário
const SelectionSize = 4

// MaxFavoritesPerTeam limita os jogadores favoritos guardados por time
const MaxFavoritesPerTeam = 2

var (
	ErrSelectionNotFound = errors.New("selection not found")
	ErrSelectionsClosed  = errors.New("selections closed for this match")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrMatchNotFound     = errors.New("match not found")
	ErrTooManyFavorites  = errors.New("too many favorite players for team")
)

// Selection é a escolha fantasy persistida de um usuário para uma partida
type Selection struct {
	UserID    string
	MatchID   string
	TeamID    string
	Players   []string
	CaptainID string
	ByUser    bool // false quando veio do fallback automático no lock
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchPoints é a pontuação fantasy de um usuário numa partida
type MatchPoints struct {
	UserID      string
	MatchID     string
	TeamBonus   int64
	PlayerTotal int64
	Total       int64
	UpdatedAt   time.Time
}

// LeaderboardRow é uma linha do ranking global por pontos acumulados
type LeaderboardRow struct {
	UserID string
	Name   string
	Points int64
	Rank   int
}

// Postgres implementa a persistência de seleções, preferências e pontuações
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// SaveSelection grava ou substitui a seleção do usuário para uma partida.
// Só enquanto a partida está aberta; depois do lock a seleção congela.
func (p *Postgres) SaveSelection(ctx context.Context, sel Selection) (Selection, error) {
	if err := validateSelection(sel); err != nil {
		return Selection{}, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Selection{}, err
	}
	defer tx.Rollback()

	var state, home, away string
	err = tx.QueryRowContext(ctx,
		`SELECT state, home_team_id, away_team_id FROM matches WHERE id = $1`,
		sel.MatchID,
	).Scan(&state, &home, &away)
	if err == sql.ErrNoRows {
		return Selection{}, ErrMatchNotFound
	}
	if err != nil {
		return Selection{}, err
	}
	if state != "OPEN" {
		return Selection{}, ErrSelectionsClosed
	}
	if sel.TeamID != home && sel.TeamID != away {
		return Selection{}, ErrInvalidSelection
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO fantasy_selections (user_id, match_id, team_id, players, captain_id, by_user, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, now(), now())
		ON CONFLICT (user_id, match_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			players = EXCLUDED.players,
			captain_id = EXCLUDED.captain_id,
			by_user = TRUE,
			updated_at = now()
		RETURNING created_at, updated_at`,
		sel.UserID, sel.MatchID, sel.TeamID, pq.Array(sel.Players), sel.CaptainID,
	).Scan(&sel.CreatedAt, &sel.UpdatedAt)
	if err != nil {
		return Selection{}, err
	}
	sel.ByUser = true
	return sel, tx.Commit()
}

// validateSelection checa as regras estruturais: 4 jogadores distintos e
// capitão dentro do time escolhido
func validateSelection(sel Selection) error {
	if len(sel.Players) != SelectionSize {
		return ErrInvalidSelection
	}
	seen := make(map[string]bool, SelectionSize)
	captainIn := false
	for _, pl := range sel.Players {
		if pl == "" || seen[pl] {
			return ErrInvalidSelection
		}
		seen[pl] = true
		if pl == sel.CaptainID {
			captainIn = true
		}
	}
	if !captainIn {
		return ErrInvalidSelection
	}
	return nil
}

// GetSelection devolve a seleção do usuário para uma partida
func (p *Postgres) GetSelection(ctx context.Context, userID, matchID string) (Selection, error) {
	var sel Selection
	var players pq.StringArray
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, match_id, team_id, players, captain_id, by_user, created_at, updated_at
		FROM fantasy_selections
		WHERE user_id = $1 AND match_id = $2`,
		userID, matchID,
	).Scan(&sel.UserID, &sel.MatchID, &sel.TeamID, &players, &sel.CaptainID, &sel.ByUser, &sel.CreatedAt, &sel.UpdatedAt)
	if err == sql.ErrNoRows {
		return Selection{}, ErrSelectionNotFound
	}
	if err != nil {
		return Selection{}, err
	}
	sel.Players = players
	return sel, nil
}

// Engine converte a seleção persistida pro formato do motor de pontuação
func (s Selection) Engine() engine.Selection {
	return engine.Selection{TeamID: s.TeamID, Players: s.Players, Captain: s.CaptainID}
}

// SaveTeamPreferences substitui a lista ranqueada de times do usuário.
// A posição no array é o rank; índice menor ganha no fallback.
func (p *Postgres) SaveTeamPreferences(ctx context.Context, userID string, teamIDs []string) error {
	if len(teamIDs) == 0 {
		return ErrInvalidSelection
	}
	seen := make(map[string]bool, len(teamIDs))
	for _, t := range teamIDs {
		if t == "" || seen[t] {
			return ErrInvalidSelection
		}
		seen[t] = true
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO team_preferences (user_id, team_ids, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET team_ids = EXCLUDED.team_ids, updated_at = now()`,
		userID, pq.Array(teamIDs))
	return err
}

// GetTeamPreferences devolve a lista ranqueada de times do usuário
// (vazia se nunca configurou)
func (p *Postgres) GetTeamPreferences(ctx context.Context, userID string) ([]string, error) {
	var teams pq.StringArray
	err := p.db.QueryRowContext(ctx,
		`SELECT team_ids FROM team_preferences WHERE user_id = $1`, userID,
	).Scan(&teams)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// SaveFavoritePlayers substitui os favoritos do usuário para um time
func (p *Postgres) SaveFavoritePlayers(ctx context.Context, userID, teamID string, playerIDs []string) error {
	if len(playerIDs) > MaxFavoritesPerTeam {
		return ErrTooManyFavorites
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, pl := range playerIDs {
		if pl == "" || seen[pl] {
			return ErrInvalidSelection
		}
		seen[pl] = true
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM favorite_players WHERE user_id = $1 AND team_id = $2`,
		userID, teamID); err != nil {
		return err
	}
	for _, pl := range playerIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorite_players (user_id, team_id, player_id) VALUES ($1, $2, $3)`,
			userID, teamID, pl); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetFavoritePlayers devolve os favoritos do usuário para um time
func (p *Postgres) GetFavoritePlayers(ctx context.Context, userID, teamID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT player_id FROM favorite_players WHERE user_id = $1 AND team_id = $2 ORDER BY player_id`,
		userID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var pl string
		if err := rows.Scan(&pl); err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

// GetMatchPoints devolve a pontuação do usuário numa partida
func (p *Postgres) GetMatchPoints(ctx context.Context, userID, matchID string) (MatchPoints, error) {
	var mp MatchPoints
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, match_id, team_bonus, player_total, total_points, updated_at
		FROM user_match_points
		WHERE user_id = $1 AND match_id = $2`,
		userID, matchID,
	).Scan(&mp.UserID, &mp.MatchID, &mp.TeamBonus, &mp.PlayerTotal, &mp.Total, &mp.UpdatedAt)
	if err == sql.ErrNoRows {
		return MatchPoints{}, ErrSelectionNotFound
	}
	return mp, err
}

// GetTotalPoints devolve os pontos acumulados do usuário (0 se nunca pontuou)
func (p *Postgres) GetTotalPoints(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := p.db.QueryRowContext(ctx,
		`SELECT total_points FROM user_total_points WHERE user_id = $1`, userID,
	).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return total, err
}

// Leaderboard devolve o top-N do ranking global. Empates compartilham
// ordem por pontos e desempatam por nome pra estabilizar a página.
func (p *Postgres) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT t.user_id, u.name, t.total_points,
		       RANK() OVER (ORDER BY t.total_points DESC) AS rank
		FROM user_total_points t
		JOIN users u ON u.id = t.user_id
		ORDER BY t.total_points DESC, u.name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

// SearchLeaderboard acha usuários por nome junto com a posição no ranking
func (p *Postgres) SearchLeaderboard(ctx context.Context, name string) ([]LeaderboardRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT user_id, name, total_points, rank FROM (
			SELECT t.user_id, u.name, t.total_points,
			       RANK() OVER (ORDER BY t.total_points DESC) AS rank
			FROM user_total_points t
			JOIN users u ON u.id = t.user_id
		) ranked
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY rank ASC
		LIMIT 20`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaderboard(rows)
}

func scanLeaderboard(rows *sql.Rows) ([]LeaderboardRow, error) {
	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Name, &r.Points, &r.Rank); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
