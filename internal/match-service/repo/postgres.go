package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/crickpool/crickpool/internal/scoring/engine"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidTransition = errors.New("invalid match state transition")
	ErrInvalidWinner     = errors.New("winner does not play this match")
)

// Estados da máquina de estado da partida: OPEN -> LOCKED -> SETTLED.
// A liquidação só parte de LOCKED; o settlement-worker grava SETTLED.
const (
	StateOpen    = "OPEN"
	StateLocked  = "LOCKED"
	StateSettled = "SETTLED"
)

// Match é o modelo persistido de uma partida
type Match struct {
	ID           string
	HomeTeamID   string
	AwayTeamID   string
	StartsAt     time.Time
	State        string
	ResultKind   string // '' | DECIDED | NO_RESULT
	WinnerTeamID sql.NullString
}

// Postgres implementa a persistência de partidas e estatísticas
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere uma partida aberta para apostas e seleções
func (p *Postgres) Create(ctx context.Context, homeTeamID, awayTeamID string, startsAt time.Time) (Match, error) {
	m := Match{
		ID:         uuid.NewString(),
		HomeTeamID: homeTeamID,
		AwayTeamID: awayTeamID,
		StartsAt:   startsAt,
		State:      StateOpen,
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO matches (id, home_team_id, away_team_id, starts_at, state, result_kind)
		VALUES ($1,$2,$3,$4,'OPEN','')`,
		m.ID, homeTeamID, awayTeamID, startsAt)
	return m, err
}

// Get retorna uma partida pelo id
func (p *Postgres) Get(ctx context.Context, matchID string) (Match, error) {
	var m Match
	err := p.db.QueryRowContext(ctx, `
		SELECT id, home_team_id, away_team_id, starts_at, state, result_kind, winner_team_id
		FROM matches WHERE id=$1`, matchID).
		Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.StartsAt, &m.State, &m.ResultKind, &m.WinnerTeamID)
	if err == sql.ErrNoRows {
		return Match{}, ErrMatchNotFound
	}
	return m, err
}

// Lock fecha a janela de apostas/seleções (OPEN -> LOCKED).
// Reexecução é inofensiva: partida já travada retorna alreadyLocked=true
// sem erro, pra o gatilho externo de cron poder repetir a chamada.
func (p *Postgres) Lock(ctx context.Context, matchID string) (m Match, alreadyLocked bool, err error) {
	m, err = p.Get(ctx, matchID)
	if err != nil {
		return Match{}, false, err
	}
	switch m.State {
	case StateLocked:
		return m, true, nil
	case StateSettled:
		return Match{}, false, ErrInvalidTransition
	}

	res, err := p.db.ExecContext(ctx,
		`UPDATE matches SET state='LOCKED' WHERE id=$1 AND state='OPEN'`, matchID)
	if err != nil {
		return Match{}, false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// corrida com outro lock concorrente; trata como já travada
		return m, true, nil
	}
	m.State = StateLocked
	return m, false, nil
}

// Finalize registra o resultado da partida (somente a partir de LOCKED).
// A transição para SETTLED é responsabilidade do settlement-worker.
func (p *Postgres) Finalize(ctx context.Context, matchID, resultKind, winnerTeamID string) (Match, error) {
	m, err := p.Get(ctx, matchID)
	if err != nil {
		return Match{}, err
	}
	if m.State != StateLocked || m.ResultKind != "" {
		return Match{}, ErrInvalidTransition
	}
	if resultKind == events.ResultDecided && winnerTeamID != m.HomeTeamID && winnerTeamID != m.AwayTeamID {
		return Match{}, ErrInvalidWinner
	}

	var winner any
	if resultKind == events.ResultDecided {
		winner = winnerTeamID
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET result_kind=$1, winner_team_id=$2
		WHERE id=$3 AND state='LOCKED' AND result_kind=''`,
		resultKind, winner, matchID)
	if err != nil {
		return Match{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Match{}, ErrInvalidTransition
	}

	m.ResultKind = resultKind
	if resultKind == events.ResultDecided {
		m.WinnerTeamID = sql.NullString{String: winnerTeamID, Valid: true}
	}
	return m, nil
}

// PlayerStatRow é a estatística persistida com os pontos derivados
type PlayerStatRow struct {
	MatchID      string
	PlayerID     string
	Stat         engine.PlayerStat
	PlayerPoints int64
}

// UpsertStat grava (ou corrige) as estatísticas brutas de um jogador e
// recalcula player_points na mesma escrita. ON CONFLICT garante uma linha
// por (match_id, player_id).
func (p *Postgres) UpsertStat(ctx context.Context, matchID, playerID string, s engine.PlayerStat) (PlayerStatRow, error) {
	points := engine.PlayerPoints(s)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO player_match_stats
		  (match_id, player_id, is_played, runs, wickets, catches, stumpings, runouts, player_points)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (match_id, player_id) DO UPDATE SET
		  is_played     = EXCLUDED.is_played,
		  runs          = EXCLUDED.runs,
		  wickets       = EXCLUDED.wickets,
		  catches       = EXCLUDED.catches,
		  stumpings     = EXCLUDED.stumpings,
		  runouts       = EXCLUDED.runouts,
		  player_points = EXCLUDED.player_points`,
		matchID, playerID, s.IsPlayed, s.Runs, s.Wickets, s.Catches, s.Stumpings, s.Runouts, points)
	if err != nil {
		return PlayerStatRow{}, err
	}
	return PlayerStatRow{MatchID: matchID, PlayerID: playerID, Stat: s, PlayerPoints: points}, nil
}

// ListStats retorna as estatísticas lançadas de uma partida
func (p *Postgres) ListStats(ctx context.Context, matchID string) ([]PlayerStatRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT player_id, is_played, runs, wickets, catches, stumpings, runouts, player_points
		FROM player_match_stats WHERE match_id=$1 ORDER BY player_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerStatRow
	for rows.Next() {
		r := PlayerStatRow{MatchID: matchID}
		if err := rows.Scan(&r.PlayerID, &r.Stat.IsPlayed, &r.Stat.Runs, &r.Stat.Wickets,
			&r.Stat.Catches, &r.Stat.Stumpings, &r.Stat.Runouts, &r.PlayerPoints); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
