package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/crickpool/crickpool/internal/scoring/engine"
	"github.com/crickpool/crickpool/internal/settlement-worker/payout"
	"github.com/crickpool/crickpool/pkg/contracts/events"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrNotLocked     = errors.New("match is not locked")
)

// Summary é o resultado consolidado de uma liquidação
type Summary struct {
	BetsPaid  int
	TotalPaid int64
	// AlreadySettled indica replay do evento: nada foi pago de novo
	AlreadySettled bool
}

// Postgres executa a liquidação de uma partida numa única transação
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

type betRow struct {
	id      string
	userID  string
	teamID  string
	stake   int64
	settled bool
}

// SettleMatch paga todas as apostas abertas da partida e fecha o estado
// em SETTLED. Tudo numa transação: créditos, ledger, earning das apostas,
// agregado por time e a transição de estado. Se o worker morrer no meio,
// o rollback deixa a partida LOCKED e o replay do evento refaz do zero.
// Replays de partidas já liquidadas voltam como AlreadySettled sem efeito.
func (p *Postgres) SettleMatch(ctx context.Context, ev events.MatchFinalized) (Summary, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, err
	}
	defer tx.Rollback()

	var state, home, away string
	err = tx.QueryRowContext(ctx,
		`SELECT state, home_team_id, away_team_id FROM matches WHERE id=$1 FOR UPDATE`,
		ev.MatchID,
	).Scan(&state, &home, &away)
	if err == sql.ErrNoRows {
		return Summary{}, ErrMatchNotFound
	}
	if err != nil {
		return Summary{}, err
	}
	switch state {
	case "SETTLED":
		return Summary{AlreadySettled: true}, nil
	case "LOCKED":
		// segue
	default:
		return Summary{}, ErrNotLocked
	}

	bets, err := loadBets(ctx, tx, ev.MatchID)
	if err != nil {
		return Summary{}, err
	}

	// Pools sobre TODAS as apostas da partida, pagas ou não: a razão
	// pari-mutuel é propriedade do mercado inteiro e precisa ser a mesma
	// em qualquer retomada. O guard por settled_at entra só na hora de
	// pagar, pra replays parciais nunca pagarem duas vezes.
	var poolHome, poolAway int64
	for _, b := range bets {
		if b.teamID == home {
			poolHome += b.stake
		} else {
			poolAway += b.stake
		}
	}

	// Mercado de lado único não tem pagamento computável. Partida sem
	// nenhuma aposta ainda liquida: só fecha o estado e o agregado por time.
	if ev.ResultKind == events.ResultDecided && len(bets) > 0 {
		poolWinner, poolLoser := poolHome, poolAway
		if ev.WinnerTeamID == away {
			poolWinner, poolLoser = poolAway, poolHome
		}
		if err := payout.ValidatePools(poolWinner, poolLoser); err != nil {
			return Summary{}, err
		}
	}

	var sum Summary
	for _, b := range bets {
		if b.settled {
			continue
		}

		var earning int64
		switch {
		case ev.ResultKind == events.ResultNoResult:
			earning = payout.RefundEarning(b.stake)
		case b.teamID == ev.WinnerTeamID:
			poolWinner, poolLoser := poolHome, poolAway
			if ev.WinnerTeamID == away {
				poolWinner, poolLoser = poolAway, poolHome
			}
			earning, err = payout.WinnerEarning(b.stake, poolWinner, poolLoser)
			if err != nil {
				return Summary{}, err
			}
		default:
			earning = 0
		}

		if err := payBet(ctx, tx, b, ev.MatchID, earning); err != nil {
			return Summary{}, err
		}
		sum.BetsPaid++
		sum.TotalPaid += earning
	}

	// Agregado por time: 10/0 no resultado decidido, 5/5 no sem resultado
	for _, team := range []string{home, away} {
		pts := engine.TeamMatchPoints(team, ev.WinnerTeamID, ev.ResultKind)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_match_results (match_id, team_id, points)
			VALUES ($1, $2, $3)
			ON CONFLICT (match_id, team_id) DO UPDATE SET points = EXCLUDED.points`,
			ev.MatchID, team, pts); err != nil {
			return Summary{}, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET state='SETTLED', updated_at=NOW() WHERE id=$1`,
		ev.MatchID); err != nil {
		return Summary{}, err
	}

	return sum, tx.Commit()
}

func loadBets(ctx context.Context, tx *sql.Tx, matchID string) ([]betRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, user_id, team_id, stake, settled_at IS NOT NULL
		FROM bets
		WHERE match_id = $1
		ORDER BY created_at
		FOR UPDATE`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betRow
	for rows.Next() {
		var b betRow
		if err := rows.Scan(&b.id, &b.userID, &b.teamID, &b.stake, &b.settled); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// payBet credita o retorno, registra o lançamento no ledger e marca a aposta
// como paga. Lançamento de zero também entra: a perda fica auditável.
func payBet(ctx context.Context, tx *sql.Tx, b betRow, matchID string, earning int64) error {
	if earning > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET coins = coins + $1 WHERE id=$2`, earning, b.userID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(id, user_id, entry_type, delta, bet_id, match_id, message)
		VALUES ($1, $2, 'earn', $3, $4, $5, 'match settlement')`,
		uuid.NewString(), b.userID, earning, b.id, matchID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bets SET earning=$1, settled_at=NOW(), updated_at=NOW() WHERE id=$2`,
		earning, b.id); err != nil {
		return err
	}
	return nil
}
