package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Aposta mínima em moedas
const MinStake int64 = 100

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBelowMinimumStake = errors.New("stake below minimum")
	ErrMatchNotFound     = errors.New("match not found")
	ErrBettingClosed     = errors.New("betting closed for this match")
	ErrInvalidTeam       = errors.New("team does not play this match")
	ErrBetNotFound       = errors.New("bet not found")
	ErrForbidden         = errors.New("bet belongs to another user")
	ErrUserNotFound      = errors.New("user not found")
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// PlaceOrUpdate cria ou atualiza a aposta do usuário na partida.
//
// Tudo numa única transação com lock pessimista na linha do usuário:
// checagem de saldo, débito, upsert da aposta e lançamento no ledger nunca
// ficam visíveis pela metade para leitores concorrentes.
//
// Em atualização, o stake anterior é devolvido antes de cobrar o novo, e o
// ledger recebe o delta líquido (oldStake - newStake).
func (p *Postgres) PlaceOrUpdate(ctx context.Context, userID, matchID, teamID string, stake int64) (bet Bet, newBalance int64, err error) {
	if stake < MinStake {
		return Bet{}, 0, ErrBelowMinimumStake
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Bet{}, 0, err
	}
	defer tx.Rollback()

	// Partida precisa existir, estar aberta e conter o time apostado
	var state, home, away string
	err = tx.QueryRowContext(ctx,
		`SELECT state, home_team_id, away_team_id FROM matches WHERE id=$1`, matchID).
		Scan(&state, &home, &away)
	if err == sql.ErrNoRows {
		return Bet{}, 0, ErrMatchNotFound
	} else if err != nil {
		return Bet{}, 0, err
	}
	if state != "OPEN" {
		return Bet{}, 0, ErrBettingClosed
	}
	if teamID != home && teamID != away {
		return Bet{}, 0, ErrInvalidTeam
	}

	var coins int64
	err = tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&coins)
	if err == sql.ErrNoRows {
		return Bet{}, 0, ErrUserNotFound
	} else if err != nil {
		return Bet{}, 0, err
	}

	// Aposta anterior (se houver): o stake antigo conta como saldo disponível
	var oldID string
	var oldStake int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, stake FROM bets WHERE user_id=$1 AND match_id=$2 FOR UPDATE`,
		userID, matchID).Scan(&oldID, &oldStake)
	if err != nil && err != sql.ErrNoRows {
		return Bet{}, 0, err
	}

	if stake > coins+oldStake {
		return Bet{}, 0, ErrInsufficientFunds
	}

	newBalance = coins + oldStake - stake
	if _, err = tx.ExecContext(ctx, `UPDATE users SET coins=$1 WHERE id=$2`, newBalance, userID); err != nil {
		return Bet{}, 0, err
	}

	betID := oldID
	if oldID == "" {
		betID = uuid.NewString()
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bets (id, user_id, match_id, team_id, stake, earning)
			VALUES ($1,$2,$3,$4,$5,0)`,
			betID, userID, matchID, teamID, stake); err != nil {
			return Bet{}, 0, err
		}
	} else {
		if _, err = tx.ExecContext(ctx, `
			UPDATE bets SET team_id=$1, stake=$2, updated_at=NOW() WHERE id=$3`,
			teamID, stake, betID); err != nil {
			return Bet{}, 0, err
		}
	}

	// Lançamento do delta líquido; numa aposta nova vale -stake
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(id, user_id, entry_type, delta, bet_id, match_id, message)
		VALUES ($1,$2,'bet',$3,$4,$5,$6)`,
		uuid.NewString(), userID, oldStake-stake, betID, matchID, "stake on "+teamID); err != nil {
		return Bet{}, 0, err
	}

	if err = tx.Commit(); err != nil {
		return Bet{}, 0, err
	}

	return Bet{ID: betID, UserID: userID, MatchID: matchID, TeamID: teamID, Stake: stake}, newBalance, nil
}

// Delete remove a aposta do próprio usuário com reembolso integral do stake.
// Remove também os lançamentos "bet" associados (única exceção à regra de
// ledger imutável). Aposta já liquidada não pode mais ser removida.
func (p *Postgres) Delete(ctx context.Context, userID, betID string) (refund int64, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var owner string
	var stake int64
	var settledAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, stake, settled_at FROM bets WHERE id=$1 FOR UPDATE`, betID).
		Scan(&owner, &stake, &settledAt)
	if err == sql.ErrNoRows {
		return 0, 0, ErrBetNotFound
	} else if err != nil {
		return 0, 0, err
	}
	if owner != userID {
		return 0, 0, ErrForbidden
	}
	if settledAt.Valid {
		return 0, 0, ErrBetNotFound // já liquidada e encerrada
	}

	var coins int64
	if err = tx.QueryRowContext(ctx,
		`SELECT coins FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&coins); err != nil {
		return 0, 0, err
	}

	newBalance = coins + stake
	if _, err = tx.ExecContext(ctx, `UPDATE users SET coins=$1 WHERE id=$2`, newBalance, userID); err != nil {
		return 0, 0, err
	}

	// Os lançamentos "bet" dessa aposta somam exatamente -stake
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM wallet_ledger WHERE bet_id=$1 AND entry_type='bet'`, betID); err != nil {
		return 0, 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, betID); err != nil {
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return stake, newBalance, nil
}

// GetByID retorna uma aposta pelo id
func (p *Postgres) GetByID(ctx context.Context, betID string) (Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, match_id, team_id, stake, earning, settled_at, created_at, updated_at
		FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &b.UserID, &b.MatchID, &b.TeamID, &b.Stake, &b.Earning, &b.SettledAt, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return Bet{}, ErrBetNotFound
	}
	return b, err
}

// GetForUserMatch retorna a aposta ativa do usuário numa partida
func (p *Postgres) GetForUserMatch(ctx context.Context, userID, matchID string) (Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, match_id, team_id, stake, earning, settled_at, created_at, updated_at
		FROM bets WHERE user_id=$1 AND match_id=$2`, userID, matchID).
		Scan(&b.ID, &b.UserID, &b.MatchID, &b.TeamID, &b.Stake, &b.Earning, &b.SettledAt, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return Bet{}, ErrBetNotFound
	}
	return b, err
}
