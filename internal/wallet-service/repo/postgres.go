package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Postgres implementa as operações de conta de moedas (coin account)
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Moedas concedidas na criação de uma conta (lançamento "initial")
const InitialCoins int64 = 5000

// User representa a visão da carteira de um usuário
type User struct {
	ID    string
	Name  string
	Role  string // user | admin | bot
	Coins int64
}

// LedgerEntry é um lançamento imutável do histórico de saldo
type LedgerEntry struct {
	ID        string
	UserID    string
	EntryType string // bet | earn | give | initial
	Delta     int64
	BetID     sql.NullString
	MatchID   sql.NullString
	Message   sql.NullString
	CreatedAt time.Time
}

// GetUser retorna identidade, papel e saldo atual do usuário
func (p *Postgres) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, role, coins FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Name, &u.Role, &u.Coins)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	return u, err
}

// CreateUser insere o usuário já com o crédito inicial e o lançamento
// "initial" correspondente, tudo na mesma transação
func (p *Postgres) CreateUser(ctx context.Context, name, role string) (User, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO users(id, name, role, coins) VALUES($1,$2,$3,$4)`,
		id, name, role, InitialCoins); err != nil {
		return User{}, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(id, user_id, entry_type, delta, message)
		 VALUES($1,$2,'initial',$3,$4)`,
		uuid.NewString(), id, InitialCoins, "welcome credit"); err != nil {
		return User{}, err
	}

	if err = tx.Commit(); err != nil {
		return User{}, err
	}
	return User{ID: id, Name: name, Role: role, Coins: InitialCoins}, nil
}

// Grant credita moedas ao usuário (operação administrativa, tipo "give")
// Garante lock pessimista na linha do usuário e registra no ledger
func (p *Postgres) Grant(ctx context.Context, userID string, amount int64, message string) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var coins int64
	err = tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id=$2`, amount, userID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(id, user_id, entry_type, delta, message)
		 VALUES($1,$2,'give',$3,$4)`,
		uuid.NewString(), userID, amount, message); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return coins + amount, nil
}

// Ledger lista os lançamentos mais recentes do usuário
func (p *Postgres) Ledger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, entry_type, delta, bet_id, match_id, message, created_at
		FROM wallet_ledger
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Delta,
			&e.BetID, &e.MatchID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reconcile compara o saldo atual com a soma dos deltas do ledger.
// Divergência indica violação de integridade: apenas sinaliza, nunca corrige
// automaticamente (corrigir aqui arriscaria creditar moedas em dobro).
func (p *Postgres) Reconcile(ctx context.Context, userID string) (coins int64, ledgerSum int64, err error) {
	err = p.db.QueryRowContext(ctx, `SELECT coins FROM users WHERE id=$1`, userID).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, 0, ErrNotFound
	} else if err != nil {
		return 0, 0, err
	}

	err = p.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta),0) FROM wallet_ledger WHERE user_id=$1`, userID).Scan(&ledgerSum)
	if err != nil {
		return 0, 0, err
	}
	return coins, ledgerSum, nil
}
