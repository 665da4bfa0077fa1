package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func expectMatchOpen(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, home_team_id, away_team_id FROM matches WHERE id=$1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"state", "home_team_id", "away_team_id"}).
			AddRow("OPEN", "TEAM_A", "TEAM_B"))
}

func TestPlaceBetDebitsAndLogsInOneTx(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	expectMatchOpen(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT coins FROM users WHERE id=$1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(int64(5000)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, stake FROM bets WHERE user_id=$1 AND match_id=$2 FOR UPDATE`)).
		WithArgs("u1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stake"})) // sem aposta anterior
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET coins=$1 WHERE id=$2`)).
		WithArgs(int64(4000), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bets`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallet_ledger`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bet, balance, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_A", 1000)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if balance != 4000 {
		t.Errorf("balance = %d, want 4000", balance)
	}
	if bet.Stake != 1000 || bet.TeamID != "TEAM_A" {
		t.Errorf("bet = %+v", bet)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateBetCreditsOldStakeFirst(t *testing.T) {
	repo, mock := newMock(t)

	// Saldo 4000 com aposta anterior de 1000: trocar pra 3500 deve passar
	mock.ExpectBegin()
	expectMatchOpen(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT coins FROM users WHERE id=$1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(int64(4000)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, stake FROM bets WHERE user_id=$1 AND match_id=$2 FOR UPDATE`)).
		WithArgs("u1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stake"}).AddRow("b1", int64(1000)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET coins=$1 WHERE id=$2`)).
		WithArgs(int64(1500), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bets SET team_id=$1, stake=$2, updated_at=NOW() WHERE id=$3`)).
		WithArgs("TEAM_B", int64(3500), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallet_ledger`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, balance, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_B", 3500)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if balance != 1500 {
		t.Errorf("balance = %d, want 1500 (4000 + 1000 - 3500)", balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	expectMatchOpen(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT coins FROM users WHERE id=$1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(int64(500)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, stake FROM bets WHERE user_id=$1 AND match_id=$2 FOR UPDATE`)).
		WithArgs("u1", "m1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stake"}))
	mock.ExpectRollback()

	_, _, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_A", 1000)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestPlaceBetBelowMinimumStake(t *testing.T) {
	repo, _ := newMock(t)

	_, _, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_A", 99)
	if !errors.Is(err, ErrBelowMinimumStake) {
		t.Fatalf("err = %v, want ErrBelowMinimumStake", err)
	}
}

func TestPlaceBetClosedMatch(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, home_team_id, away_team_id FROM matches WHERE id=$1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"state", "home_team_id", "away_team_id"}).
			AddRow("LOCKED", "TEAM_A", "TEAM_B"))
	mock.ExpectRollback()

	_, _, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_A", 1000)
	if !errors.Is(err, ErrBettingClosed) {
		t.Fatalf("err = %v, want ErrBettingClosed", err)
	}
}

func TestPlaceBetUnknownTeam(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	expectMatchOpen(mock)
	mock.ExpectRollback()

	_, _, err := repo.PlaceOrUpdate(context.Background(), "u1", "m1", "TEAM_Z", 1000)
	if !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("err = %v, want ErrInvalidTeam", err)
	}
}

func TestDeleteBetRefundsAndClearsLedger(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, stake, settled_at FROM bets WHERE id=$1 FOR UPDATE`)).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "stake", "settled_at"}).
			AddRow("u1", int64(1000), nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT coins FROM users WHERE id=$1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(int64(4000)))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET coins=$1 WHERE id=$2`)).
		WithArgs(int64(5000), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM wallet_ledger WHERE bet_id=$1 AND entry_type='bet'`)).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bets WHERE id=$1`)).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	refund, balance, err := repo.Delete(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if refund != 1000 || balance != 5000 {
		t.Errorf("refund=%d balance=%d, want 1000/5000", refund, balance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteBetOfAnotherUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, stake, settled_at FROM bets WHERE id=$1 FOR UPDATE`)).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "stake", "settled_at"}).
			AddRow("someone-else", int64(1000), nil))
	mock.ExpectRollback()

	_, _, err := repo.Delete(context.Background(), "u1", "b1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
