package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
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

func TestRecomputeMatchPointsDecidedMatch(t *testing.T) {
	repo, mock := newMock(t)

	// u1 escolheu o vencedor com capitão p2: 10 + (3 + 2*5 + 2 + 1) = 26
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result_kind, winner_team_id FROM matches WHERE id=$1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"result_kind", "winner_team_id"}).
			AddRow("DECIDED", "TEAM_A"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT player_id, player_points FROM player_match_stats WHERE match_id = $1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "player_points"}).
			AddRow("p1", int64(3)).
			AddRow("p2", int64(5)).
			AddRow("p3", int64(2)).
			AddRow("p4", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, team_id, players, captain_id`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "team_id", "players", "captain_id"}).
			AddRow("u1", "TEAM_A", pq.StringArray{"p1", "p2", "p3", "p4"}, "p2").
			AddRow("u2", "TEAM_B", pq.StringArray{"p1", "p3"}, "p3"))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_match_points`)).
		WithArgs("u1", "m1", int64(10), int64(16), int64(26)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// u2 errou o time: sem bônus, capitão p3 dobrado: 3 + 2*2 = 7
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_match_points`)).
		WithArgs("u2", "m1", int64(0), int64(7), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_total_points`)).
		WithArgs(pq.Array([]string{"u1", "u2"})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.RecomputeMatchPoints(context.Background(), "m1")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if n != 2 {
		t.Fatalf("selections = %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecomputeUnknownMatch(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result_kind, winner_team_id FROM matches WHERE id=$1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"result_kind", "winner_team_id"}))
	mock.ExpectRollback()

	_, err := repo.RecomputeMatchPoints(context.Background(), "nope")
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}
