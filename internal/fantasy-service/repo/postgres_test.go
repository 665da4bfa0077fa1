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

func validSelection() Selection {
	return Selection{
		UserID:    "u1",
		MatchID:   "m1",
		TeamID:    "TEAM_A",
		Players:   []string{"p1", "p2", "p3", "p4"},
		CaptainID: "p2",
	}
}

func TestValidateSelection(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Selection)
		wantOK bool
	}{
		{"valid", func(*Selection) {}, true},
		{"three players", func(s *Selection) { s.Players = s.Players[:3] }, false},
		{"five players", func(s *Selection) { s.Players = append(s.Players, "p5") }, false},
		{"duplicate player", func(s *Selection) { s.Players[3] = "p1" }, false},
		{"captain outside team", func(s *Selection) { s.CaptainID = "p9" }, false},
		{"empty player id", func(s *Selection) { s.Players[0] = "" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := validSelection()
			tc.mutate(&sel)
			err := validateSelection(sel)
			if tc.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantOK && !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("err = %v, want ErrInvalidSelection", err)
			}
		})
	}
}

func TestSaveSelectionRejectsLockedMatch(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, home_team_id, away_team_id FROM matches WHERE id = $1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"state", "home_team_id", "away_team_id"}).
			AddRow("LOCKED", "TEAM_A", "TEAM_B"))
	mock.ExpectRollback()

	_, err := repo.SaveSelection(context.Background(), validSelection())
	if !errors.Is(err, ErrSelectionsClosed) {
		t.Fatalf("err = %v, want ErrSelectionsClosed", err)
	}
}

func TestSaveSelectionRejectsForeignTeam(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, home_team_id, away_team_id FROM matches WHERE id = $1`)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"state", "home_team_id", "away_team_id"}).
			AddRow("OPEN", "TEAM_X", "TEAM_Y"))
	mock.ExpectRollback()

	_, err := repo.SaveSelection(context.Background(), validSelection())
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("err = %v, want ErrInvalidSelection", err)
	}
}

func TestSaveTeamPreferencesValidatesInput(t *testing.T) {
	repo, _ := newMock(t)

	if err := repo.SaveTeamPreferences(context.Background(), "u1", nil); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("empty list: err = %v, want ErrInvalidSelection", err)
	}
	if err := repo.SaveTeamPreferences(context.Background(), "u1", []string{"TEAM_A", "TEAM_A"}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("duplicate team: err = %v, want ErrInvalidSelection", err)
	}
}

func TestSaveFavoritePlayersLimit(t *testing.T) {
	repo, _ := newMock(t)

	err := repo.SaveFavoritePlayers(context.Background(), "u1", "TEAM_A", []string{"p1", "p2", "p3"})
	if !errors.Is(err, ErrTooManyFavorites) {
		t.Fatalf("err = %v, want ErrTooManyFavorites", err)
	}
}
