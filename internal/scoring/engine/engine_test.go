package engine

import (
	"testing"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

func TestPlayerPointsWeights(t *testing.T) {
	s := PlayerStat{IsPlayed: true, Runs: 37, Wickets: 2, Catches: 1, Stumpings: 1, Runouts: 3}

	got := PlayerPoints(s)
	want := int64(37 + 2*10 + 5 + 5 + 3*5)
	if got != want {
		t.Fatalf("PlayerPoints = %d, want %d", got, want)
	}
}

func TestPlayerPointsNotPlayed(t *testing.T) {
	s := PlayerStat{IsPlayed: false, Runs: 100, Wickets: 5}
	if got := PlayerPoints(s); got != 0 {
		t.Fatalf("player that did not play scored %d, want 0", got)
	}
}

func TestUserMatchPointsCaptainDoubled(t *testing.T) {
	sel := Selection{
		TeamID:  "TEAM_A",
		Players: []string{"p1", "p2", "p3", "p4"},
		Captain: "p2",
	}
	points := map[string]int64{"p1": 3, "p2": 5, "p3": 2, "p4": 1}

	got := UserMatchPoints(sel, points, 0)
	if got != 16 {
		t.Fatalf("UserMatchPoints = %d, want 16 (3 + 2*5 + 2 + 1)", got)
	}
}

func TestUserMatchPointsMissingStatsCountZero(t *testing.T) {
	sel := Selection{
		TeamID:  "TEAM_A",
		Players: []string{"p1", "p2", "p3", "p4"},
		Captain: "p1",
	}
	points := map[string]int64{"p1": 7} // demais sem estatística lançada

	got := UserMatchPoints(sel, points, TeamBonusPoints)
	if got != 10+14 {
		t.Fatalf("UserMatchPoints = %d, want 24", got)
	}
}

func TestTeamBonus(t *testing.T) {
	cases := []struct {
		name       string
		selected   string
		winner     string
		resultKind string
		want       int64
	}{
		{"picked winner", "TEAM_A", "TEAM_A", events.ResultDecided, 10},
		{"picked loser", "TEAM_B", "TEAM_A", events.ResultDecided, 0},
		{"no result", "TEAM_A", "", events.ResultNoResult, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TeamBonus(tc.selected, tc.winner, tc.resultKind); got != tc.want {
				t.Fatalf("TeamBonus = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTeamMatchPoints(t *testing.T) {
	if got := TeamMatchPoints("TEAM_A", "TEAM_A", events.ResultDecided); got != 10 {
		t.Errorf("winner aggregate = %d, want 10", got)
	}
	if got := TeamMatchPoints("TEAM_B", "TEAM_A", events.ResultDecided); got != 0 {
		t.Errorf("loser aggregate = %d, want 0", got)
	}
	if got := TeamMatchPoints("TEAM_A", "", events.ResultNoResult); got != 5 {
		t.Errorf("no-result aggregate = %d, want 5", got)
	}
}
