package odds

import (
	"testing"

	"github.com/crickpool/crickpool/pkg/contracts/events"
)

func upd() events.OddsUpdate {
	return events.OddsUpdate{
		MatchID:       "m1",
		HomeTeamID:    "TEAM_A",
		AwayTeamID:    "TEAM_B",
		PoolHome:      1000,
		PoolAway:      500,
		OddsHome:      0.5,
		OddsAway:      2.0,
		HomeAvailable: true,
		AwayAvailable: true,
	}
}

func TestPotentialEarning(t *testing.T) {
	got, ok := PotentialEarning(upd(), "TEAM_A", 400)
	if !ok || got != 600 {
		t.Fatalf("home earning = %d ok=%v, want 600/true", got, ok)
	}

	got, ok = PotentialEarning(upd(), "TEAM_B", 100)
	if !ok || got != 300 {
		t.Fatalf("away earning = %d ok=%v, want 300/true", got, ok)
	}
}

func TestPotentialEarningUnavailableSide(t *testing.T) {
	u := upd()
	u.AwayAvailable = false
	u.OddsAway = 0

	if _, ok := PotentialEarning(u, "TEAM_B", 100); ok {
		t.Fatal("undefined odd must not produce an estimate")
	}
}

func TestPotentialEarningUnknownTeam(t *testing.T) {
	if _, ok := PotentialEarning(upd(), "TEAM_Z", 100); ok {
		t.Fatal("unknown team must not produce an estimate")
	}
}
