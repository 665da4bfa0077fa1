package resolver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func TestResolvePicksLowerRankedTeam(t *testing.T) {
	c := Candidate{
		UserID:       "u1",
		TeamPrefs:    []string{"TEAM_C", "TEAM_B", "TEAM_A"},
		FavoriteHome: []string{"h1"},
		FavoriteAway: []string{"a1"},
	}

	sel, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(1))
	require.True(t, ok)
	assert.Equal(t, "TEAM_B", sel.TeamID, "TEAM_B ranked above TEAM_A")
}

func TestResolveSingleRankedTeamWins(t *testing.T) {
	c := Candidate{
		UserID:       "u1",
		TeamPrefs:    []string{"TEAM_X", "TEAM_A"},
		FavoriteHome: []string{"h1", "h2"},
	}

	sel, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(1))
	require.True(t, ok)
	assert.Equal(t, "TEAM_A", sel.TeamID)
}

func TestResolveSkipsWhenNeitherTeamRanked(t *testing.T) {
	c := Candidate{
		UserID:       "u1",
		TeamPrefs:    []string{"TEAM_X", "TEAM_Y"},
		FavoriteHome: []string{"h1"},
	}

	_, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(1))
	assert.False(t, ok)
}

func TestResolveSkipsWhenPoolEmpty(t *testing.T) {
	c := Candidate{
		UserID:    "u1",
		TeamPrefs: []string{"TEAM_A"},
	}

	_, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(1))
	assert.False(t, ok)
}

func TestResolvePoolCombinesBothTeamsFavorites(t *testing.T) {
	c := Candidate{
		UserID:       "u1",
		TeamPrefs:    []string{"TEAM_A"},
		FavoriteHome: []string{"h1", "h2"},
		FavoriteAway: []string{"a1", "a2"},
	}

	sel, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(1))
	require.True(t, ok)
	assert.Equal(t, []string{"h1", "h2", "a1", "a2"}, sel.Players)
	assert.Contains(t, sel.Players, sel.CaptainID)
}

func TestResolveCaptainIsDeterministicWithSeed(t *testing.T) {
	c := Candidate{
		UserID:       "u1",
		TeamPrefs:    []string{"TEAM_A"},
		FavoriteHome: []string{"h1", "h2"},
		FavoriteAway: []string{"a1", "a2"},
	}

	first, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(42))
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		again, ok := Resolve(c, "TEAM_A", "TEAM_B", rng(42))
		require.True(t, ok)
		assert.Equal(t, first.CaptainID, again.CaptainID)
	}
}
