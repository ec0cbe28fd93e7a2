package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pairKey struct{ a, b int }

func keyOf(p Pairing) pairKey {
	if p.Team1ID > p.Team2ID {
		return pairKey{p.Team2ID, p.Team1ID}
	}
	return pairKey{p.Team1ID, p.Team2ID}
}

func TestBuildRoundRobin_EveryPairOnce(t *testing.T) {
	for n := 2; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			rounds, err := BuildRoundRobin(teamIDs(n), RoundRobinOptions{})
			require.NoError(t, err)

			if n%2 == 0 {
				assert.Len(t, rounds, n-1)
			} else {
				assert.Len(t, rounds, n)
			}

			seen := map[pairKey]int{}
			for _, round := range rounds {
				assert.Len(t, round, n/2)
				playing := map[int]bool{}
				for _, p := range round {
					assert.False(t, p.IsBye())
					assert.False(t, playing[p.Team1ID], "team plays twice in a round")
					assert.False(t, playing[p.Team2ID], "team plays twice in a round")
					playing[p.Team1ID], playing[p.Team2ID] = true, true
					seen[keyOf(p)]++
				}
			}
			assert.Len(t, seen, n*(n-1)/2)
			for k, count := range seen {
				assert.Equal(t, 1, count, "pair %v", k)
			}
		})
	}
}

func TestBuildRoundRobin_KeepByes(t *testing.T) {
	rounds, err := BuildRoundRobin(teamIDs(5), RoundRobinOptions{KeepByes: true})
	require.NoError(t, err)
	require.Len(t, rounds, 5)

	rested := map[int]int{}
	for _, round := range rounds {
		require.Len(t, round, 3)
		byes := 0
		for _, p := range round {
			if p.IsBye() {
				byes++
				assert.Equal(t, ByeTeamID, p.Team2ID, "the resting team is listed first")
				rested[p.Team1ID]++
			}
		}
		assert.Equal(t, 1, byes)
	}
	assert.Len(t, rested, 5, "every team rests exactly once")
}

func TestBuildRoundRobin_DoubleRound(t *testing.T) {
	rounds, err := BuildRoundRobin(teamIDs(4), RoundRobinOptions{DoubleRound: true})
	require.NoError(t, err)
	require.Len(t, rounds, 6)

	for r := 0; r < 3; r++ {
		require.Len(t, rounds[r+3], len(rounds[r]))
		for i, p := range rounds[r] {
			assert.Equal(t, p.Swapped(), rounds[r+3][i])
		}
	}

	ordered := map[Pairing]int{}
	for _, round := range rounds {
		for _, p := range round {
			ordered[p]++
		}
	}
	assert.Len(t, ordered, 12, "each ordered home/away pairing appears once")
}

func TestBuildRoundRobin_CircleMethodRotation(t *testing.T) {
	rounds, err := BuildRoundRobin([]int{1, 2, 3, 4}, RoundRobinOptions{})
	require.NoError(t, err)

	assert.Equal(t, []Pairing{{1, 4}, {2, 3}}, rounds[0])
	assert.Equal(t, []Pairing{{3, 1}, {4, 2}}, rounds[1])
	assert.Equal(t, []Pairing{{1, 2}, {3, 4}}, rounds[2])
}

func TestBuildRoundRobin_Errors(t *testing.T) {
	_, err := BuildRoundRobin([]int{1}, RoundRobinOptions{})
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = BuildRoundRobin([]int{1, ByeTeamID}, RoundRobinOptions{})
	assert.ErrorIs(t, err, ErrInvalidTeamID)
}

func TestRoundRobinGenerator(t *testing.T) {
	settingsJSON := `{"number_of_rounds": 2}`
	comp := &models.Competition{ID: 3, Format: models.FormatRoundRobin, SettingsJSON: &settingsJSON}
	settings, err := comp.Settings()
	require.NoError(t, err)

	teams := []models.Team{{ID: 1}, {ID: 2}, {ID: 3}}
	matches, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Competition: comp,
		Settings:    settings,
		Teams:       teams,
	})
	require.NoError(t, err)
	assert.Len(t, matches, 6)

	coords := map[[2]int]bool{}
	for _, m := range matches {
		assert.Equal(t, models.StageRoundRobin, m.Stage)
		assert.Equal(t, 3, m.CompetitionID)
		assert.NotNil(t, m.Team1ID)
		assert.NotNil(t, m.Team2ID)
		key := [2]int{m.Round, m.Position}
		assert.False(t, coords[key], "duplicate coordinate %v", key)
		coords[key] = true
	}
}
