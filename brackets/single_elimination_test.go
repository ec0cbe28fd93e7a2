package brackets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func TestBuildSingleElimination_MatchCount(t *testing.T) {
	for n := 2; n <= 33; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches, err := BuildSingleElimination(teamIDs(n), EliminationOptions{})
			require.NoError(t, err)

			rounds := RoundsFor(n)
			assert.Len(t, matches, (1<<uint(rounds))-1)

			finals := 0
			for _, m := range matches {
				nextRound, nextPos, _ := NextCoordinate(m.Round, m.Position)
				if FindMatch(matches, models.StageMain, nextRound, nextPos) == nil {
					finals++
					assert.Equal(t, rounds, m.Round)
				}
			}
			assert.Equal(t, 1, finals, "exactly one match has no successor")

			placed := map[int]int{}
			for _, m := range matches {
				if m.Round == 1 {
					require.NotNil(t, m.Team1ID, "first round matches are never empty")
					placed[*m.Team1ID]++
					if m.Team2ID != nil {
						placed[*m.Team2ID]++
					}
					continue
				}
				assert.Nil(t, m.Team1ID)
				assert.Nil(t, m.Team2ID)
			}
			assert.Len(t, placed, n)
			for id, count := range placed {
				assert.Equal(t, 1, count, "team %d placed once", id)
			}
		})
	}
}

func TestBuildSingleElimination_ByeLayout(t *testing.T) {
	matches, err := BuildSingleElimination(teamIDs(5), EliminationOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 7)

	first := matches[:4]
	assert.Equal(t, 1, *first[0].Team1ID)
	assert.Equal(t, 2, *first[0].Team2ID)
	assert.False(t, first[0].IsBye)
	for i, m := range first[1:] {
		assert.Equal(t, i+3, *m.Team1ID)
		assert.Nil(t, m.Team2ID)
		assert.True(t, m.IsBye)
		assert.Nil(t, m.WinnerID, "byes are not advanced without the policy")
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}
}

func TestBuildSingleElimination_AutoAdvanceByes(t *testing.T) {
	matches, err := BuildSingleElimination(teamIDs(6), EliminationOptions{AutoAdvanceByes: true})
	require.NoError(t, err)

	// 6 teams: [1,2] [3,4] [5,-] [6,-]
	r1m3 := FindMatch(matches, models.StageMain, 1, 3)
	require.NotNil(t, r1m3)
	assert.Equal(t, models.MatchStatusCompleted, r1m3.Status)
	assert.Equal(t, 5, *r1m3.WinnerID)

	r2m2 := FindMatch(matches, models.StageMain, 2, 2)
	require.NotNil(t, r2m2)
	assert.Equal(t, 5, *r2m2.Team1ID)
	assert.Equal(t, 6, *r2m2.Team2ID)

	r2m1 := FindMatch(matches, models.StageMain, 2, 1)
	assert.Nil(t, r2m1.Team1ID)
	assert.Nil(t, r2m1.Team2ID)
}

func TestPropagate_WinnersFollowParity(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 8, 12, 16, 19} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			matches, err := BuildSingleElimination(teamIDs(n), EliminationOptions{AutoAdvanceByes: true})
			require.NoError(t, err)

			rounds := RoundsFor(n)
			for r := 1; r <= rounds; r++ {
				for _, m := range matches {
					if m.Round != r || m.IsCompleted() {
						continue
					}
					require.NotNil(t, m.Team1ID, "R%dM%d", m.Round, m.Position)
					require.NotNil(t, m.Team2ID, "R%dM%d", m.Round, m.Position)
					winner := min(*m.Team1ID, *m.Team2ID)
					m.WinnerID = &winner
					m.Status = models.MatchStatusCompleted

					next, err := Propagate(matches, m)
					require.NoError(t, err)
					if r == rounds {
						assert.Nil(t, next)
						continue
					}

					nextRound, nextPos, slot := NextCoordinate(m.Round, m.Position)
					assert.Equal(t, nextRound, next.Round)
					assert.Equal(t, nextPos, next.Position)
					if slot == 1 {
						assert.Equal(t, winner, *next.Team1ID)
					} else {
						assert.Equal(t, winner, *next.Team2ID)
					}

					appearances := 0
					for _, o := range matches {
						if o.Round == r+1 && o.HasTeam(winner) {
							appearances++
						}
					}
					assert.Equal(t, 1, appearances)
				}
			}

			final := FindMatch(matches, models.StageMain, rounds, 1)
			require.NotNil(t, final.WinnerID)
			assert.Equal(t, 1, *final.WinnerID)
		})
	}
}

func TestPropagate_Errors(t *testing.T) {
	matches, err := BuildSingleElimination(teamIDs(4), EliminationOptions{})
	require.NoError(t, err)

	m := matches[0]
	_, err = Propagate(matches, m)
	assert.ErrorIs(t, err, ErrNoWinner)

	m.WinnerID = models.IntPtr(99)
	_, err = Propagate(matches, m)
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	m.WinnerID = models.IntPtr(1)
	broken := []*models.Match{m, {Stage: models.StageMain, Round: 2, Position: 2}}
	_, err = Propagate(broken, m)
	assert.ErrorIs(t, err, ErrBracketCoordinateMissing)

	group := &models.Match{Stage: models.StageGroup, WinnerID: models.IntPtr(1)}
	next, err := Propagate(matches, group)
	assert.NoError(t, err)
	assert.Nil(t, next)
}

func TestBuildSingleElimination_Errors(t *testing.T) {
	_, err := BuildSingleElimination([]int{1}, EliminationOptions{})
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = BuildSingleElimination(nil, EliminationOptions{})
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = BuildSingleElimination([]int{1, 2, 2}, EliminationOptions{})
	assert.ErrorIs(t, err, ErrDuplicateTeam)

	_, err = BuildSingleElimination([]int{1, 0}, EliminationOptions{})
	assert.ErrorIs(t, err, ErrInvalidTeamID)
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(models.FormatSingleElimination)
	require.NoError(t, err)
	assert.Equal(t, "SingleElimination", g.GetName())

	g, err = NewGenerator(models.FormatRoundRobin)
	require.NoError(t, err)
	assert.Equal(t, "RoundRobin", g.GetName())

	_, err = NewGenerator(models.CompetitionFormat("swiss"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestSingleEliminationGenerator_UsesSeedOrder(t *testing.T) {
	comp := &models.Competition{ID: 7, Format: models.FormatSingleElimination}
	settings, err := comp.Settings()
	require.NoError(t, err)

	teams := []models.Team{
		{ID: 10, Seed: models.IntPtr(2)},
		{ID: 11},
		{ID: 12, Seed: models.IntPtr(1)},
	}
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		Competition:  comp,
		Settings:     settings,
		Teams:        teams,
		GenerationID: "gen-1",
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, 12, *matches[0].Team1ID)
	assert.Equal(t, 10, *matches[0].Team2ID)
	assert.Equal(t, 11, *matches[1].Team1ID)
	assert.True(t, matches[1].IsCompleted(), "single elimination advances byes by default")
	assert.Equal(t, 11, *matches[2].Team2ID)
	for _, m := range matches {
		assert.Equal(t, 7, m.CompetitionID)
		assert.Equal(t, "gen-1", m.GenerationID)
	}
}
