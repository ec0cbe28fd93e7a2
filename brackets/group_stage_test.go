package brackets

import (
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTeams(n int) []models.Team {
	teams := make([]models.Team, n)
	for i := range teams {
		// IDs deliberately out of seed order
		teams[i] = models.Team{ID: 100 + n - i, Seed: models.IntPtr(i + 1)}
	}
	return teams
}

func seedsOf(t *testing.T, teams []models.Team, g models.Group) []int {
	t.Helper()
	bySeed := map[int]int{}
	for _, team := range teams {
		bySeed[team.ID] = *team.Seed
	}
	seeds := make([]int, len(g.Teams))
	for i, gt := range g.Teams {
		seeds[i] = bySeed[gt.TeamID]
	}
	return seeds
}

func TestBuildGroups_Serpentine(t *testing.T) {
	teams := seededTeams(8)
	groups, err := BuildGroups(teams, 2)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "A", groups[0].Name)
	assert.Equal(t, "B", groups[1].Name)
	assert.Equal(t, []int{1, 4, 5, 8}, seedsOf(t, teams, groups[0]))
	assert.Equal(t, []int{2, 3, 6, 7}, seedsOf(t, teams, groups[1]))
}

func TestBuildGroups_ThreeGroupsUneven(t *testing.T) {
	teams := seededTeams(10)
	groups, err := BuildGroups(teams, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 6, 7}, seedsOf(t, teams, groups[0]))
	assert.Equal(t, []int{2, 5, 8}, seedsOf(t, teams, groups[1]))
	assert.Equal(t, []int{3, 4, 9, 10}, seedsOf(t, teams, groups[2]))
}

func TestBuildGroups_Errors(t *testing.T) {
	_, err := BuildGroups(seededTeams(5), 3)
	assert.ErrorIs(t, err, ErrInsufficientTeamsForGroups)

	_, err = BuildGroups(seededTeams(4), 0)
	assert.ErrorIs(t, err, ErrInvalidGroupCount)
}

func TestBuildGroupMatches(t *testing.T) {
	groups := []models.Group{
		{ID: 11, Name: "A", Teams: []models.GroupTeam{{TeamID: 1}, {TeamID: 4}, {TeamID: 5}, {TeamID: 8}}},
		{ID: 12, Name: "B", Teams: []models.GroupTeam{{TeamID: 2}, {TeamID: 3}, {TeamID: 6}}},
	}

	matches, err := BuildGroupMatches(groups)
	require.NoError(t, err)
	require.Len(t, matches, 6+3)

	for i, m := range matches {
		assert.Equal(t, models.StageGroup, m.Stage)
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, i+1, m.Position, "positions run across groups")
		require.NotNil(t, m.GroupID)
		if i < 6 {
			assert.Equal(t, 11, *m.GroupID)
		} else {
			assert.Equal(t, 12, *m.GroupID)
		}
	}

	pairs := map[pairKey]bool{}
	for _, m := range matches[6:] {
		pairs[keyOf(Pairing{*m.Team1ID, *m.Team2ID})] = true
	}
	assert.Equal(t, map[pairKey]bool{{2, 3}: true, {2, 6}: true, {3, 6}: true}, pairs)
}
