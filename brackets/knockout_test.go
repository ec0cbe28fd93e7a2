package brackets

import (
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranking(ids ...int) []models.Standing {
	out := make([]models.Standing, len(ids))
	for i, id := range ids {
		out[i] = models.Standing{TeamID: id, Rank: i + 1}
	}
	return out
}

func TestIsGroupStageComplete(t *testing.T) {
	assert.False(t, IsGroupStageComplete(nil), "no group matches means nothing to promote")

	matches := []*models.Match{
		{Stage: models.StageGroup, WinnerID: models.IntPtr(1)},
		{Stage: models.StageGroup},
		{Stage: models.StageKnockout},
	}
	assert.False(t, IsGroupStageComplete(matches))

	matches[1].WinnerID = models.IntPtr(3)
	assert.True(t, IsGroupStageComplete(matches))
}

func TestQualifiers_GroupOrder(t *testing.T) {
	byGroup := [][]models.Standing{ranking(1, 4, 5, 8), ranking(2, 3, 6, 7)}

	q, err := Qualifiers(byGroup, 2, models.KnockoutSeedingGroupOrder)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 2, 3}, q)
}

func TestQualifiers_Cross(t *testing.T) {
	byGroup := [][]models.Standing{ranking(1, 4, 5), ranking(2, 3, 6)}

	q, err := Qualifiers(byGroup, 2, models.KnockoutSeedingCross)
	require.NoError(t, err)
	// rank-major [1 2 4 3] folded: 1 v 3, 2 v 4
	assert.Equal(t, []int{1, 3, 2, 4}, q)

	byGroup = [][]models.Standing{ranking(1, 4), ranking(2, 5), ranking(3, 6)}
	q, err = Qualifiers(byGroup, 2, models.KnockoutSeedingCross)
	require.NoError(t, err)
	// rank-major [1 2 3 4 5 6], two byes for 1 and 2, then 3 v 6, 4 v 5
	assert.Equal(t, []int{3, 6, 4, 5, 1, 2}, q)
}

func TestQualifiers_Errors(t *testing.T) {
	_, err := Qualifiers([][]models.Standing{ranking(1, 2)}, 3, "")
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = Qualifiers([][]models.Standing{ranking(1, 2)}, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQualifierCount)
}

func TestPromote(t *testing.T) {
	byGroup := [][]models.Standing{ranking(1, 4, 5), ranking(2, 3, 6), ranking(7, 8, 9)}

	matches, err := Promote(byGroup, 2, PromoteOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 7, "6 qualifiers need an 8 slot bracket")

	for _, m := range matches {
		assert.Equal(t, models.StageKnockout, m.Stage)
	}
	first := matches[:4]
	assert.Equal(t, []int{1, 4}, []int{*first[0].Team1ID, *first[0].Team2ID})
	assert.Equal(t, []int{2, 3}, []int{*first[1].Team1ID, *first[1].Team2ID})
	assert.Equal(t, 7, *first[2].Team1ID)
	assert.Nil(t, first[2].Team2ID, "bye slots stay open in a knockout")
	assert.Equal(t, 8, *first[3].Team1ID)
	assert.Nil(t, first[3].WinnerID)
}

func TestPromote_SingleQualifierFails(t *testing.T) {
	_, err := Promote([][]models.Standing{ranking(1, 2)}, 1, PromoteOptions{})
	assert.ErrorIs(t, err, ErrInsufficientTeams)
}
