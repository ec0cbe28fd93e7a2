package services

import (
	"context"
	"testing"

	"github.com/Dosada05/racket-club/models"
	"github.com/Dosada05/racket-club/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "competition"},
		{raw: "competition", want: "competition"},
		{raw: " group:12 ", want: "group:12"},
		{raw: "group:", wantErr: true},
		{raw: "group:-1", wantErr: true},
		{raw: "team:3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			scope, err := ParseScope(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scope.String())
		})
	}
}

func TestStandingsService_RoundRobin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id, teams := f.addCompetition(models.FormatRoundRobin, "", 4)

	before, err := f.standings.GetStandings(ctx, id, Scope{})
	require.NoError(t, err)
	require.Len(t, before, 4)
	for i, row := range before {
		assert.Equal(t, teams[i], row.TeamID, "an empty table keeps roster order")
		assert.Equal(t, i+1, row.Rank)
		assert.Zero(t, row.Played)
	}

	_, err = f.competitions.GenerateBracket(ctx, id)
	require.NoError(t, err)
	for _, m := range f.listMatches(t, id, repositories.MatchFilter{}) {
		f.lowerIDWins(t, m)
	}

	table, err := f.standings.GetStandings(ctx, id, Scope{})
	require.NoError(t, err)
	require.Len(t, table, 4)
	assert.Equal(t, teams[0], table[0].TeamID)
	assert.Equal(t, 9, table[0].Points)
	assert.Equal(t, 3, table[0].Wins)
	assert.Equal(t, 6, table[0].SetsWon)
	assert.Equal(t, teams[3], table[3].TeamID)
	assert.Equal(t, 3, table[3].Losses)

	again, err := f.standings.GetStandings(ctx, id, Scope{})
	require.NoError(t, err)
	assert.Equal(t, table, again, "reads are deterministic")

	seed, err := f.store.Repos().Standings.ListSeed(ctx, id)
	require.NoError(t, err)
	stored := map[int]int{}
	for _, row := range seed {
		stored[row.TeamID] = row.Rank
	}
	assert.Equal(t, 1, stored[teams[0]], "ranks are persisted with each result")
}

func TestStandingsService_GroupScope(t *testing.T) {
	ctx := context.Background()

	t.Run("group of another format", func(t *testing.T) {
		f := newFixture()
		id, _ := f.addCompetition(models.FormatRoundRobin, "", 4)
		_, err := f.standings.GetStandings(ctx, id, Scope{GroupID: models.IntPtr(1)})
		assert.ErrorIs(t, err, ErrWrongFormat)
	})

	t.Run("unknown group", func(t *testing.T) {
		f := newFixture()
		id, _ := f.addCompetition(models.FormatGroupKnockout, "", 8)
		_, err := f.competitions.GenerateGroupStage(ctx, id, 2)
		require.NoError(t, err)
		_, err = f.standings.GetStandings(ctx, id, Scope{GroupID: models.IntPtr(9999)})
		assert.ErrorIs(t, err, ErrGroupNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("group table", func(t *testing.T) {
		f := newFixture()
		id, _ := f.addCompetition(models.FormatGroupKnockout, "", 8)
		groups, err := f.competitions.GenerateGroupStage(ctx, id, 2)
		require.NoError(t, err)

		table, err := f.standings.GetStandings(ctx, id, Scope{GroupID: &groups[1].ID})
		require.NoError(t, err)
		require.Len(t, table, 4)
		for _, row := range table {
			require.NotNil(t, row.GroupID)
			assert.Equal(t, groups[1].ID, *row.GroupID)
		}
	})

	t.Run("unknown competition", func(t *testing.T) {
		f := newFixture()
		_, err := f.standings.GetStandings(ctx, 77, Scope{})
		assert.ErrorIs(t, err, ErrCompetitionNotFound)
	})
}
