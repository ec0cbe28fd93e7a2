package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/racket-club/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matchRowColumns = []string{
	"id", "competition_id", "stage", "round", "position", "team1_id", "team2_id", "winner_id",
	"team1_score", "team2_score", "score", "status", "group_id", "is_bye", "generation_id", "updated_at",
}

func TestPostgresMatchRepository_ListByCompetitionWithFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(matchRowColumns).
		AddRow(5, 1, "group", 1, 1, 10, 11, 10, 2, 0, `{"sets":[{"games1":6,"games2":1},{"games1":6,"games2":2}]}`, "completed", 3, false, "g-1", now).
		AddRow(6, 1, "group", 1, 2, 12, nil, nil, nil, nil, nil, "pending", 3, false, "g-1", now)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM matches WHERE competition_id = $1 AND stage = $2 AND group_id = $3 ORDER BY stage ASC, round ASC, position ASC`)).
		WithArgs(1, models.StageGroup, 3).
		WillReturnRows(rows)

	stage := models.StageGroup
	matches, err := NewPostgresMatchRepository(db).ListByCompetition(context.Background(), 1, MatchFilter{Stage: &stage, GroupID: models.IntPtr(3)})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, 10, *matches[0].WinnerID)
	require.NotNil(t, matches[0].Score)
	assert.Len(t, matches[0].Score.Sets, 2)
	assert.Equal(t, 6, matches[0].Score.Sets[1].Games1)
	assert.Nil(t, matches[1].Team2ID)
	assert.Nil(t, matches[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM matches WHERE id = $1 FOR UPDATE`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(matchRowColumns))

	_, err = NewPostgresMatchRepository(db).LockForUpdate(context.Background(), 42)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_BatchCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insert := regexp.QuoteMeta(`INSERT INTO matches`)
	mock.ExpectQuery(insert).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505", Constraint: "matches_coordinate_key"})

	matches := []*models.Match{
		{CompetitionID: 1, Stage: models.StageMain, Round: 1, Position: 1, Status: models.MatchStatusPending},
		{CompetitionID: 1, Stage: models.StageMain, Round: 1, Position: 1, Status: models.MatchStatusPending},
	}
	err = NewPostgresMatchRepository(db).BatchCreate(context.Background(), matches)
	assert.ErrorIs(t, err, ErrDuplicateRow)
	assert.Contains(t, err.Error(), "matches_coordinate_key")
	assert.Equal(t, 100, matches[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_UpdateWritesScoreAsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := &models.Match{
		ID:       9,
		Team1ID:  models.IntPtr(1),
		Team2ID:  models.IntPtr(2),
		WinnerID: models.IntPtr(2),
		Score:    &models.Score{Sets: []models.Set{{Games1: 1, Games2: 6}, {Games1: 2, Games2: 6}}},
		Status:   models.MatchStatusCompleted,
	}
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE matches SET`)).
		WithArgs(1, 2, 2, nil, nil, `{"sets":[{"games1":1,"games2":6},{"games1":2,"games2":6}]}`,
			models.MatchStatusCompleted, false, sqlmock.AnyArg(), 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresMatchRepository(db).Update(context.Background(), m))
	assert.False(t, m.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMatchRepository_DeleteByCompetition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM matches WHERE competition_id = $1 AND stage = $2`)).
		WithArgs(4, models.StageGroup).
		WillReturnResult(sqlmock.NewResult(0, 6))

	n, err := NewPostgresMatchRepository(db).DeleteByCompetition(context.Background(), 4, StageFilter(models.StageGroup))
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
