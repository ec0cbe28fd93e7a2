package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/racket-club/models"
)

// MatchFilter narrows match queries. Nil fields match everything.
type MatchFilter struct {
	Stage   *models.MatchStage
	GroupID *int
	Round   *int
	Status  *models.MatchStatus
}

func StageFilter(stage models.MatchStage) MatchFilter {
	return MatchFilter{Stage: &stage}
}

// Matches reports whether m passes the filter.
func (f MatchFilter) Matches(m *models.Match) bool {
	if f.Stage != nil && m.Stage != *f.Stage {
		return false
	}
	if f.GroupID != nil && !models.EqualIntPtr(m.GroupID, f.GroupID) {
		return false
	}
	if f.Round != nil && m.Round != *f.Round {
		return false
	}
	if f.Status != nil && m.Status != *f.Status {
		return false
	}
	return true
}

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	LockForUpdate(ctx context.Context, id int) (*models.Match, error)
	ListByCompetition(ctx context.Context, competitionID int, filter MatchFilter) ([]*models.Match, error)
	CountByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int, error)
	BatchCreate(ctx context.Context, matches []*models.Match) error
	// Update writes the mutable state of a match: teams, result and status.
	Update(ctx context.Context, match *models.Match) error
	DeleteByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int64, error)
}

type postgresMatchRepository struct {
	exec SQLExecutor
}

func NewPostgresMatchRepository(exec SQLExecutor) MatchRepository {
	return &postgresMatchRepository{exec: exec}
}

const matchColumns = `id, competition_id, stage, round, position, team1_id, team2_id, winner_id,
		team1_score, team2_score, score, status, group_id, is_bye, generation_id, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.CompetitionID, &m.Stage, &m.Round, &m.Position,
		&m.Team1ID, &m.Team2ID, &m.WinnerID,
		&m.Team1Score, &m.Team2Score, &m.Score, &m.Status,
		&m.GroupID, &m.IsBye, &m.GenerationID, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) LockForUpdate(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(r.exec.QueryRowContext(ctx, query, id))
}

func applyMatchFilter(w *whereBuilder, filter MatchFilter) {
	if filter.Stage != nil {
		w.and("stage", *filter.Stage)
	}
	if filter.GroupID != nil {
		w.and("group_id", *filter.GroupID)
	}
	if filter.Round != nil {
		w.and("round", *filter.Round)
	}
	if filter.Status != nil {
		w.and("status", *filter.Status)
	}
}

func (r *postgresMatchRepository) ListByCompetition(ctx context.Context, competitionID int, filter MatchFilter) ([]*models.Match, error) {
	w := newWhereBuilder(`SELECT `+matchColumns+` FROM matches WHERE competition_id = $1`, competitionID)
	applyMatchFilter(w, filter)
	w.raw(" ORDER BY stage ASC, round ASC, position ASC")

	rows, err := r.exec.QueryContext(ctx, w.String(), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int, error) {
	w := newWhereBuilder(`SELECT COUNT(*) FROM matches WHERE competition_id = $1`, competitionID)
	applyMatchFilter(w, filter)

	var count int
	if err := r.exec.QueryRowContext(ctx, w.String(), w.args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// BatchCreate inserts matches one by one on the bound executor and fills
// their IDs. Callers run it inside a transaction.
func (r *postgresMatchRepository) BatchCreate(ctx context.Context, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(competition_id, stage, round, position, team1_id, team2_id, winner_id,
			 team1_score, team2_score, score, status, group_id, is_bye, generation_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	now := time.Now().UTC()
	for _, m := range matches {
		m.UpdatedAt = now
		err := r.exec.QueryRowContext(ctx, query,
			m.CompetitionID, m.Stage, m.Round, m.Position, m.Team1ID, m.Team2ID, m.WinnerID,
			m.Team1Score, m.Team2Score, m.Score, m.Status, m.GroupID, m.IsBye, m.GenerationID, m.UpdatedAt,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert match %s R%dM%d: %w", m.Stage, m.Round, m.Position, mapPQError(err))
		}
	}
	return nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			team1_id = $1, team2_id = $2, winner_id = $3, team1_score = $4, team2_score = $5,
			score = $6, status = $7, is_bye = $8, updated_at = $9
		WHERE id = $10`

	m.UpdatedAt = time.Now().UTC()
	result, err := r.exec.ExecContext(ctx, query,
		m.Team1ID, m.Team2ID, m.WinnerID, m.Team1Score, m.Team2Score,
		m.Score, m.Status, m.IsBye, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return mapPQError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByCompetition(ctx context.Context, competitionID int, filter MatchFilter) (int64, error) {
	w := newWhereBuilder(`DELETE FROM matches WHERE competition_id = $1`, competitionID)
	applyMatchFilter(w, filter)

	result, err := r.exec.ExecContext(ctx, w.String(), w.args...)
	if err != nil {
		return 0, mapPQError(err)
	}
	return result.RowsAffected()
}
