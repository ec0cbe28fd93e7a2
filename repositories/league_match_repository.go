package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/racket-club/models"
)

type LeagueMatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.LeagueMatch, error)
	LockForUpdate(ctx context.Context, id int) (*models.LeagueMatch, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.LeagueMatch, error)
	CountByLeague(ctx context.Context, leagueID int) (int, error)
	BatchCreate(ctx context.Context, matches []*models.LeagueMatch) error
	UpdateResult(ctx context.Context, match *models.LeagueMatch) error
}

type postgresLeagueMatchRepository struct {
	exec SQLExecutor
}

func NewPostgresLeagueMatchRepository(exec SQLExecutor) LeagueMatchRepository {
	return &postgresLeagueMatchRepository{exec: exec}
}

const leagueMatchColumns = `id, league_id, round, leg, home_team_id, away_team_id, match_date, time_slot, court,
		score, home_score, away_score, winner_id, status, generation_id, updated_at`

func scanLeagueMatch(row interface{ Scan(...interface{}) error }) (*models.LeagueMatch, error) {
	m := &models.LeagueMatch{}
	err := row.Scan(
		&m.ID, &m.LeagueID, &m.Round, &m.Leg, &m.HomeTeamID, &m.AwayTeamID, &m.MatchDate, &m.TimeSlot, &m.Court,
		&m.Score, &m.HomeScore, &m.AwayScore, &m.WinnerID, &m.Status, &m.GenerationID, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresLeagueMatchRepository) GetByID(ctx context.Context, id int) (*models.LeagueMatch, error) {
	query := `SELECT ` + leagueMatchColumns + ` FROM league_matches WHERE id = $1`
	return scanLeagueMatch(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueMatchRepository) LockForUpdate(ctx context.Context, id int) (*models.LeagueMatch, error) {
	query := `SELECT ` + leagueMatchColumns + ` FROM league_matches WHERE id = $1 FOR UPDATE`
	return scanLeagueMatch(r.exec.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueMatchRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.LeagueMatch, error) {
	query := `SELECT ` + leagueMatchColumns + ` FROM league_matches WHERE league_id = $1
		ORDER BY round ASC, match_date ASC, court ASC`

	rows, err := r.exec.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.LeagueMatch, 0)
	for rows.Next() {
		m, err := scanLeagueMatch(rows)
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

func (r *postgresLeagueMatchRepository) CountByLeague(ctx context.Context, leagueID int) (int, error) {
	var count int
	err := r.exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM league_matches WHERE league_id = $1`, leagueID).Scan(&count)
	return count, err
}

func (r *postgresLeagueMatchRepository) BatchCreate(ctx context.Context, matches []*models.LeagueMatch) error {
	query := `
		INSERT INTO league_matches
			(league_id, round, leg, home_team_id, away_team_id, match_date, time_slot, court, status, generation_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	now := time.Now().UTC()
	for _, m := range matches {
		m.UpdatedAt = now
		err := r.exec.QueryRowContext(ctx, query,
			m.LeagueID, m.Round, m.Leg, m.HomeTeamID, m.AwayTeamID, m.MatchDate, m.TimeSlot, m.Court,
			m.Status, m.GenerationID, m.UpdatedAt,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert league match round %d %d v %d: %w", m.Round, m.HomeTeamID, m.AwayTeamID, mapPQError(err))
		}
	}
	return nil
}

func (r *postgresLeagueMatchRepository) UpdateResult(ctx context.Context, m *models.LeagueMatch) error {
	query := `
		UPDATE league_matches SET
			score = $1, home_score = $2, away_score = $3, winner_id = $4, status = $5, updated_at = $6
		WHERE id = $7`

	m.UpdatedAt = time.Now().UTC()
	result, err := r.exec.ExecContext(ctx, query, m.Score, m.HomeScore, m.AwayScore, m.WinnerID, m.Status, m.UpdatedAt, m.ID)
	if err != nil {
		return mapPQError(err)
	}
	return checkAffectedRows(result, ErrLeagueMatchNotFound)
}
