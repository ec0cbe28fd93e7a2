package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/racket-club/models"
)

type StandingRepository interface {
	// BatchCreate writes the zeroed seed rows created at generation time.
	BatchCreate(ctx context.Context, standings []models.Standing) error
	// ListSeed returns the stored rows in seed order, which is the roster
	// order the ranking falls back to.
	ListSeed(ctx context.Context, competitionID int) ([]models.Standing, error)
	// ReplaceRanks overwrites the stored rows with a freshly computed table.
	ReplaceRanks(ctx context.Context, competitionID int, table []models.Standing) error
	CountByCompetition(ctx context.Context, competitionID int) (int, error)
	DeleteByCompetition(ctx context.Context, competitionID int) error
}

type postgresStandingRepository struct {
	exec SQLExecutor
}

func NewPostgresStandingRepository(exec SQLExecutor) StandingRepository {
	return &postgresStandingRepository{exec: exec}
}

func (r *postgresStandingRepository) BatchCreate(ctx context.Context, standings []models.Standing) error {
	query := `
		INSERT INTO standings
			(competition_id, team_id, group_id, seed_order, rank, played, wins, losses, points,
			 sets_won, sets_lost, games_won, games_lost, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	now := time.Now().UTC()
	for i := range standings {
		s := &standings[i]
		s.UpdatedAt = now
		err := r.exec.QueryRowContext(ctx, query,
			s.CompetitionID, s.TeamID, s.GroupID, i, s.Rank, s.Played, s.Wins, s.Losses, s.Points,
			s.SetsWon, s.SetsLost, s.GamesWon, s.GamesLost, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("insert standing for team %d: %w", s.TeamID, mapPQError(err))
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListSeed(ctx context.Context, competitionID int) ([]models.Standing, error) {
	query := `
		SELECT s.id, s.competition_id, s.team_id, t.name, s.group_id, s.rank, s.played, s.wins, s.losses,
		       s.points, s.sets_won, s.sets_lost, s.games_won, s.games_lost, s.updated_at
		FROM standings s
		JOIN competition_teams t ON t.id = s.team_id
		WHERE s.competition_id = $1
		ORDER BY s.seed_order ASC`

	rows, err := r.exec.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(
			&s.ID, &s.CompetitionID, &s.TeamID, &s.TeamName, &s.GroupID, &s.Rank, &s.Played, &s.Wins, &s.Losses,
			&s.Points, &s.SetsWon, &s.SetsLost, &s.GamesWon, &s.GamesLost, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.SetsDiff = s.SetsWon - s.SetsLost
		s.GamesDiff = s.GamesWon - s.GamesLost
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresStandingRepository) ReplaceRanks(ctx context.Context, competitionID int, table []models.Standing) error {
	query := `
		UPDATE standings SET
			rank = $1, played = $2, wins = $3, losses = $4, points = $5,
			sets_won = $6, sets_lost = $7, games_won = $8, games_lost = $9, updated_at = $10
		WHERE competition_id = $11 AND team_id = $12`

	now := time.Now().UTC()
	for _, s := range table {
		result, err := r.exec.ExecContext(ctx, query,
			s.Rank, s.Played, s.Wins, s.Losses, s.Points,
			s.SetsWon, s.SetsLost, s.GamesWon, s.GamesLost, now,
			competitionID, s.TeamID,
		)
		if err != nil {
			return mapPQError(err)
		}
		if err := checkAffectedRows(result, ErrStandingNotFound); err != nil {
			return fmt.Errorf("team %d: %w", s.TeamID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) CountByCompetition(ctx context.Context, competitionID int) (int, error) {
	var count int
	err := r.exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM standings WHERE competition_id = $1`, competitionID).Scan(&count)
	return count, err
}

func (r *postgresStandingRepository) DeleteByCompetition(ctx context.Context, competitionID int) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM standings WHERE competition_id = $1`, competitionID)
	return mapPQError(err)
}
